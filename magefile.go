//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var (
	binDir  = "bin"
	appName = "leatherlane-web"
)

var Default = Run

func Run() error {
	fmt.Println("Running (go run) ...")
	return sh.RunV("go", "run", "./cmd/web")
}

func Build() error {
	mg.Deps(Tidy)

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}

	out := filepath.Join(binDir, appName+exeSuffix())
	fmt.Println("Building:", out)

	env := map[string]string{"CGO_ENABLED": "0"}
	return sh.RunWithV(env, "go", "build", "-trimpath", "-o", out, "./cmd/web")
}

func Test() error {
	fmt.Println("Testing...")
	return sh.RunV("go", "test", "./...", "-count=1")
}

func TestRace() error {
	fmt.Println("Testing with -race...")
	if runtime.GOOS == "windows" {
		fmt.Println("Note: -race on Windows may be unsupported/unstable depending on your Go toolchain.")
	}
	return sh.RunV("go", "test", "./...", "-race", "-count=1")
}

func Fmt() error {
	fmt.Println("Formatting...")
	return sh.RunV("gofmt", "-w", "./cmd", "./internal", "./magefile.go")
}

func Lint() error {
	fmt.Println("Linting (golangci-lint)...")
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		return fmt.Errorf("golangci-lint not found. Install with: mage Tools")
	}
	return sh.RunV("golangci-lint", "run", "--timeout=3m", "./...")
}

func Check() error {
	mg.Deps(Fmt, Lint, Test)
	fmt.Println("Check OK.")
	return nil
}

func Tidy() error {
	fmt.Println("Tidying go.mod/go.sum...")
	return sh.RunV("go", "mod", "tidy")
}

// CreateTables: bootstrap the MySQL schema and seed the catalog.
func CreateTables() error {
	return sh.RunV("go", "run", "./cmd/tools/createtable")
}

// MockGateway: run the local fake payment gateway on :9090.
func MockGateway() error {
	return sh.RunV("go", "run", "./cmd/tools/mockgateway")
}

func Clean() error {
	fmt.Println("Cleaning...")
	_ = os.RemoveAll(binDir)
	return nil
}

func Tools() error {
	fmt.Println("Installing tools (golangci-lint)...")
	return sh.RunV("go", "install", "github.com/golangci/golangci-lint/v2/cmd/golangci-lint@latest")
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
