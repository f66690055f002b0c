package main

import (
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	apphttp "leatherlane.com/app/internal/http"
	"leatherlane.com/app/internal/gateway"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		log.Fatal("PUBLIC_BASE_URL environment variable is required")
	}

	gw := gateway.NewClient(
		envOr("SWITCH_BASE_URL", "https://api-test.switchpayments.com/v2"),
		os.Getenv("SWITCH_ACCOUNT_ID"),
		os.Getenv("SWITCH_PRIVATE_KEY"),
	)

	r := apphttp.NewRouter(logger, db, gw, apphttp.Config{
		PublicBaseURL:    baseURL,
		GatewayPublicKey: os.Getenv("SWITCH_PUBLIC_KEY"),
	})

	port := envOr("PORT", "8080")
	logger.Info("starting server", "port", port)
	_ = r.Run(":" + port)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
