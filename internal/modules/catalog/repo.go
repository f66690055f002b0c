package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// First returns the storefront's featured product (the catalog carries a
// single row today).
func (r *Repo) First(ctx context.Context) (Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).Order("id asc").First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}
