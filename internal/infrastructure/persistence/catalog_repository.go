package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/catalog"
	"github.com/market/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCatalogRepository implements catalog.Repository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindProduct finds a product with its variants
func (r *GormCatalogRepository) FindProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindProducts finds the products present for the given IDs with their
// variants in a single query. Missing IDs are simply absent from the
// result; callers decide whether that is an error.
func (r *GormCatalogRepository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var products []*catalog.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Find(&products, "id IN ?", ids).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
