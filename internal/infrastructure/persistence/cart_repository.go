package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/cart"
	"github.com/market/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindWithItems finds a cart with its items loaded
func (r *GormCartRepository) FindWithItems(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Clear removes all items from a cart
func (r *GormCartRepository) Clear(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&cart.CartItem{}, "cart_id = ?", id).Error
}
