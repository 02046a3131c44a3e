package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the cart contract the checkout and order paths depend on
type Repository interface {
	// FindWithItems returns a cart with its items loaded, or ErrNotFound
	FindWithItems(ctx context.Context, id uuid.UUID) (*Cart, error)

	// Clear removes all items from a cart
	Clear(ctx context.Context, id uuid.UUID) error
}
