package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the read-side catalog contract the order and checkout
// paths depend on
type Repository interface {
	// FindProduct returns a product with its variants, or ErrNotFound
	FindProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindProducts returns the products present for the given IDs with
	// their variants, in a single query
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
}
