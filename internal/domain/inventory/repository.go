package inventory

import (
	"context"

	"github.com/market/backend/internal/domain/shared"
)

// Repository defines the persistence contract for inventory records
type Repository interface {
	// Create persists a new record; returns ErrAlreadyExists if a record
	// for the same target is already present
	Create(ctx context.Context, record *InventoryRecord) error

	// FindByTarget returns the record for a target, or ErrNotFound
	FindByTarget(ctx context.Context, target Target) (*InventoryRecord, error)

	// FindByTargets returns the records present for the given targets in a
	// single query; absent targets are simply missing from the result
	FindByTargets(ctx context.Context, targets []Target) ([]*InventoryRecord, error)

	// Save persists changes without concurrency control
	Save(ctx context.Context, record *InventoryRecord) error

	// SaveWithLock persists changes using optimistic locking on the
	// aggregate version; returns ErrConcurrencyConflict when the record
	// was modified by another process
	SaveWithLock(ctx context.Context, record *InventoryRecord) error

	// ReserveQuantity atomically increments the reserved counter if and
	// only if enough stock is available, in one conditional update.
	// Returns the post-reservation record on success, ErrNotFound when no
	// record exists, or *InsufficientStockError when availability is short.
	ReserveQuantity(ctx context.Context, target Target, quantity int64) (*InventoryRecord, error)

	// FindLowStock returns records with quantity at or below their threshold
	FindLowStock(ctx context.Context) ([]*InventoryRecord, error)

	// FindOutOfStock returns records with no available quantity
	FindOutOfStock(ctx context.Context) ([]*InventoryRecord, error)

	// FindAll returns records matching the filter with pagination
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*InventoryRecord], error)
}

// MovementRepository defines the persistence contract for the append-only
// movement log
type MovementRepository interface {
	// Append persists a new movement; movements are never updated or deleted
	Append(ctx context.Context, movement *StockMovement) error

	// FindByTarget returns movements for a target ordered by creation time
	FindByTarget(ctx context.Context, target Target, filter shared.Filter) (shared.Paginated[*StockMovement], error)

	// FindByReference returns movements carrying a source document reference
	FindByReference(ctx context.Context, reference string) ([]*StockMovement, error)
}
