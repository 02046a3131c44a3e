package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SearchFilter holds the filter criteria for order searches
type SearchFilter struct {
	Status            *Status
	PaymentStatus     *PaymentStatus
	FulfillmentStatus *FulfillmentStatus
	OrderNumber       string
	UserID            *uuid.UUID
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	SortBy            string
	SortDir           string
	Page              int
	PageSize          int
}

// Summary is an aggregated read model over orders
type Summary struct {
	TotalOrders     int64            `json:"total_orders"`
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	CountsByStatus  map[Status]int64 `json:"counts_by_status"`
	PendingPayments int64            `json:"pending_payments"`
}

// Repository defines the persistence contract for orders
type Repository interface {
	// Create persists the order with its items and initial history in one
	// atomic write
	Create(ctx context.Context, o *Order) error

	// FindByID returns an order with items and history, or ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber returns an order by its public number, or ErrNotFound
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByTrackingNumber returns the order carrying a tracking number
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Order, error)

	// Save persists changes to the order and appends any new history rows
	Save(ctx context.Context, o *Order) error

	// SaveWithLock persists changes using optimistic version locking
	SaveWithLock(ctx context.Context, o *Order) error

	// Delete removes an order and its rows; used only when unwinding a
	// failed placement attempt
	Delete(ctx context.Context, id uuid.UUID) error

	// Search returns orders matching the filter with pagination metadata
	Search(ctx context.Context, filter SearchFilter) (shared.Paginated[*Order], error)

	// Summarize returns aggregate figures over orders matching the filter
	Summarize(ctx context.Context, filter SearchFilter) (*Summary, error)

	// NextOrderNumber allocates the next sequential order number
	NextOrderNumber(ctx context.Context) (string, error)
}
