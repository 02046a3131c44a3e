package inventory

import (
	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	// MovementTypeIn represents stock entering the physical total (receiving, upward adjustment)
	MovementTypeIn MovementType = "in"
	// MovementTypeOut represents stock leaving the physical total (fulfillment, downward adjustment)
	MovementTypeOut MovementType = "out"
	// MovementTypeAdjustment represents a stock-count correction
	MovementTypeAdjustment MovementType = "adjustment"
	// MovementTypeReservation represents a hold placed against pending orders
	MovementTypeReservation MovementType = "reservation"
	// MovementTypeRelease represents a hold returned to availability
	MovementTypeRelease MovementType = "release"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment,
		MovementTypeReservation, MovementTypeRelease:
		return true
	}
	return false
}

// TracksReserved returns true if this movement type records the reserved
// counter in its previous/new quantities. All other types record the
// physical quantity counter.
func (t MovementType) TracksReserved() bool {
	return t == MovementTypeReservation || t == MovementTypeRelease
}

// StockMovement is one immutable audit entry for a quantity mutation.
// Once created, movements are never modified or deleted - corrections
// are made with new movements. For any two consecutive movements on the
// same target and counter, NewQuantity of the earlier equals
// PreviousQuantity of the later.
type StockMovement struct {
	shared.BaseEntity
	ProductID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_movement_target,priority:1"`
	VariantID        *uuid.UUID   `gorm:"type:uuid;index:idx_movement_target,priority:2"`
	Type             MovementType `gorm:"type:varchar(20);not null;index"`
	Quantity         int64        `gorm:"not null"` // Never negative; zero when a clamped adjustment applied nothing
	PreviousQuantity int64        `gorm:"not null"` // Counter value before the mutation
	NewQuantity      int64        `gorm:"not null"` // Counter value after the mutation
	Reason           string       `gorm:"type:varchar(255)"`
	Reference        string       `gorm:"type:varchar(100);index"` // e.g. order number
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement entry
func NewStockMovement(
	target Target,
	movementType MovementType,
	quantity int64,
	previousQuantity int64,
	newQuantity int64,
	reason string,
) (*StockMovement, error) {
	if target.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be negative")
	}
	if previousQuantity < 0 || newQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counter values cannot be negative")
	}

	return &StockMovement{
		BaseEntity:       shared.NewBaseEntity(),
		ProductID:        target.ProductID,
		VariantID:        target.VariantID,
		Type:             movementType,
		Quantity:         quantity,
		PreviousQuantity: previousQuantity,
		NewQuantity:      newQuantity,
		Reason:           reason,
	}, nil
}

// WithReference attaches a source document reference to the movement
func (m *StockMovement) WithReference(reference string) *StockMovement {
	m.Reference = reference
	return m
}

// Target returns the target this movement belongs to
func (m *StockMovement) Target() Target {
	return Target{ProductID: m.ProductID, VariantID: m.VariantID}
}

// QuantityChange returns the net counter change recorded by this movement
func (m *StockMovement) QuantityChange() int64 {
	return m.NewQuantity - m.PreviousQuantity
}
