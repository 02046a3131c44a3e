package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
)

// Target identifies the stock-keeping unit an inventory record tracks:
// a product, optionally refined to a specific variant.
type Target struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
}

// NewProductTarget creates a target for a product without variants
func NewProductTarget(productID uuid.UUID) Target {
	return Target{ProductID: productID}
}

// NewVariantTarget creates a target for a specific product variant
func NewVariantTarget(productID, variantID uuid.UUID) Target {
	return Target{ProductID: productID, VariantID: &variantID}
}

// Key returns a stable string key for the target, usable in maps
func (t Target) Key() string {
	if t.VariantID != nil {
		return t.ProductID.String() + ":" + t.VariantID.String()
	}
	return t.ProductID.String()
}

// String returns a human-readable representation
func (t Target) String() string {
	if t.VariantID != nil {
		return fmt.Sprintf("product %s variant %s", t.ProductID, t.VariantID)
	}
	return fmt.Sprintf("product %s", t.ProductID)
}

// InventoryRecord tracks physical and reserved stock for one target.
// It is the aggregate root for all ledger operations.
// Invariant: 0 <= ReservedQuantity <= Quantity at all times.
type InventoryRecord struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_target,priority:1"`
	VariantID         *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_inventory_target,priority:2"`
	Quantity          int64      `gorm:"not null;default:0"` // Total physical units
	ReservedQuantity  int64      `gorm:"not null;default:0"` // Units held against pending orders
	LowStockThreshold int64      `gorm:"not null;default:0"`
	Location          string     `gorm:"type:varchar(100)"`
	Notes             string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// NewInventoryRecord creates a new inventory record for a target
func NewInventoryRecord(target Target, initialQuantity, lowStockThreshold int64) (*InventoryRecord, error) {
	if target.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if initialQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}
	if lowStockThreshold < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}

	return &InventoryRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         target.ProductID,
		VariantID:         target.VariantID,
		Quantity:          initialQuantity,
		ReservedQuantity:  0,
		LowStockThreshold: lowStockThreshold,
	}, nil
}

// Target returns the target this record tracks
func (r *InventoryRecord) Target() Target {
	return Target{ProductID: r.ProductID, VariantID: r.VariantID}
}

// Available returns the quantity available for new reservations
func (r *InventoryRecord) Available() int64 {
	return r.Quantity - r.ReservedQuantity
}

// IsLowStock returns true if total quantity is at or below the threshold
func (r *InventoryRecord) IsLowStock() bool {
	return r.LowStockThreshold > 0 && r.Quantity <= r.LowStockThreshold
}

// IsOutOfStock returns true if nothing is available for reservation
func (r *InventoryRecord) IsOutOfStock() bool {
	return r.Available() <= 0
}

// CanReserve returns true if the available quantity covers the request
func (r *InventoryRecord) CanReserve(quantity int64) bool {
	return quantity > 0 && r.Available() >= quantity
}

// Increase adds physical stock
func (r *InventoryRecord) Increase(quantity int64, reason string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	previous := r.Quantity
	r.Quantity += quantity
	r.touch()

	r.AddDomainEvent(NewStockAdjustedEvent(r, previous, r.Quantity, reason))
	return nil
}

// Decrease removes physical stock, clamping at zero. Stock under
// reservation cannot be decreased away: the floor is ReservedQuantity,
// keeping the reserved <= quantity invariant intact.
func (r *InventoryRecord) Decrease(quantity int64, reason string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	previous := r.Quantity
	next := r.Quantity - quantity
	if next < r.ReservedQuantity {
		next = r.ReservedQuantity
	}
	r.Quantity = next
	r.touch()

	r.AddDomainEvent(NewStockAdjustedEvent(r, previous, r.Quantity, reason))
	r.emitThresholdEventIfNeeded()
	return nil
}

// SetQuantity replaces the physical quantity (stock counting).
// The new quantity cannot drop below the outstanding reservations.
func (r *InventoryRecord) SetQuantity(quantity int64, reason string) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if quantity < r.ReservedQuantity {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Quantity %d cannot be set below reserved quantity %d", quantity, r.ReservedQuantity))
	}

	previous := r.Quantity
	r.Quantity = quantity
	r.touch()

	r.AddDomainEvent(NewStockAdjustedEvent(r, previous, r.Quantity, reason))
	r.emitThresholdEventIfNeeded()
	return nil
}

// Reserve places a hold on stock without removing it from the physical total
func (r *InventoryRecord) Reserve(quantity int64, reference string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if r.Available() < quantity {
		return &InsufficientStockError{
			Target:    r.Target(),
			Requested: quantity,
			Available: r.Available(),
		}
	}

	previous := r.ReservedQuantity
	r.ReservedQuantity += quantity
	r.touch()

	r.AddDomainEvent(NewStockReservedEvent(r, quantity, previous, r.ReservedQuantity, reference))
	return nil
}

// Release returns held stock to availability, clamping reserved at zero.
// Releasing more than is held is tolerated rather than rejected so that
// compensation paths never fail on an already-released hold.
func (r *InventoryRecord) Release(quantity int64, reference string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	previous := r.ReservedQuantity
	r.ReservedQuantity -= quantity
	if r.ReservedQuantity < 0 {
		r.ReservedQuantity = 0
	}
	r.touch()

	r.AddDomainEvent(NewStockReleasedEvent(r, quantity, previous, r.ReservedQuantity, reference))
	return nil
}

// Fulfill permanently consumes held stock at shipment time.
// Both the physical quantity and the reservation drop together, so the
// available quantity is unchanged.
func (r *InventoryRecord) Fulfill(quantity int64, reference string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfill quantity must be positive")
	}
	if r.ReservedQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_RESERVATION",
			fmt.Sprintf("Cannot fulfill %d units with only %d reserved", quantity, r.ReservedQuantity))
	}

	previousQuantity := r.Quantity
	r.Quantity -= quantity
	r.ReservedQuantity -= quantity
	r.touch()

	r.AddDomainEvent(NewStockFulfilledEvent(r, quantity, previousQuantity, r.Quantity, reference))
	r.emitThresholdEventIfNeeded()
	return nil
}

// UpdateLowStockThreshold changes the alert threshold
func (r *InventoryRecord) UpdateLowStockThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}

	r.LowStockThreshold = threshold
	r.touch()
	return nil
}

// UpdateLocation changes the storage location note
func (r *InventoryRecord) UpdateLocation(location string) {
	r.Location = location
	r.touch()
}

func (r *InventoryRecord) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

func (r *InventoryRecord) emitThresholdEventIfNeeded() {
	if r.IsLowStock() {
		r.AddDomainEvent(NewStockBelowThresholdEvent(r))
	}
}

// StockLevel is the read-side view of availability for a target
type StockLevel struct {
	Target       Target `json:"-"`
	Available    int64  `json:"available"`
	Reserved     int64  `json:"reserved"`
	Total        int64  `json:"total"`
	IsLowStock   bool   `json:"is_low_stock"`
	IsOutOfStock bool   `json:"is_out_of_stock"`
}

// StockLevelOf computes the stock level view of a record.
// A nil record reports as fully out of stock: callers must not be able
// to distinguish never-stocked from exhausted at this layer.
func StockLevelOf(target Target, record *InventoryRecord) StockLevel {
	if record == nil {
		return StockLevel{Target: target, IsOutOfStock: true}
	}
	return StockLevel{
		Target:       target,
		Available:    record.Available(),
		Reserved:     record.ReservedQuantity,
		Total:        record.Quantity,
		IsLowStock:   record.IsLowStock(),
		IsOutOfStock: record.IsOutOfStock(),
	}
}
