package inventory

import (
	"github.com/market/backend/internal/domain/shared"
)

// Event types for the inventory domain
const (
	EventTypeStockAdjusted       = "inventory.stock_adjusted"
	EventTypeStockReserved       = "inventory.stock_reserved"
	EventTypeStockReleased       = "inventory.stock_released"
	EventTypeStockFulfilled      = "inventory.stock_fulfilled"
	EventTypeStockBelowThreshold = "inventory.stock_below_threshold"
)

const aggregateTypeInventory = "InventoryRecord"

// StockAdjustedEvent is emitted when the physical quantity changes outside
// the reservation lifecycle (receiving, manual adjustment, stock count)
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	Target           Target `json:"target"`
	PreviousQuantity int64  `json:"previous_quantity"`
	NewQuantity      int64  `json:"new_quantity"`
	Reason           string `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(record *InventoryRecord, previous, next int64, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockAdjusted, aggregateTypeInventory, record.ID),
		Target:           record.Target(),
		PreviousQuantity: previous,
		NewQuantity:      next,
		Reason:           reason,
	}
}

// StockReservedEvent is emitted when a hold is placed on stock
type StockReservedEvent struct {
	shared.BaseDomainEvent
	Target           Target `json:"target"`
	Quantity         int64  `json:"quantity"`
	PreviousReserved int64  `json:"previous_reserved"`
	NewReserved      int64  `json:"new_reserved"`
	Reference        string `json:"reference"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(record *InventoryRecord, quantity, previousReserved, newReserved int64, reference string) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReserved, aggregateTypeInventory, record.ID),
		Target:           record.Target(),
		Quantity:         quantity,
		PreviousReserved: previousReserved,
		NewReserved:      newReserved,
		Reference:        reference,
	}
}

// StockReleasedEvent is emitted when a hold is returned to availability
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	Target           Target `json:"target"`
	Quantity         int64  `json:"quantity"`
	PreviousReserved int64  `json:"previous_reserved"`
	NewReserved      int64  `json:"new_reserved"`
	Reference        string `json:"reference"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(record *InventoryRecord, quantity, previousReserved, newReserved int64, reference string) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReleased, aggregateTypeInventory, record.ID),
		Target:           record.Target(),
		Quantity:         quantity,
		PreviousReserved: previousReserved,
		NewReserved:      newReserved,
		Reference:        reference,
	}
}

// StockFulfilledEvent is emitted when held stock is permanently consumed
type StockFulfilledEvent struct {
	shared.BaseDomainEvent
	Target           Target `json:"target"`
	Quantity         int64  `json:"quantity"`
	PreviousQuantity int64  `json:"previous_quantity"`
	NewQuantity      int64  `json:"new_quantity"`
	Reference        string `json:"reference"`
}

// NewStockFulfilledEvent creates a new StockFulfilledEvent
func NewStockFulfilledEvent(record *InventoryRecord, quantity, previousQuantity, newQuantity int64, reference string) *StockFulfilledEvent {
	return &StockFulfilledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockFulfilled, aggregateTypeInventory, record.ID),
		Target:           record.Target(),
		Quantity:         quantity,
		PreviousQuantity: previousQuantity,
		NewQuantity:      newQuantity,
		Reference:        reference,
	}
}

// StockBelowThresholdEvent is emitted when quantity drops to or below the
// configured low stock threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	Target    Target `json:"target"`
	Quantity  int64  `json:"quantity"`
	Threshold int64  `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(record *InventoryRecord) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, aggregateTypeInventory, record.ID),
		Target:          record.Target(),
		Quantity:        record.Quantity,
		Threshold:       record.LowStockThreshold,
	}
}
