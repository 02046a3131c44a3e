package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/inventory"
)

// CreateInventoryRequest is the input for creating an inventory record
type CreateInventoryRequest struct {
	ProductID         uuid.UUID  `json:"product_id" binding:"required"`
	VariantID         *uuid.UUID `json:"variant_id,omitempty"`
	InitialQuantity   int64      `json:"initial_quantity" binding:"gte=0"`
	LowStockThreshold int64      `json:"low_stock_threshold" binding:"gte=0"`
	Location          string     `json:"location,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// Target returns the inventory target for the request
func (r CreateInventoryRequest) Target() inventory.Target {
	return inventory.Target{ProductID: r.ProductID, VariantID: r.VariantID}
}

// AdjustKind selects how an adjustment changes the physical quantity
type AdjustKind string

const (
	AdjustKindIncrease AdjustKind = "increase"
	AdjustKindDecrease AdjustKind = "decrease"
	AdjustKindSet      AdjustKind = "set"
)

// IsValid returns true if the adjustment kind is valid
func (k AdjustKind) IsValid() bool {
	return k == AdjustKindIncrease || k == AdjustKindDecrease || k == AdjustKindSet
}

// AdjustStockRequest is the input for a stock adjustment
type AdjustStockRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Kind      AdjustKind `json:"kind" binding:"required,oneof=increase decrease set"`
	Quantity  int64      `json:"quantity" binding:"required,gt=0"`
	Reason    string     `json:"reason" binding:"required"`
}

// Target returns the inventory target for the request
func (r AdjustStockRequest) Target() inventory.Target {
	return inventory.Target{ProductID: r.ProductID, VariantID: r.VariantID}
}

// InventoryRecordDTO is the read model of an inventory record
type InventoryRecordDTO struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	VariantID         *uuid.UUID `json:"variant_id,omitempty"`
	Quantity          int64      `json:"quantity"`
	ReservedQuantity  int64      `json:"reserved_quantity"`
	Available         int64      `json:"available"`
	LowStockThreshold int64      `json:"low_stock_threshold"`
	Location          string     `json:"location,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ToInventoryRecordDTO converts a domain record to its DTO
func ToInventoryRecordDTO(r *inventory.InventoryRecord) *InventoryRecordDTO {
	return &InventoryRecordDTO{
		ID:                r.ID,
		ProductID:         r.ProductID,
		VariantID:         r.VariantID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		Available:         r.Available(),
		LowStockThreshold: r.LowStockThreshold,
		Location:          r.Location,
		Notes:             r.Notes,
		UpdatedAt:         r.UpdatedAt,
	}
}

// StockLevelDTO is the read model of availability for a target
type StockLevelDTO struct {
	ProductID    uuid.UUID  `json:"product_id"`
	VariantID    *uuid.UUID `json:"variant_id,omitempty"`
	Available    int64      `json:"available"`
	Reserved     int64      `json:"reserved"`
	Total        int64      `json:"total"`
	IsLowStock   bool       `json:"is_low_stock"`
	IsOutOfStock bool       `json:"is_out_of_stock"`
}

// ToStockLevelDTO converts a domain stock level to its DTO
func ToStockLevelDTO(level inventory.StockLevel) StockLevelDTO {
	return StockLevelDTO{
		ProductID:    level.Target.ProductID,
		VariantID:    level.Target.VariantID,
		Available:    level.Available,
		Reserved:     level.Reserved,
		Total:        level.Total,
		IsLowStock:   level.IsLowStock,
		IsOutOfStock: level.IsOutOfStock,
	}
}

// MovementDTO is the read model of one movement log entry
type MovementDTO struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"product_id"`
	VariantID        *uuid.UUID `json:"variant_id,omitempty"`
	Type             string     `json:"type"`
	Quantity         int64      `json:"quantity"`
	PreviousQuantity int64      `json:"previous_quantity"`
	NewQuantity      int64      `json:"new_quantity"`
	Reason           string     `json:"reason,omitempty"`
	Reference        string     `json:"reference,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToMovementDTO converts a domain movement to its DTO
func ToMovementDTO(m *inventory.StockMovement) MovementDTO {
	return MovementDTO{
		ID:               m.ID,
		ProductID:        m.ProductID,
		VariantID:        m.VariantID,
		Type:             m.Type.String(),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		Reference:        m.Reference,
		CreatedAt:        m.CreatedAt,
	}
}

// AlertType classifies a stock alert entry
type AlertType string

const (
	AlertTypeLowStock   AlertType = "low_stock"
	AlertTypeOutOfStock AlertType = "out_of_stock"
)

// StockAlertDTO is one entry in the alerts read model, annotated with
// catalog display names
type StockAlertDTO struct {
	Type        AlertType  `json:"type"`
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	VariantName string     `json:"variant_name,omitempty"`
	SKU         string     `json:"sku,omitempty"`
	Quantity    int64      `json:"quantity"`
	Available   int64      `json:"available"`
	Threshold   int64      `json:"threshold"`
}

// BatchValidationItem is one (target, requested quantity) pair to validate
type BatchValidationItem struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int64      `json:"quantity" binding:"required,gt=0"`
}

// Target returns the inventory target for the item
func (i BatchValidationItem) Target() inventory.Target {
	return inventory.Target{ProductID: i.ProductID, VariantID: i.VariantID}
}

// BatchValidationError describes one failing item in a batch validation
type BatchValidationError struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Requested int64      `json:"requested"`
	Available int64      `json:"available"`
	Message   string     `json:"message"`
}

// BatchValidationResult is the outcome of a batch availability check
type BatchValidationResult struct {
	IsValid bool                   `json:"is_valid"`
	Errors  []BatchValidationError `json:"errors"`
}
