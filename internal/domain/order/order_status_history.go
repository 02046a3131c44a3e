package order

import (
	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
)

// HistoryField identifies which status field a history entry records
type HistoryField string

const (
	HistoryFieldStatus            HistoryField = "status"
	HistoryFieldPaymentStatus     HistoryField = "payment_status"
	HistoryFieldFulfillmentStatus HistoryField = "fulfillment_status"
)

// OrderStatusHistory is one append-only audit entry for a status
// transition, kept independently of the inventory movement log
type OrderStatusHistory struct {
	shared.BaseEntity
	OrderID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	Field          HistoryField `gorm:"type:varchar(30);not null"`
	FromValue      string       `gorm:"type:varchar(30)"`
	ToValue        string       `gorm:"type:varchar(30);not null"`
	Note           string       `gorm:"type:varchar(255)"`
	NotifyCustomer bool         `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// NewOrderStatusHistory creates a new history entry
func NewOrderStatusHistory(orderID uuid.UUID, field HistoryField, from, to, note string, notifyCustomer bool) *OrderStatusHistory {
	return &OrderStatusHistory{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		Field:          field,
		FromValue:      from,
		ToValue:        to,
		Note:           note,
		NotifyCustomer: notifyCustomer,
	}
}
