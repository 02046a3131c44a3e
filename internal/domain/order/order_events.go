package order

import (
	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the order domain
const (
	EventTypeOrderPlaced        = "order.placed"
	EventTypeOrderStatusChanged = "order.status_changed"
)

const aggregateTypeOrder = "Order"

// OrderPlacedEvent is emitted when an order is created
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	ItemCount   int64           `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		ItemCount:       o.ItemCount(),
		TotalAmount:     o.TotalAmount,
	}
}

// OrderStatusChangedEvent is emitted on every status field transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string       `json:"order_number"`
	Field          HistoryField `json:"field"`
	FromValue      string       `json:"from_value"`
	ToValue        string       `json:"to_value"`
	NotifyCustomer bool         `json:"notify_customer"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, field HistoryField, from, to string, notify bool) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Field:           field,
		FromValue:       from,
		ToValue:         to,
		NotifyCustomer:  notify,
	}
}
