package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
	"github.com/market/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the overall order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo returns true if the transition to the target status is allowed
func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled, StatusFailed},
		StatusProcessing: {StatusShipped, StatusCancelled, StatusFailed},
		StatusShipped:    {StatusDelivered},
		StatusDelivered:  {},
		StatusCancelled:  {},
		StatusFailed:     {},
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further status transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid returns true if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// FulfillmentStatus represents the fulfillment state of an order
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusShipped     FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered   FulfillmentStatus = "delivered"
)

// String returns the string representation of FulfillmentStatus
func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsValid returns true if the fulfillment status is valid
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentStatusUnfulfilled, FulfillmentStatusShipped, FulfillmentStatusDelivered:
		return true
	}
	return false
}

// Order is the aggregate root for a placed order. Items are point-in-time
// snapshots of the catalog and never change after the order is persisted.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string            `gorm:"type:varchar(30);not null;uniqueIndex"`
	UserID            uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status            Status            `gorm:"type:varchar(20);not null;index"`
	PaymentStatus     PaymentStatus     `gorm:"type:varchar(20);not null;index"`
	FulfillmentStatus FulfillmentStatus `gorm:"type:varchar(20);not null;index"`
	Subtotal          decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TaxAmount         decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	ShippingAmount    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	DiscountAmount    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(18,2);not null"`

	ShippingAddress valueobject.Address `gorm:"serializer:json"`
	BillingAddress  valueobject.Address `gorm:"serializer:json"`

	PaymentMethod    string `gorm:"type:varchar(50)"`
	PaymentReference string `gorm:"type:varchar(100)"`
	TrackingNumber   string `gorm:"type:varchar(100);index"`

	Items   []OrderItem          `gorm:"foreignKey:OrderID;references:ID"`
	History []OrderStatusHistory `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new pending order with its item snapshots
func NewOrder(orderNumber string, userID uuid.UUID, items []OrderItem) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		UserID:            userID,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		FulfillmentStatus: FulfillmentStatusUnfulfilled,
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		ShippingAmount:    decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		Items:             make([]OrderItem, 0, len(items)),
		History:           make([]OrderStatusHistory, 0, 1),
	}

	for i := range items {
		item := items[i]
		item.BaseEntity = shared.NewBaseEntity()
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	o.recalculateSubtotal()

	o.History = append(o.History, *NewOrderStatusHistory(
		o.ID, HistoryFieldStatus, "", StatusPending.String(), "Order created", false))

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// ApplyPricing sets the computed charge amounts and the resulting total
func (o *Order) ApplyPricing(tax, shipping, discount decimal.Decimal) {
	o.TaxAmount = tax
	o.ShippingAmount = shipping
	o.DiscountAmount = discount
	o.TotalAmount = o.Subtotal.Add(tax).Add(shipping).Sub(discount)
	o.touch()
}

// SetAddresses sets the shipping and billing addresses
func (o *Order) SetAddresses(shipping, billing valueobject.Address) {
	o.ShippingAddress = shipping
	o.BillingAddress = billing
	o.touch()
}

// SetPaymentMethod records the selected payment method
func (o *Order) SetPaymentMethod(method string) {
	o.PaymentMethod = method
	o.touch()
}

// ChangeStatus transitions the order status, recording a history entry
func (o *Order) ChangeStatus(target Status, note string, notifyCustomer bool) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot transition order from "+o.Status.String()+" to "+target.String())
	}

	from := o.Status
	o.Status = target
	o.appendHistory(HistoryFieldStatus, from.String(), target.String(), note, notifyCustomer)
	return nil
}

// ChangePaymentStatus transitions the payment status, recording a history entry
func (o *Order) ChangePaymentStatus(target PaymentStatus, note string, notifyCustomer bool) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid payment status")
	}
	if o.PaymentStatus == target {
		return nil
	}

	from := o.PaymentStatus
	o.PaymentStatus = target
	o.appendHistory(HistoryFieldPaymentStatus, from.String(), target.String(), note, notifyCustomer)
	return nil
}

// ChangeFulfillmentStatus transitions the fulfillment status, recording a history entry
func (o *Order) ChangeFulfillmentStatus(target FulfillmentStatus, note string, notifyCustomer bool) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid fulfillment status")
	}
	if o.FulfillmentStatus == target {
		return nil
	}

	from := o.FulfillmentStatus
	o.FulfillmentStatus = target
	o.appendHistory(HistoryFieldFulfillmentStatus, from.String(), target.String(), note, notifyCustomer)
	return nil
}

// MarkPaid records a successful payment with the gateway reference
func (o *Order) MarkPaid(paymentReference string) error {
	o.PaymentReference = paymentReference
	return o.ChangePaymentStatus(PaymentStatusPaid, "Payment confirmed", true)
}

// MarkFailed marks the order as failed after compensation, so a failed
// placement attempt is never left looking like a live order
func (o *Order) MarkFailed(reason string) error {
	if err := o.ChangeStatus(StatusFailed, reason, false); err != nil {
		return err
	}
	return o.ChangePaymentStatus(PaymentStatusFailed, reason, false)
}

// AddTrackingInfo records the carrier tracking number and moves the order
// into the shipped state
func (o *Order) AddTrackingInfo(trackingNumber string, notifyCustomer bool) error {
	if trackingNumber == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number cannot be empty")
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot add tracking to a closed order")
	}
	if o.FulfillmentStatus != FulfillmentStatusUnfulfilled {
		return shared.NewDomainError("INVALID_STATE", "Order has already shipped")
	}

	o.TrackingNumber = trackingNumber
	if err := o.ChangeFulfillmentStatus(FulfillmentStatusShipped, "Tracking number "+trackingNumber, notifyCustomer); err != nil {
		return err
	}
	if o.Status.CanTransitionTo(StatusShipped) {
		return o.ChangeStatus(StatusShipped, "Shipped with tracking "+trackingNumber, notifyCustomer)
	}
	return nil
}

// ItemCount returns the total number of units across all items
func (o *Order) ItemCount() int64 {
	var count int64
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

func (o *Order) appendHistory(field HistoryField, from, to, note string, notify bool) {
	o.History = append(o.History, *NewOrderStatusHistory(o.ID, field, from, to, note, notify))
	o.touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, field, from, to, notify))
}

func (o *Order) recalculateSubtotal() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.TaxAmount).Add(o.ShippingAmount).Sub(o.DiscountAmount)
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// OrderItem is an immutable snapshot of one ordered line. Quantity and
// price are captured at placement time, independent of later catalog edits.
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID *uuid.UUID      `gorm:"type:uuid"`
	VendorID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(255);not null"`
	SKU       string          `gorm:"type:varchar(100);not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates an order line snapshot
func NewOrderItem(productID uuid.UUID, variantID *uuid.UUID, vendorID uuid.UUID, name, sku string, quantity int64, unitPrice decimal.Decimal) (OrderItem, error) {
	if productID == uuid.Nil {
		return OrderItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return OrderItem{}, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return OrderItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return OrderItem{
		ProductID: productID,
		VariantID: variantID,
		VendorID:  vendorID,
		Name:      name,
		SKU:       sku,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(quantity)),
	}, nil
}
