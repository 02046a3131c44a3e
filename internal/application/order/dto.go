package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/order"
	"github.com/market/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one requested line in an explicit item list
type OrderItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int64      `json:"quantity" binding:"required,gt=0"`
}

// PlaceOrderRequest is the input for placing an order, either from a
// cart reference or an explicit item list
type PlaceOrderRequest struct {
	UserID          uuid.UUID           `json:"user_id" binding:"required"`
	CartID          *uuid.UUID          `json:"cart_id,omitempty"`
	Items           []OrderItemRequest  `json:"items,omitempty"`
	ShippingAddress valueobject.Address `json:"shipping_address" binding:"required"`
	BillingAddress  valueobject.Address `json:"billing_address" binding:"required"`
	ShippingMethod  string              `json:"shipping_method"`
	PaymentMethod   string              `json:"payment_method" binding:"required"`
	PromoCode       string              `json:"promo_code,omitempty"`
	IdempotencyKey  string              `json:"idempotency_key,omitempty"`
}

// UpdateOrderStatusRequest transitions one or more status fields
type UpdateOrderStatusRequest struct {
	Status            *string `json:"status,omitempty"`
	PaymentStatus     *string `json:"payment_status,omitempty"`
	FulfillmentStatus *string `json:"fulfillment_status,omitempty"`
	Note              string  `json:"note,omitempty"`
	NotifyCustomer    bool    `json:"notify_customer,omitempty"`
}

// AddTrackingRequest records carrier tracking information
type AddTrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	NotifyCustomer bool   `json:"notify_customer,omitempty"`
}

// SearchOrdersRequest is the filter input for order searches
type SearchOrdersRequest struct {
	Status            string     `form:"status"`
	PaymentStatus     string     `form:"payment_status"`
	FulfillmentStatus string     `form:"fulfillment_status"`
	OrderNumber       string     `form:"order_number"`
	UserID            string     `form:"user_id" binding:"omitempty,uuid"`
	CreatedFrom       *time.Time `form:"created_from" time_format:"2006-01-02"`
	CreatedTo         *time.Time `form:"created_to" time_format:"2006-01-02"`
	SortBy            string     `form:"sort_by"`
	SortDir           string     `form:"sort_dir"`
	Page              int        `form:"page"`
	Limit             int        `form:"limit"`
}

// ToSearchFilter converts the request to a domain search filter
func (r SearchOrdersRequest) ToSearchFilter() order.SearchFilter {
	filter := order.SearchFilter{
		OrderNumber: r.OrderNumber,
		CreatedFrom: r.CreatedFrom,
		CreatedTo:   r.CreatedTo,
		SortBy:      r.SortBy,
		SortDir:     r.SortDir,
		Page:        r.Page,
		PageSize:    r.Limit,
	}
	// Format is enforced by the binding's uuid rule; a failed parse
	// here only happens for callers bypassing the handler, and means
	// no user filter.
	if r.UserID != "" {
		if userID, err := uuid.Parse(r.UserID); err == nil {
			filter.UserID = &userID
		}
	}
	if r.Status != "" {
		status := order.Status(r.Status)
		filter.Status = &status
	}
	if r.PaymentStatus != "" {
		status := order.PaymentStatus(r.PaymentStatus)
		filter.PaymentStatus = &status
	}
	if r.FulfillmentStatus != "" {
		status := order.FulfillmentStatus(r.FulfillmentStatus)
		filter.FulfillmentStatus = &status
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return filter
}

// OrderItemDTO is the read model of an order line snapshot
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	VendorID  uuid.UUID       `json:"vendor_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDTO is the read model of an order
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	UserID            uuid.UUID           `json:"user_id"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"payment_status"`
	FulfillmentStatus string              `json:"fulfillment_status"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	TaxAmount         decimal.Decimal     `json:"tax_amount"`
	ShippingAmount    decimal.Decimal     `json:"shipping_amount"`
	DiscountAmount    decimal.Decimal     `json:"discount_amount"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	ShippingAddress   valueobject.Address `json:"shipping_address"`
	BillingAddress    valueobject.Address `json:"billing_address"`
	PaymentMethod     string              `json:"payment_method,omitempty"`
	PaymentReference  string              `json:"payment_reference,omitempty"`
	TrackingNumber    string              `json:"tracking_number,omitempty"`
	Items             []OrderItemDTO      `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ToOrderDTO converts a domain order to its DTO
func ToOrderDTO(o *order.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			VendorID:  item.VendorID,
			Name:      item.Name,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return &OrderDTO{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Status:            o.Status.String(),
		PaymentStatus:     o.PaymentStatus.String(),
		FulfillmentStatus: o.FulfillmentStatus.String(),
		Subtotal:          o.Subtotal,
		TaxAmount:         o.TaxAmount,
		ShippingAmount:    o.ShippingAmount,
		DiscountAmount:    o.DiscountAmount,
		TotalAmount:       o.TotalAmount,
		ShippingAddress:   o.ShippingAddress,
		BillingAddress:    o.BillingAddress,
		PaymentMethod:     o.PaymentMethod,
		PaymentReference:  o.PaymentReference,
		TrackingNumber:    o.TrackingNumber,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// StatusHistoryDTO is the read model of one status transition
type StatusHistoryDTO struct {
	ID             uuid.UUID `json:"id"`
	Field          string    `json:"field"`
	FromValue      string    `json:"from_value,omitempty"`
	ToValue        string    `json:"to_value"`
	Note           string    `json:"note,omitempty"`
	NotifyCustomer bool      `json:"notify_customer"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToStatusHistoryDTO converts a domain history entry to its DTO
func ToStatusHistoryDTO(h order.OrderStatusHistory) StatusHistoryDTO {
	return StatusHistoryDTO{
		ID:             h.ID,
		Field:          string(h.Field),
		FromValue:      h.FromValue,
		ToValue:        h.ToValue,
		Note:           h.Note,
		NotifyCustomer: h.NotifyCustomer,
		CreatedAt:      h.CreatedAt,
	}
}

// SummaryDTO is the aggregated order read model
type SummaryDTO struct {
	TotalOrders     int64            `json:"total_orders"`
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	CountsByStatus  map[string]int64 `json:"counts_by_status"`
	PendingPayments int64            `json:"pending_payments"`
}

// ToSummaryDTO converts a domain summary to its DTO
func ToSummaryDTO(s *order.Summary) *SummaryDTO {
	counts := make(map[string]int64, len(s.CountsByStatus))
	for status, count := range s.CountsByStatus {
		counts[status.String()] = count
	}
	return &SummaryDTO{
		TotalOrders:     s.TotalOrders,
		TotalRevenue:    s.TotalRevenue,
		CountsByStatus:  counts,
		PendingPayments: s.PendingPayments,
	}
}
