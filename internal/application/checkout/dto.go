package checkout

import (
	"time"

	"github.com/google/uuid"
	apporder "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/domain/checkout"
	"github.com/market/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateSessionRequest starts a checkout from a cart or an explicit
// item list
type CreateSessionRequest struct {
	UserID uuid.UUID                   `json:"user_id" binding:"required"`
	CartID *uuid.UUID                  `json:"cart_id,omitempty"`
	Items  []apporder.OrderItemRequest `json:"items,omitempty"`
}

// UpdateSessionRequest mutates the session's own configuration fields
type UpdateSessionRequest struct {
	ShippingAddress *valueobject.Address `json:"shipping_address,omitempty"`
	BillingAddress  *valueobject.Address `json:"billing_address,omitempty"`
	ShippingMethod  *string              `json:"shipping_method,omitempty"`
	PaymentMethod   *string              `json:"payment_method,omitempty"`
	PromoCode       *string              `json:"promo_code,omitempty"`
}

// CompleteCheckoutRequest finalizes a session into an order
type CompleteCheckoutRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// PricingDTO is the charge breakdown read model
type PricingDTO struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// SessionDTO is the read model of a checkout session
type SessionDTO struct {
	ID              uuid.UUID                 `json:"id"`
	UserID          uuid.UUID                 `json:"user_id"`
	CartID          *uuid.UUID                `json:"cart_id,omitempty"`
	Items           []checkout.SessionItem    `json:"items"`
	Pricing         PricingDTO                `json:"pricing"`
	ShippingAddress *valueobject.Address      `json:"shipping_address,omitempty"`
	BillingAddress  *valueobject.Address      `json:"billing_address,omitempty"`
	ShippingMethod  string                    `json:"shipping_method,omitempty"`
	PaymentMethod   string                    `json:"payment_method,omitempty"`
	PromoCode       string                    `json:"promo_code,omitempty"`
	ShippingOptions []apporder.ShippingOption `json:"shipping_options"`
	PaymentMethods  []string                  `json:"payment_methods"`
	ExpiresAt       time.Time                 `json:"expires_at"`
}

// ToSessionDTO converts a domain session to its DTO, attaching the
// shipping and payment menus offered to the user
func ToSessionDTO(s *checkout.Session, shippingOptions []apporder.ShippingOption, paymentMethods []string) *SessionDTO {
	return &SessionDTO{
		ID:     s.ID,
		UserID: s.UserID,
		CartID: s.CartID,
		Items:  s.Items,
		Pricing: PricingDTO{
			Subtotal: s.Pricing.Subtotal,
			Tax:      s.Pricing.Tax,
			Shipping: s.Pricing.Shipping,
			Discount: s.Pricing.Discount,
			Total:    s.Pricing.Total,
		},
		ShippingAddress: s.ShippingAddress,
		BillingAddress:  s.BillingAddress,
		ShippingMethod:  s.ShippingMethod,
		PaymentMethod:   s.PaymentMethod,
		PromoCode:       s.PromoCode,
		ShippingOptions: shippingOptions,
		PaymentMethods:  paymentMethods,
		ExpiresAt:       s.ExpiresAt,
	}
}
