package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
	"github.com/market/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SessionItem is a line snapshot staged inside a checkout session.
// Availability flags reflect stock levels at snapshot time; the session
// holds no reservation, so they can go stale.
type SessionItem struct {
	ProductID         uuid.UUID       `json:"product_id"`
	VariantID         *uuid.UUID      `json:"variant_id,omitempty"`
	VendorID          uuid.UUID       `json:"vendor_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Quantity          int64           `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LineTotal         decimal.Decimal `json:"line_total"`
	Available         bool            `json:"available"`
	AvailableQuantity int64           `json:"available_quantity"`
}

// Pricing is the computed charge breakdown for a session
type Pricing struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Session is a short-lived staging area between cart and order. It is
// mutated in place while the user configures checkout, deleted on
// completion, and garbage-collected after expiry. Expiry is evaluated
// lazily at read time.
type Session struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	CartID          *uuid.UUID           `gorm:"type:uuid"`
	Items           []SessionItem        `gorm:"serializer:json"`
	Pricing         Pricing              `gorm:"serializer:json"`
	ShippingAddress *valueobject.Address `gorm:"serializer:json"`
	BillingAddress  *valueobject.Address `gorm:"serializer:json"`
	ShippingMethod  string               `gorm:"type:varchar(50)"`
	PaymentMethod   string               `gorm:"type:varchar(50)"`
	PromoCode       string               `gorm:"type:varchar(50)"`
	ExpiresAt       time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Session) TableName() string {
	return "checkout_sessions"
}

// NewSession creates a new checkout session expiring after the given TTL
func NewSession(userID uuid.UUID, cartID *uuid.UUID, items []SessionItem, ttl time.Duration) (*Session, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_SESSION", "Checkout session must contain at least one item")
	}
	if ttl <= 0 {
		return nil, shared.NewDomainError("INVALID_TTL", "Session TTL must be positive")
	}

	return &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		CartID:            cartID,
		Items:             items,
		ExpiresAt:         time.Now().Add(ttl),
	}, nil
}

// IsExpired returns true if the session has passed its expiry time
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// EnsureActive returns ErrSessionExpired if the session has expired,
// regardless of its cached contents
func (s *Session) EnsureActive(now time.Time) error {
	if s.IsExpired(now) {
		return shared.ErrSessionExpired
	}
	return nil
}

// SetAddresses sets the shipping and billing addresses
func (s *Session) SetAddresses(shipping, billing *valueobject.Address) {
	if shipping != nil {
		s.ShippingAddress = shipping
	}
	if billing != nil {
		s.BillingAddress = billing
	}
	s.touch()
}

// SelectShippingMethod records the chosen shipping method code
func (s *Session) SelectShippingMethod(method string) {
	s.ShippingMethod = method
	s.touch()
}

// SelectPaymentMethod records the chosen payment method code
func (s *Session) SelectPaymentMethod(method string) {
	s.PaymentMethod = method
	s.touch()
}

// ApplyPromoCode records a promo code; discount computation is the
// pricing collaborator's concern
func (s *Session) ApplyPromoCode(code string) {
	s.PromoCode = code
	s.touch()
}

// SetPricing replaces the computed charge breakdown
func (s *Session) SetPricing(pricing Pricing) {
	s.Pricing = pricing
	s.touch()
}

// RefreshAvailability updates the per-item availability flags from
// current stock levels keyed by target key
func (s *Session) RefreshAvailability(availableByKey map[string]int64) {
	for i := range s.Items {
		key := s.Items[i].ProductID.String()
		if s.Items[i].VariantID != nil {
			key += ":" + s.Items[i].VariantID.String()
		}
		available := availableByKey[key]
		s.Items[i].AvailableQuantity = available
		s.Items[i].Available = available >= s.Items[i].Quantity
	}
	s.touch()
}

// ReadyToComplete validates that the session can be handed off to order
// placement: addresses and payment method selected, all items available
func (s *Session) ReadyToComplete() error {
	if s.ShippingAddress == nil || !s.ShippingAddress.IsComplete() {
		return shared.NewDomainError("MISSING_ADDRESS", "A complete shipping address is required")
	}
	if s.BillingAddress == nil || !s.BillingAddress.IsComplete() {
		return shared.NewDomainError("MISSING_ADDRESS", "A complete billing address is required")
	}
	if s.PaymentMethod == "" {
		return shared.NewDomainError("MISSING_PAYMENT_METHOD", "A payment method must be selected")
	}
	for _, item := range s.Items {
		if !item.Available {
			return shared.NewDomainError("ITEM_UNAVAILABLE", "Item "+item.SKU+" is no longer available in the requested quantity")
		}
	}
	return nil
}

// Subtotal returns the sum of all line totals
func (s *Session) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	return subtotal
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
