package cart

import (
	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
)

// Cart is a user's shopping cart. The order path reads it to resolve
// line items and clears it after a successful placement.
type Cart struct {
	shared.BaseEntity
	UserID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Items  []CartItem `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// IsEmpty returns true if the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartItem is one line in a cart
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"type:uuid"`
	Quantity  int64      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}
