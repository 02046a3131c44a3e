package catalog

import (
	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle state of a catalog product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is a catalog entry owned by a vendor. The order path only
// reads products; catalog management happens elsewhere.
type Product struct {
	shared.BaseEntity
	VendorID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name     string           `gorm:"type:varchar(255);not null"`
	SKU      string           `gorm:"type:varchar(100);not null;uniqueIndex"`
	Price    decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Status   ProductStatus    `gorm:"type:varchar(20);not null;index"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// IsActive returns true if the product can be ordered
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Variant returns the variant with the given ID, or nil
func (p *Product) Variant(variantID uuid.UUID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// ProductVariant refines a product with its own SKU and price
type ProductVariant struct {
	shared.BaseEntity
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(255);not null"`
	SKU       string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}
