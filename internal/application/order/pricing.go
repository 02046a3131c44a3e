package order

import (
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShippingOption is one entry in the fixed shipping method menu
type ShippingOption struct {
	Code string          `json:"code"`
	Name string          `json:"name"`
	Fee  decimal.Decimal `json:"fee"`
}

// Quote is a computed charge breakdown
type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// PricingCalculator folds tax and shipping fees into order totals.
// Rates and menus come from configuration; the rest of the platform owns
// their business correctness.
type PricingCalculator struct {
	taxRate               decimal.Decimal
	freeShippingThreshold decimal.Decimal
	shippingOptions       []ShippingOption
	paymentMethods        []string
}

// NewPricingCalculator creates a pricing calculator
func NewPricingCalculator(taxRate, freeShippingThreshold decimal.Decimal, shippingOptions []ShippingOption, paymentMethods []string) *PricingCalculator {
	return &PricingCalculator{
		taxRate:               taxRate,
		freeShippingThreshold: freeShippingThreshold,
		shippingOptions:       shippingOptions,
		paymentMethods:        paymentMethods,
	}
}

// ShippingOptions returns the fixed shipping method menu
func (c *PricingCalculator) ShippingOptions() []ShippingOption {
	return c.shippingOptions
}

// PaymentMethods returns the accepted payment method codes
func (c *PricingCalculator) PaymentMethods() []string {
	return c.paymentMethods
}

// IsPaymentMethod returns true if the code is an accepted payment method
func (c *PricingCalculator) IsPaymentMethod(code string) bool {
	for _, method := range c.paymentMethods {
		if method == code {
			return true
		}
	}
	return false
}

// ShippingFee returns the fee for a shipping method code, honoring the
// free shipping threshold. An unknown code is a validation error even
// when the threshold would waive the fee.
func (c *PricingCalculator) ShippingFee(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	for _, option := range c.shippingOptions {
		if option.Code == code {
			if c.freeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(c.freeShippingThreshold) {
				return decimal.Zero, nil
			}
			return option.Fee, nil
		}
	}
	return decimal.Zero, shared.NewDomainError("INVALID_SHIPPING_METHOD", "Unknown shipping method: "+code)
}

// QuoteFor computes the full charge breakdown for a subtotal and shipping
// method. Promo discounts are not implemented here; a recorded promo code
// currently yields no discount.
func (c *PricingCalculator) QuoteFor(subtotal decimal.Decimal, shippingMethod string) (Quote, error) {
	shipping := decimal.Zero
	if shippingMethod != "" {
		fee, err := c.ShippingFee(shippingMethod, subtotal)
		if err != nil {
			return Quote{}, err
		}
		shipping = fee
	}

	tax := subtotal.Mul(c.taxRate).Round(2)
	discount := decimal.Zero
	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}, nil
}
