package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with currency
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a new Money value object
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: currency}
}

// NewMoneyUSD creates a new Money value object in USD
func NewMoneyUSD(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: "USD"}
}

// ZeroUSD returns a zero USD amount
func ZeroUSD() Money {
	return Money{amount: decimal.Zero, currency: "USD"}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() string {
	return m.currency
}

// Add adds two money values of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub subtracts two money values of the same currency
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Mul multiplies the amount by a factor
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal compares two money values
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a human-readable representation
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
