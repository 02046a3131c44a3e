package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRequest is the input for a synchronous payment charge
type ChargeRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Method      string
	CustomerID  uuid.UUID
}

// ChargeStatus is the outcome reported by the payment provider
type ChargeStatus string

const (
	// ChargeStatusPaid means the charge settled immediately
	ChargeStatusPaid ChargeStatus = "paid"
	// ChargeStatusPending means the charge was accepted but has not settled
	ChargeStatusPending ChargeStatus = "pending"
)

// ChargeResult is the provider's response to a successful charge request
type ChargeResult struct {
	Reference string
	Status    ChargeStatus
}

// PaymentGateway is the payment collaborator contract. The call is
// synchronous and blocking; a returned error means the charge was
// rejected and the caller must compensate.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
