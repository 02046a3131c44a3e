package payment

import (
	"context"
	"fmt"

	appsorder "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.uber.org/zap"
)

// StripeGateway implements PaymentGateway against the Stripe API with
// immediate confirmation
type StripeGateway struct {
	currency string
	logger   *zap.Logger
}

// NewStripeGateway creates a new Stripe gateway. The API key is set
// process-wide; the stripe-go package-level client reads it.
func NewStripeGateway(apiKey, currency string, logger *zap.Logger) (*StripeGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe: api key is required")
	}
	stripe.Key = apiKey

	if currency == "" {
		currency = "usd"
	}

	return &StripeGateway{
		currency: currency,
		logger:   logger,
	}, nil
}

// Charge creates and confirms a payment intent for the order total
func (g *StripeGateway) Charge(ctx context.Context, req appsorder.ChargeRequest) (*appsorder.ChargeResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}

	params := &stripe.PaymentIntentParams{
		// Stripe amounts are in the smallest currency unit
		Amount:             stripe.Int64(req.Amount.Shift(2).Round(0).IntPart()),
		Currency:           stripe.String(currency),
		Confirm:            stripe.Bool(true),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String(fmt.Sprintf("Order %s", req.OrderNumber)),
		Metadata: map[string]string{
			"order_id":     req.OrderID.String(),
			"order_number": req.OrderNumber,
			"customer_id":  req.CustomerID.String(),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		g.logger.Warn("Stripe charge rejected",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("PAYMENT_FAILED", "Payment was declined by the provider")
	}

	result := &appsorder.ChargeResult{
		Reference: intent.ID,
		Status:    appsorder.ChargeStatusPending,
	}
	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		result.Status = appsorder.ChargeStatusPaid
	}

	g.logger.Info("Stripe charge accepted",
		zap.String("order_number", req.OrderNumber),
		zap.String("payment_intent_id", intent.ID),
		zap.String("status", string(intent.Status)),
	)

	return result, nil
}

// Ensure StripeGateway implements PaymentGateway
var _ appsorder.PaymentGateway = (*StripeGateway)(nil)
