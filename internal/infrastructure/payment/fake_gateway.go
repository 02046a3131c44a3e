package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appsorder "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FakeGateway is a development gateway that approves every charge with a
// synthetic reference. Never enabled in production; config validation
// rejects it there.
type FakeGateway struct {
	logger *zap.Logger
}

// NewFakeGateway creates a new FakeGateway
func NewFakeGateway(logger *zap.Logger) *FakeGateway {
	return &FakeGateway{logger: logger}
}

// Charge approves the request immediately
func (g *FakeGateway) Charge(ctx context.Context, req appsorder.ChargeRequest) (*appsorder.ChargeResult, error) {
	if req.Amount.IsNegative() {
		return nil, shared.NewDomainError("PAYMENT_FAILED", "Charge amount cannot be negative")
	}

	reference := fmt.Sprintf("fake_%s", uuid.NewString())
	g.logger.Info("Fake charge approved",
		zap.String("order_number", req.OrderNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("reference", reference),
	)

	return &appsorder.ChargeResult{
		Reference: reference,
		Status:    appsorder.ChargeStatusPaid,
	}, nil
}

// Ensure FakeGateway implements PaymentGateway
var _ appsorder.PaymentGateway = (*FakeGateway)(nil)
