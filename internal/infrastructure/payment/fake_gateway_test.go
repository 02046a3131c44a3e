package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	appsorder "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFakeGateway_Charge(t *testing.T) {
	gateway := NewFakeGateway(zap.NewNop())

	t.Run("approves a charge with a synthetic reference", func(t *testing.T) {
		result, err := gateway.Charge(context.Background(), appsorder.ChargeRequest{
			OrderID:     uuid.New(),
			OrderNumber: "ORD-20260830-00001",
			Amount:      decimal.NewFromFloat(27.99),
			Currency:    "usd",
			Method:      "card",
			CustomerID:  uuid.New(),
		})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, appsorder.ChargeStatusPaid, result.Status)
		assert.True(t, strings.HasPrefix(result.Reference, "fake_"))
	})

	t.Run("distinct charges get distinct references", func(t *testing.T) {
		req := appsorder.ChargeRequest{
			OrderNumber: "ORD-20260830-00002",
			Amount:      decimal.NewFromInt(10),
		}

		first, err := gateway.Charge(context.Background(), req)
		require.NoError(t, err)
		second, err := gateway.Charge(context.Background(), req)
		require.NoError(t, err)

		assert.NotEqual(t, first.Reference, second.Reference)
	})

	t.Run("zero amount is accepted", func(t *testing.T) {
		result, err := gateway.Charge(context.Background(), appsorder.ChargeRequest{
			OrderNumber: "ORD-20260830-00003",
			Amount:      decimal.Zero,
		})

		require.NoError(t, err)
		assert.Equal(t, appsorder.ChargeStatusPaid, result.Status)
	})

	t.Run("rejects a negative amount", func(t *testing.T) {
		result, err := gateway.Charge(context.Background(), appsorder.ChargeRequest{
			OrderNumber: "ORD-20260830-00004",
			Amount:      decimal.NewFromInt(-5),
		})

		require.Error(t, err)
		assert.Nil(t, result)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_FAILED", domainErr.Code)
	})
}
