package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/shared"
	"github.com/market/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItems(quantity int64) []SessionItem {
	return []SessionItem{{
		ProductID:         uuid.New(),
		VendorID:          uuid.New(),
		Name:              "Widget",
		SKU:               "SKU-1",
		Quantity:          quantity,
		UnitPrice:         decimal.RequireFromString("9.99"),
		LineTotal:         decimal.RequireFromString("9.99").Mul(decimal.NewFromInt(quantity)),
		Available:         true,
		AvailableQuantity: quantity,
	}}
}

func completeAddress() *valueobject.Address {
	return &valueobject.Address{
		FullName:   "Ada Lovelace",
		Line1:      "1 Analytical Way",
		City:       "London",
		PostalCode: "N1 7AA",
		Country:    "GB",
	}
}

func TestNewSession(t *testing.T) {
	t.Run("creates session with expiry", func(t *testing.T) {
		session, err := NewSession(uuid.New(), nil, newTestItems(2), 30*time.Minute)
		require.NoError(t, err)

		assert.False(t, session.IsExpired(time.Now()))
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), session.ExpiresAt, time.Second)
	})

	t.Run("fails without user", func(t *testing.T) {
		_, err := NewSession(uuid.Nil, nil, newTestItems(1), time.Minute)
		require.Error(t, err)
	})

	t.Run("fails without items", func(t *testing.T) {
		_, err := NewSession(uuid.New(), nil, nil, time.Minute)
		require.Error(t, err)
	})

	t.Run("fails with non-positive TTL", func(t *testing.T) {
		_, err := NewSession(uuid.New(), nil, newTestItems(1), 0)
		require.Error(t, err)
	})
}

func TestSessionExpiry(t *testing.T) {
	session, err := NewSession(uuid.New(), nil, newTestItems(1), time.Minute)
	require.NoError(t, err)

	t.Run("active before expiry", func(t *testing.T) {
		require.NoError(t, session.EnsureActive(time.Now()))
	})

	t.Run("expired after the deadline", func(t *testing.T) {
		later := session.ExpiresAt.Add(time.Second)
		assert.True(t, session.IsExpired(later))

		err := session.EnsureActive(later)
		require.ErrorIs(t, err, shared.ErrSessionExpired)
	})
}

func TestRefreshAvailability(t *testing.T) {
	items := newTestItems(3)
	session, err := NewSession(uuid.New(), nil, items, time.Minute)
	require.NoError(t, err)

	t.Run("marks items short on stock as unavailable", func(t *testing.T) {
		session.RefreshAvailability(map[string]int64{
			items[0].ProductID.String(): 2,
		})

		assert.False(t, session.Items[0].Available)
		assert.Equal(t, int64(2), session.Items[0].AvailableQuantity)
	})

	t.Run("marks items back available when stock returns", func(t *testing.T) {
		session.RefreshAvailability(map[string]int64{
			items[0].ProductID.String(): 5,
		})

		assert.True(t, session.Items[0].Available)
	})

	t.Run("absent target means zero availability", func(t *testing.T) {
		session.RefreshAvailability(map[string]int64{})
		assert.False(t, session.Items[0].Available)
		assert.Equal(t, int64(0), session.Items[0].AvailableQuantity)
	})
}

func TestReadyToComplete(t *testing.T) {
	newConfigured := func(t *testing.T) *Session {
		session, err := NewSession(uuid.New(), nil, newTestItems(1), time.Minute)
		require.NoError(t, err)
		session.SetAddresses(completeAddress(), completeAddress())
		session.SelectPaymentMethod("card")
		return session
	}

	t.Run("passes when fully configured", func(t *testing.T) {
		require.NoError(t, newConfigured(t).ReadyToComplete())
	})

	t.Run("fails without shipping address", func(t *testing.T) {
		session, err := NewSession(uuid.New(), nil, newTestItems(1), time.Minute)
		require.NoError(t, err)
		session.SelectPaymentMethod("card")
		require.Error(t, session.ReadyToComplete())
	})

	t.Run("fails with incomplete address", func(t *testing.T) {
		session := newConfigured(t)
		session.SetAddresses(&valueobject.Address{FullName: "A"}, completeAddress())
		require.Error(t, session.ReadyToComplete())
	})

	t.Run("fails without payment method", func(t *testing.T) {
		session, err := NewSession(uuid.New(), nil, newTestItems(1), time.Minute)
		require.NoError(t, err)
		session.SetAddresses(completeAddress(), completeAddress())
		require.Error(t, session.ReadyToComplete())
	})

	t.Run("fails with unavailable item", func(t *testing.T) {
		session := newConfigured(t)
		session.RefreshAvailability(map[string]int64{})
		require.Error(t, session.ReadyToComplete())
	})
}

func TestSubtotal(t *testing.T) {
	items := newTestItems(2)
	items = append(items, SessionItem{
		ProductID: uuid.New(),
		VendorID:  uuid.New(),
		Name:      "Gadget",
		SKU:       "SKU-2",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("5.01"),
		LineTotal: decimal.RequireFromString("5.01"),
		Available: true,
	})
	session, err := NewSession(uuid.New(), nil, items, time.Minute)
	require.NoError(t, err)

	assert.True(t, session.Subtotal().Equal(decimal.RequireFromString("24.99")))
}

func TestSetAddressesPartialUpdate(t *testing.T) {
	session, err := NewSession(uuid.New(), nil, newTestItems(1), time.Minute)
	require.NoError(t, err)

	shipping := completeAddress()
	session.SetAddresses(shipping, nil)
	assert.Equal(t, shipping, session.ShippingAddress)
	assert.Nil(t, session.BillingAddress)

	billing := completeAddress()
	session.SetAddresses(nil, billing)
	assert.Equal(t, shipping, session.ShippingAddress)
	assert.Equal(t, billing, session.BillingAddress)
}
