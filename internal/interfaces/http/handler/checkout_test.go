package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	checkoutapp "github.com/market/backend/internal/application/checkout"
	inventoryapp "github.com/market/backend/internal/application/inventory"
	orderapp "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/domain/cart"
	"github.com/market/backend/internal/domain/catalog"
	"github.com/market/backend/internal/domain/checkout"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
	"github.com/market/backend/internal/infrastructure/payment"
	"github.com/market/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessionRepository struct {
	sessions  map[uuid.UUID]*checkout.Session
	returnErr error
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[uuid.UUID]*checkout.Session)}
}

func (f *fakeSessionRepository) Create(ctx context.Context, session *checkout.Session) error {
	if f.returnErr != nil {
		return f.returnErr
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	if session, ok := f.sessions[id]; ok {
		return session, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeSessionRepository) Save(ctx context.Context, session *checkout.Session) error {
	if f.returnErr != nil {
		return f.returnErr
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.sessions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, session := range f.sessions {
		if session.ExpiresAt.Before(cutoff) {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeCartRepository struct {
	returnErr error
}

func (f *fakeCartRepository) FindWithItems(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeCartRepository) Clear(ctx context.Context, id uuid.UUID) error {
	return nil
}

// checkoutFixture wires the full checkout stack over in-memory fakes,
// with the development payment gateway approving every charge
type checkoutFixture struct {
	handler  *CheckoutHandler
	sessions *fakeSessionRepository
	records  *fakeInventoryRepository
	orders   *fakeOrderRepository
	catalog  *fakeCatalogRepository
}

func setupCheckoutTestHandler() *checkoutFixture {
	sessions := newFakeSessionRepository()
	records := newFakeInventoryRepository()
	movements := &fakeMovementRepository{}
	orders := newFakeOrderRepository()
	catalogRepo := newFakeCatalogRepository()
	carts := &fakeCartRepository{}

	txScope := &inventoryapp.NoOpTransactionScope{
		Repos: inventoryapp.TransactionalRepositories{
			Inventory: records,
			Movements: movements,
		},
	}
	ledger := inventoryapp.NewLedgerService(records, movements, catalogRepo, txScope, nil, zap.NewNop())
	reservations := inventoryapp.NewReservationService(records, txScope, nil, zap.NewNop())

	pricing := orderapp.NewPricingCalculator(
		decimal.RequireFromString("0.1"),
		decimal.NewFromInt(100),
		[]orderapp.ShippingOption{{Code: "standard", Name: "Standard", Fee: decimal.RequireFromString("5.99")}},
		[]string{"card"},
	)
	placement := orderapp.NewPlacementService(
		orders, carts, catalogRepo, reservations,
		payment.NewFakeGateway(zap.NewNop()), pricing, nil, nil, zap.NewNop())
	service := checkoutapp.NewSessionService(
		sessions, carts, catalogRepo, ledger, placement, pricing,
		30*time.Minute, zap.NewNop())

	return &checkoutFixture{
		handler:  NewCheckoutHandler(service),
		sessions: sessions,
		records:  records,
		orders:   orders,
		catalog:  catalogRepo,
	}
}

// stockedProduct registers an active product with stock and returns it
func (f *checkoutFixture) stockedProduct(t *testing.T, price string, quantity int64) *catalog.Product {
	t.Helper()
	product := &catalog.Product{
		BaseEntity: shared.NewBaseEntity(),
		VendorID:   uuid.New(),
		Name:       "Widget",
		SKU:        "SKU-W",
		Price:      decimal.RequireFromString(price),
		Status:     catalog.ProductStatusActive,
	}
	f.catalog.products[product.ID] = product

	record, err := inventory.NewInventoryRecord(inventory.NewProductTarget(product.ID), quantity, 0)
	require.NoError(t, err)
	f.records.records[record.Target().Key()] = record
	return product
}

func checkoutAddressJSON() map[string]interface{} {
	return map[string]interface{}{
		"full_name":   "Jo Smith",
		"line1":       "1 Main St",
		"city":        "Springfield",
		"postal_code": "12345",
		"country":     "US",
	}
}

// Tests

func TestCheckoutHandler_CreateSession(t *testing.T) {
	t.Run("stages a session from an item list", func(t *testing.T) {
		f := setupCheckoutTestHandler()
		product := f.stockedProduct(t, "10.00", 10)

		body, _ := json.Marshal(gin.H{
			"user_id": uuid.New(),
			"items":   []gin.H{{"product_id": product.ID, "quantity": 2}},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/sessions", bytes.NewBuffer(body))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.CreateSession(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})

		items := data["items"].([]interface{})
		require.Len(t, items, 1)
		line := items[0].(map[string]interface{})
		assert.Equal(t, "SKU-W", line["sku"])
		assert.True(t, line["available"].(bool))

		pricing := data["pricing"].(map[string]interface{})
		assert.Equal(t, "20", pricing["subtotal"])
		assert.Equal(t, "2", pricing["tax"])

		assert.Len(t, data["shipping_options"].([]interface{}), 1)
		assert.Len(t, f.sessions.sessions, 1)
	})

	t.Run("rejects a session without items or cart", func(t *testing.T) {
		f := setupCheckoutTestHandler()

		body, _ := json.Marshal(gin.H{"user_id": uuid.New()})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/sessions", bytes.NewBuffer(body))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.CreateSession(c)

		assert.NotEqual(t, http.StatusCreated, w.Code)
		assert.Empty(t, f.sessions.sessions)
	})
}

func TestCheckoutHandler_GetSession(t *testing.T) {
	t.Run("returns 410 for an expired session", func(t *testing.T) {
		f := setupCheckoutTestHandler()
		product := f.stockedProduct(t, "10.00", 10)

		session, err := checkout.NewSession(uuid.New(), nil, []checkout.SessionItem{{
			ProductID:         product.ID,
			VendorID:          product.VendorID,
			Name:              product.Name,
			SKU:               product.SKU,
			Quantity:          1,
			UnitPrice:         product.Price,
			LineTotal:         product.Price,
			Available:         true,
			AvailableQuantity: 10,
		}}, time.Minute)
		require.NoError(t, err)
		session.ExpiresAt = time.Now().Add(-time.Minute)
		f.sessions.sessions[session.ID] = session

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/checkout/sessions/"+session.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: session.ID.String()}}

		f.handler.GetSession(c)

		assert.Equal(t, http.StatusGone, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeSessionExpired, resp.Error.Code)
	})

	t.Run("returns 404 for an unknown session", func(t *testing.T) {
		f := setupCheckoutTestHandler()

		id := uuid.New()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/checkout/sessions/"+id.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		f.handler.GetSession(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCheckoutHandler_UpdateSession(t *testing.T) {
	f := setupCheckoutTestHandler()
	product := f.stockedProduct(t, "10.00", 10)

	// Stage through the service so pricing starts consistent
	body, _ := json.Marshal(gin.H{
		"user_id": uuid.New(),
		"items":   []gin.H{{"product_id": product.ID, "quantity": 2}},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/sessions", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	f.handler.CreateSession(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	sessionID := created.Data.(map[string]interface{})["id"].(string)

	update, _ := json.Marshal(gin.H{
		"shipping_address": checkoutAddressJSON(),
		"billing_address":  checkoutAddressJSON(),
		"shipping_method":  "standard",
		"payment_method":   "card",
	})

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPatch, "/checkout/sessions/"+sessionID, bytes.NewBuffer(update))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: sessionID}}

	f.handler.UpdateSession(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "standard", data["shipping_method"])
	assert.Equal(t, "card", data["payment_method"])

	// 20.00 subtotal + 2.00 tax + 5.99 shipping
	pricing := data["pricing"].(map[string]interface{})
	assert.Equal(t, "27.99", pricing["total"])
}

func TestCheckoutHandler_CompleteCheckout(t *testing.T) {
	completeConfigured := func(t *testing.T, f *checkoutFixture, product *catalog.Product) (*httptest.ResponseRecorder, uuid.UUID) {
		t.Helper()

		body, _ := json.Marshal(gin.H{
			"user_id": uuid.New(),
			"items":   []gin.H{{"product_id": product.ID, "quantity": 2}},
		})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/sessions", bytes.NewBuffer(body))
		c.Request.Header.Set("Content-Type", "application/json")
		f.handler.CreateSession(c)
		require.Equal(t, http.StatusCreated, w.Code)

		var created dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		sessionID := uuid.MustParse(created.Data.(map[string]interface{})["id"].(string))

		update, _ := json.Marshal(gin.H{
			"shipping_address": checkoutAddressJSON(),
			"billing_address":  checkoutAddressJSON(),
			"shipping_method":  "standard",
			"payment_method":   "card",
		})
		w = httptest.NewRecorder()
		c, _ = gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPatch, "/checkout/sessions/"+sessionID.String(), bytes.NewBuffer(update))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: sessionID.String()}}
		f.handler.UpdateSession(c)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		c, _ = gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/sessions/"+sessionID.String()+"/complete", nil)
		c.Request.Header.Set("Idempotency-Key", "complete-"+sessionID.String())
		c.Params = gin.Params{{Key: "id", Value: sessionID.String()}}
		f.handler.CompleteCheckout(c)

		return w, sessionID
	}

	t.Run("places the order and discards the session", func(t *testing.T) {
		f := setupCheckoutTestHandler()
		product := f.stockedProduct(t, "10.00", 10)

		w, sessionID := completeConfigured(t, f, product)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.NotEmpty(t, data["order_number"])
		assert.Equal(t, "paid", data["payment_status"])

		// The session is gone and the stock hold is in place
		assert.NotContains(t, f.sessions.sessions, sessionID)
		require.Len(t, f.orders.orders, 1)
		record := f.records.records[inventory.NewProductTarget(product.ID).Key()]
		assert.Equal(t, int64(2), record.ReservedQuantity)
	})

	t.Run("an unconfigured session cannot complete", func(t *testing.T) {
		f := setupCheckoutTestHandler()
		product := f.stockedProduct(t, "10.00", 10)

		body, _ := json.Marshal(gin.H{
			"user_id": uuid.New(),
			"items":   []gin.H{{"product_id": product.ID, "quantity": 2}},
		})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/sessions", bytes.NewBuffer(body))
		c.Request.Header.Set("Content-Type", "application/json")
		f.handler.CreateSession(c)
		require.Equal(t, http.StatusCreated, w.Code)

		var created dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		sessionID := created.Data.(map[string]interface{})["id"].(string)

		w = httptest.NewRecorder()
		c, _ = gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/sessions/"+sessionID+"/complete", nil)
		c.Params = gin.Params{{Key: "id", Value: sessionID}}
		f.handler.CompleteCheckout(c)

		assert.NotEqual(t, http.StatusCreated, w.Code)
		// Session survives a failed completion
		assert.Len(t, f.sessions.sessions, 1)
		assert.Empty(t, f.orders.orders)
	})
}
