package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/market/backend/internal/application/inventory"
	"github.com/market/backend/internal/domain/cart"
	"github.com/market/backend/internal/domain/catalog"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/order"
	"github.com/market/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

// resolvedItem pairs an order line snapshot with its inventory target
type resolvedItem struct {
	item   order.OrderItem
	target inventory.Target
}

// undoStep is one accumulated compensation action. Steps are recorded as
// the placement progresses and run in reverse on any later failure, so
// every failure point unwinds the same way.
type undoStep struct {
	description string
	undo        func(ctx context.Context) error
}

// PlacementService coordinates order creation: resolve items, reserve
// stock, persist the order, charge payment, clear the source cart. Any
// failure before completion releases every reservation made in the
// attempt; the caller sees either a persisted order or a typed error
// with no inventory side effects.
type PlacementService struct {
	orders       order.Repository
	carts        cart.Repository
	catalog      catalog.Repository
	reservations *appinventory.ReservationService
	gateway      PaymentGateway
	pricing      *PricingCalculator
	idempotency  IdempotencyStore
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewPlacementService creates a new placement service
func NewPlacementService(
	orders order.Repository,
	carts cart.Repository,
	catalogRepo catalog.Repository,
	reservations *appinventory.ReservationService,
	gateway PaymentGateway,
	pricing *PricingCalculator,
	idempotency IdempotencyStore,
	events shared.EventPublisher,
	logger *zap.Logger,
) *PlacementService {
	return &PlacementService{
		orders:       orders,
		carts:        carts,
		catalog:      catalogRepo,
		reservations: reservations,
		gateway:      gateway,
		pricing:      pricing,
		idempotency:  idempotency,
		events:       events,
		logger:       logger,
	}
}

// PlaceOrder runs the full placement sequence and returns the persisted
// order, or a typed error after compensation
func (s *PlacementService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderDTO, error) {
	if req.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}
	if !req.ShippingAddress.IsComplete() || !req.BillingAddress.IsComplete() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Complete shipping and billing addresses are required")
	}
	if !s.pricing.IsPaymentMethod(req.PaymentMethod) {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+req.PaymentMethod)
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		acquired, err := s.idempotency.TryAcquire(ctx, idempotencyKey(req.UserID, req.IdempotencyKey), idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, shared.ErrDuplicateRequest
		}
	}

	dto, err := s.placeOrder(ctx, req)
	if err != nil && req.IdempotencyKey != "" && s.idempotency != nil {
		if releaseErr := s.idempotency.Release(ctx, idempotencyKey(req.UserID, req.IdempotencyKey)); releaseErr != nil {
			s.logger.Warn("failed to release idempotency key", zap.Error(releaseErr))
		}
	}
	return dto, err
}

func (s *PlacementService) placeOrder(ctx context.Context, req PlaceOrderRequest) (*OrderDTO, error) {
	// Resolve line items from the cart or the explicit list and snapshot
	// catalog data at this instant
	requested, err := s.resolveRequestedItems(ctx, req)
	if err != nil {
		return nil, err
	}
	resolved, err := s.snapshotItems(ctx, requested)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	var compensation []undoStep

	// Reserve stock item by item. The first shortage unwinds every hold
	// taken in this attempt before any order row exists.
	for _, ri := range resolved {
		target, quantity := ri.target, ri.item.Quantity
		reserved, err := s.reservations.Reserve(ctx, target, quantity, orderNumber)
		if err != nil {
			s.compensate(ctx, compensation)
			return nil, err
		}
		if !reserved {
			s.compensate(ctx, compensation)
			return nil, s.insufficientStockError(ctx, target, quantity)
		}
		compensation = append(compensation, undoStep{
			description: "release reservation " + target.String(),
			undo: func(ctx context.Context) error {
				return s.reservations.Release(ctx, target, quantity, orderNumber)
			},
		})
	}

	// Persist the order with items and initial history atomically
	items := make([]order.OrderItem, 0, len(resolved))
	for _, ri := range resolved {
		items = append(items, ri.item)
	}
	o, err := order.NewOrder(orderNumber, req.UserID, items)
	if err != nil {
		s.compensate(ctx, compensation)
		return nil, err
	}

	quote, err := s.pricing.QuoteFor(o.Subtotal, req.ShippingMethod)
	if err != nil {
		s.compensate(ctx, compensation)
		return nil, err
	}
	o.ApplyPricing(quote.Tax, quote.Shipping, quote.Discount)
	o.SetAddresses(req.ShippingAddress, req.BillingAddress)
	o.SetPaymentMethod(req.PaymentMethod)

	if err := s.orders.Create(ctx, o); err != nil {
		s.compensate(ctx, compensation)
		return nil, err
	}
	compensation = append(compensation, undoStep{
		description: "mark order " + orderNumber + " failed",
		undo: func(ctx context.Context) error {
			if err := o.MarkFailed("Order placement failed"); err != nil {
				return err
			}
			return s.orders.Save(ctx, o)
		},
	})

	// Charge payment synchronously. Rejection compensates: reservations
	// released, order marked failed, never left silently inconsistent.
	result, err := s.gateway.Charge(ctx, ChargeRequest{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Amount:      o.TotalAmount,
		Currency:    "USD",
		Method:      req.PaymentMethod,
		CustomerID:  req.UserID,
	})
	if err != nil {
		s.logger.Warn("payment rejected",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		s.compensate(ctx, compensation)
		return nil, shared.NewDomainError("PAYMENT_FAILED", "Payment was rejected: "+err.Error())
	}

	o.PaymentReference = result.Reference
	if result.Status == ChargeStatusPaid {
		if err := o.MarkPaid(result.Reference); err != nil {
			s.logger.Error("failed to mark order paid",
				zap.String("order_number", orderNumber),
				zap.Error(err))
		}
	}
	if err := s.orders.Save(ctx, o); err != nil {
		s.compensate(ctx, compensation)
		return nil, err
	}

	// Completed: clear the source cart. A failure here does not undo the
	// placed order; the stale cart is only a nuisance.
	if req.CartID != nil {
		if err := s.carts.Clear(ctx, *req.CartID); err != nil {
			s.logger.Warn("failed to clear cart after order placement",
				zap.String("cart_id", req.CartID.String()),
				zap.String("order_number", orderNumber),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, o)
	return ToOrderDTO(o), nil
}

// resolveRequestedItems expands a cart reference or validates the
// explicit item list
func (s *PlacementService) resolveRequestedItems(ctx context.Context, req PlaceOrderRequest) ([]OrderItemRequest, error) {
	if req.CartID != nil {
		c, err := s.carts.FindWithItems(ctx, *req.CartID)
		if err != nil {
			return nil, err
		}
		if c.UserID != req.UserID {
			return nil, shared.NewDomainError("INVALID_CART", "Cart does not belong to the user")
		}
		if c.IsEmpty() {
			return nil, shared.NewDomainError("EMPTY_ORDER", "Cart is empty")
		}
		items := make([]OrderItemRequest, 0, len(c.Items))
		for _, item := range c.Items {
			items = append(items, OrderItemRequest{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
			})
		}
		return items, nil
	}

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
	}
	return req.Items, nil
}

// snapshotItems resolves each requested item against the catalog and
// captures name, SKU, price and vendor. Later catalog edits do not
// retroactively change a placed order.
func (s *PlacementService) snapshotItems(ctx context.Context, requested []OrderItemRequest) ([]resolvedItem, error) {
	productIDs := make([]uuid.UUID, 0, len(requested))
	for _, item := range requested {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.catalog.FindProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	resolved := make([]resolvedItem, 0, len(requested))
	for _, reqItem := range requested {
		product, ok := byID[reqItem.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Product "+reqItem.ProductID.String()+" not found")
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product "+product.Name+" is not available for ordering")
		}

		name, sku, price := product.Name, product.SKU, product.Price
		if reqItem.VariantID != nil {
			variant := product.Variant(*reqItem.VariantID)
			if variant == nil {
				return nil, shared.NewDomainError("NOT_FOUND", "Variant "+reqItem.VariantID.String()+" not found")
			}
			if !variant.Active {
				return nil, shared.NewDomainError("INVALID_PRODUCT", "Variant "+variant.Name+" is not available for ordering")
			}
			name = product.Name + " / " + variant.Name
			sku = variant.SKU
			price = variant.Price
		}

		item, err := order.NewOrderItem(reqItem.ProductID, reqItem.VariantID, product.VendorID, name, sku, reqItem.Quantity, price)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedItem{
			item:   item,
			target: inventory.Target{ProductID: reqItem.ProductID, VariantID: reqItem.VariantID},
		})
	}
	return resolved, nil
}

// compensate runs accumulated undo steps in reverse order. Undo failures
// are logged, not propagated: the original error is what the caller needs.
func (s *PlacementService) compensate(ctx context.Context, steps []undoStep) {
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].undo(ctx); err != nil {
			s.logger.Error("compensation step failed",
				zap.String("step", steps[i].description),
				zap.Error(err))
		}
	}
}

// insufficientStockError builds the typed shortage error naming the
// offending item, with current availability when it can be read
func (s *PlacementService) insufficientStockError(ctx context.Context, target inventory.Target, requested int64) error {
	shortage := &inventory.InsufficientStockError{Target: target, Requested: requested}
	result, err := s.reservations.ValidateBatch(ctx, []appinventory.BatchValidationItem{{
		ProductID: target.ProductID,
		VariantID: target.VariantID,
		Quantity:  requested,
	}})
	if err == nil && len(result.Errors) > 0 {
		shortage.Available = result.Errors[0].Available
	}
	return shortage
}

func (s *PlacementService) publishEvents(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
	}
	o.ClearDomainEvents()
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return "order:place:" + userID.String() + ":" + key
}
