package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/market/backend/internal/application/inventory"
	apporder "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/domain/cart"
	"github.com/market/backend/internal/domain/catalog"
	"github.com/market/backend/internal/domain/checkout"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionService manages the checkout staging area. Sessions snapshot
// availability without holding reservations: the only reserve happens
// inside order placement at completion time. Expiry is checked lazily on
// every read.
type SessionService struct {
	sessions   checkout.Repository
	carts      cart.Repository
	catalog    catalog.Repository
	ledger     *appinventory.LedgerService
	placement  *apporder.PlacementService
	pricing    *apporder.PricingCalculator
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewSessionService creates a new checkout session service
func NewSessionService(
	sessions checkout.Repository,
	carts cart.Repository,
	catalogRepo catalog.Repository,
	ledger *appinventory.LedgerService,
	placement *apporder.PlacementService,
	pricing *apporder.PricingCalculator,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		carts:      carts,
		catalog:    catalogRepo,
		ledger:     ledger,
		placement:  placement,
		pricing:    pricing,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// CreateSession stages a checkout from a cart or explicit item list,
// snapshotting catalog data and current availability
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionDTO, error) {
	if req.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}

	requested, err := s.resolveRequestedItems(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := s.snapshotItems(ctx, requested)
	if err != nil {
		return nil, err
	}

	session, err := checkout.NewSession(req.UserID, req.CartID, items, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	if err := s.recomputePricing(session); err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return s.toDTO(session), nil
}

// GetSession returns an active session; an expired one fails with
// ErrSessionExpired regardless of its cached contents
func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*SessionDTO, error) {
	session, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(session), nil
}

// UpdateSession mutates the session's configuration fields and
// recomputes pricing; it never touches inventory
func (s *SessionService) UpdateSession(ctx context.Context, id uuid.UUID, req UpdateSessionRequest) (*SessionDTO, error) {
	session, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}

	session.SetAddresses(req.ShippingAddress, req.BillingAddress)
	if req.ShippingMethod != nil {
		session.SelectShippingMethod(*req.ShippingMethod)
	}
	if req.PaymentMethod != nil {
		if !s.pricing.IsPaymentMethod(*req.PaymentMethod) {
			return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+*req.PaymentMethod)
		}
		session.SelectPaymentMethod(*req.PaymentMethod)
	}
	if req.PromoCode != nil {
		session.ApplyPromoCode(*req.PromoCode)
	}

	if err := s.recomputePricing(session); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.toDTO(session), nil
}

// CompleteCheckout re-validates availability, then hands the session off
// to order placement. The session is deleted only after the order exists.
func (s *SessionService) CompleteCheckout(ctx context.Context, id uuid.UUID, req CompleteCheckoutRequest) (*apporder.OrderDTO, error) {
	session, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}

	// Time has passed since staging; refresh the availability flags
	// before deciding the session is completable
	if err := s.refreshAvailability(ctx, session); err != nil {
		return nil, err
	}
	if err := session.ReadyToComplete(); err != nil {
		return nil, err
	}

	items := make([]apporder.OrderItemRequest, 0, len(session.Items))
	for _, item := range session.Items {
		items = append(items, apporder.OrderItemRequest{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	orderDTO, err := s.placement.PlaceOrder(ctx, apporder.PlaceOrderRequest{
		UserID:          session.UserID,
		CartID:          session.CartID,
		Items:           items,
		ShippingAddress: *session.ShippingAddress,
		BillingAddress:  *session.BillingAddress,
		ShippingMethod:  session.ShippingMethod,
		PaymentMethod:   session.PaymentMethod,
		PromoCode:       session.PromoCode,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.logger.Warn("failed to delete completed checkout session",
			zap.String("session_id", session.ID.String()),
			zap.Error(err))
	}
	return orderDTO, nil
}

// CleanupExpired opportunistically deletes sessions past their expiry.
// Lazy read-time checks remain the source of truth; this only trims rows.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now())
}

func (s *SessionService) loadActive(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.EnsureActive(time.Now()); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) resolveRequestedItems(ctx context.Context, req CreateSessionRequest) ([]apporder.OrderItemRequest, error) {
	if req.CartID != nil {
		c, err := s.carts.FindWithItems(ctx, *req.CartID)
		if err != nil {
			return nil, err
		}
		if c.UserID != req.UserID {
			return nil, shared.NewDomainError("INVALID_CART", "Cart does not belong to the user")
		}
		if c.IsEmpty() {
			return nil, shared.NewDomainError("EMPTY_SESSION", "Cart is empty")
		}
		items := make([]apporder.OrderItemRequest, 0, len(c.Items))
		for _, item := range c.Items {
			items = append(items, apporder.OrderItemRequest{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
			})
		}
		return items, nil
	}

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_SESSION", "Checkout must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
	}
	return req.Items, nil
}

// snapshotItems resolves catalog data and live availability into
// session line snapshots
func (s *SessionService) snapshotItems(ctx context.Context, requested []apporder.OrderItemRequest) ([]checkout.SessionItem, error) {
	productIDs := make([]uuid.UUID, 0, len(requested))
	targets := make([]inventory.Target, 0, len(requested))
	for _, item := range requested {
		productIDs = append(productIDs, item.ProductID)
		targets = append(targets, inventory.Target{ProductID: item.ProductID, VariantID: item.VariantID})
	}

	products, err := s.catalog.FindProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	levels, err := s.ledger.BulkStockLevel(ctx, targets)
	if err != nil {
		return nil, err
	}

	items := make([]checkout.SessionItem, 0, len(requested))
	for i, reqItem := range requested {
		product, ok := byID[reqItem.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Product "+reqItem.ProductID.String()+" not found")
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product "+product.Name+" is not available")
		}

		name, sku, price := product.Name, product.SKU, product.Price
		vendorID := product.VendorID
		if reqItem.VariantID != nil {
			variant := product.Variant(*reqItem.VariantID)
			if variant == nil {
				return nil, shared.NewDomainError("NOT_FOUND", "Variant "+reqItem.VariantID.String()+" not found")
			}
			if !variant.Active {
				return nil, shared.NewDomainError("INVALID_PRODUCT", "Variant "+variant.Name+" is not available")
			}
			name = product.Name + " / " + variant.Name
			sku = variant.SKU
			price = variant.Price
		}

		available := levels[i].Available
		items = append(items, checkout.SessionItem{
			ProductID:         reqItem.ProductID,
			VariantID:         reqItem.VariantID,
			VendorID:          vendorID,
			Name:              name,
			SKU:               sku,
			Quantity:          reqItem.Quantity,
			UnitPrice:         price,
			LineTotal:         price.Mul(decimal.NewFromInt(reqItem.Quantity)),
			Available:         available >= reqItem.Quantity,
			AvailableQuantity: available,
		})
	}
	return items, nil
}

func (s *SessionService) refreshAvailability(ctx context.Context, session *checkout.Session) error {
	targets := make([]inventory.Target, 0, len(session.Items))
	for _, item := range session.Items {
		targets = append(targets, inventory.Target{ProductID: item.ProductID, VariantID: item.VariantID})
	}
	levels, err := s.ledger.BulkStockLevel(ctx, targets)
	if err != nil {
		return err
	}

	availableByKey := make(map[string]int64, len(levels))
	for i, level := range levels {
		availableByKey[targets[i].Key()] = level.Available
	}
	session.RefreshAvailability(availableByKey)
	return nil
}

func (s *SessionService) recomputePricing(session *checkout.Session) error {
	quote, err := s.pricing.QuoteFor(session.Subtotal(), session.ShippingMethod)
	if err != nil {
		return err
	}
	session.SetPricing(checkout.Pricing{
		Subtotal: quote.Subtotal,
		Tax:      quote.Tax,
		Shipping: quote.Shipping,
		Discount: quote.Discount,
		Total:    quote.Total,
	})
	return nil
}

func (s *SessionService) toDTO(session *checkout.Session) *SessionDTO {
	return ToSessionDTO(session, s.pricing.ShippingOptions(), s.pricing.PaymentMethods())
}
