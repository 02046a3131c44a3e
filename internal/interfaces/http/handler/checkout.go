package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/market/backend/internal/application/checkout"
)

// CheckoutHandler handles checkout session API endpoints
type CheckoutHandler struct {
	BaseHandler
	sessions *checkoutapp.SessionService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(sessions *checkoutapp.SessionService) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

// CreateSession starts a checkout session from a cart or item list
// POST /api/v1/checkout/sessions
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req checkoutapp.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// GetSession returns an active checkout session
// GET /api/v1/checkout/sessions/:id
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// UpdateSession changes addresses, shipping, payment or promo fields
// PATCH /api/v1/checkout/sessions/:id
func (h *CheckoutHandler) UpdateSession(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	var req checkoutapp.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	session, err := h.sessions.UpdateSession(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// CompleteCheckout finalizes the session into a placed order
// POST /api/v1/checkout/sessions/:id/complete
func (h *CheckoutHandler) CompleteCheckout(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	// Body is optional; the idempotency key may come via header instead
	var req checkoutapp.CompleteCheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	result, err := h.sessions.CompleteCheckout(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
