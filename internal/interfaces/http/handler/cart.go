package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/storefront/cart/internal/infrastructure/logger"
	"github.com/storefront/cart/internal/interfaces/http/dto"
	"github.com/storefront/cart/internal/interfaces/http/middleware"
	"github.com/storefront/cart/internal/interfaces/view"
	"go.uber.org/zap"
)

// CartEvents delivers UI events to the cart view in serial order
type CartEvents interface {
	EmitRemove(ctx context.Context, id string) error
	EmitQuantityChange(ctx context.Context, id, raw string) error
	EmitBulkUpdate(ctx context.Context, raw map[string]string) error
	EmitClear(ctx context.Context) error
	EmitAddRequest(ctx context.Context, attrs view.ProductAttributes) error
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Refresher renders the stored cart onto the surface
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PageSource returns the page most recently rendered
type PageSource interface {
	Page() view.Page
}

// CartHandler turns HTTP requests into cart view events and answers with
// the rendered page. The page is read after the event completes; a request
// running right behind it may already be reflected.
//
// The handler serves a single cart stored under storage.key: it stands in
// for one browser's page, so every client sees and edits the same cart.
type CartHandler struct {
	BaseHandler
	events    CartEvents
	refresher Refresher
	pages     PageSource
	logger    *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(events CartEvents, refresher Refresher, pages PageSource, log *zap.Logger) *CartHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartHandler{
		events:    events,
		refresher: refresher,
		pages:     pages,
		logger:    log.Named("cart_handler"),
	}
}

// GetCart renders the stored cart
// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	err := h.events.Run(c.Request.Context(), h.refresher.Refresh)
	h.respond(c, err)
}

// AddItem handles an add-to-cart trigger
// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respond(c, h.events.EmitAddRequest(c.Request.Context(), req.Attributes()))
}

// RemoveItem handles a remove click on a row
// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.respond(c, h.events.EmitRemove(c.Request.Context(), c.Param("id")))
}

// UpdateQuantity handles a live edit of one quantity field
// PUT /cart/items/:id/quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respond(c, h.events.EmitQuantityChange(c.Request.Context(), c.Param("id"), string(req.Quantity)))
}

// BulkUpdate handles the "update cart" action
// PUT /cart/quantities
func (h *CartHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respond(c, h.events.EmitBulkUpdate(c.Request.Context(), req.Raw()))
}

// ClearCart handles the "clear cart" action
// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.respond(c, h.events.EmitClear(c.Request.Context()))
}

func (h *CartHandler) respond(c *gin.Context, err error) {
	if errors.Is(err, view.ErrNoHandler) {
		logger.FromContext(c.Request.Context(), h.logger).Error("cart view is not bound")
		h.InternalError(c, "Cart is not available")
		return
	}

	page := dto.NewCartResponse(h.pages.Page())
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Info("cart action failed", zap.Error(err))
		h.HandleErrorWithData(c, err, page)
		return
	}
	h.Success(c, page)
}
