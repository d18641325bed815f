package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/cart/internal/infrastructure/logger"
	"github.com/storefront/cart/internal/interfaces/http/handler"
	"github.com/storefront/cart/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// CartRoutes maps the cart UI events onto HTTP routes
func CartRoutes(h *handler.CartHandler) *DomainGroup {
	return NewDomainGroup("cart", "/cart").
		Use(middleware.NoStore()).
		GET("", h.GetCart).
		DELETE("", h.ClearCart).
		POST("/items", h.AddItem).
		DELETE("/items/:id", h.RemoveItem).
		PUT("/items/:id/quantity", h.UpdateQuantity).
		PUT("/quantities", h.BulkUpdate)
}

// NewEngine builds the gin engine with the common middleware chain, the
// health endpoint and the cart API
func NewEngine(log *zap.Logger, cart *handler.CartHandler, health *handler.HealthHandler) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.BodyLimit(middleware.DefaultBodyLimit),
	)

	engine.GET("/health", health.Health)

	NewRouter(engine).Register(CartRoutes(cart)).Setup()
	return engine
}
