package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Fallback bool   `json:"fallback,omitempty"`
	Uptime   string `json:"uptime"`
}

// HealthHandler reports liveness and which storage backend is in use
type HealthHandler struct {
	storage   string
	fallback  bool
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler for the given storage driver.
// fallback is true when the configured backend was replaced by memory storage.
func NewHealthHandler(storage string, fallback bool) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		fallback:  fallback,
		startTime: time.Now(),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := "healthy"
	if h.fallback {
		status = "degraded"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:   status,
		Storage:  h.storage,
		Fallback: h.fallback,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	})
}
