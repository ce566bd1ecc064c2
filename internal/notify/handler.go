package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sportiify/internal/consul"

	"github.com/gin-gonic/gin"
)

// Handler serves the notifier health endpoint
type Handler struct {
	ping   func(ctx context.Context) error
	store  IdempotencyStore
	logger *slog.Logger
}

// NewHandler creates a new notifier handler. ping checks the idempotency backend.
func NewHandler(ping func(ctx context.Context) error, store IdempotencyStore, logger *slog.Logger) *Handler {
	return &Handler{ping: ping, store: store, logger: logger}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	redisStatus := "connected"
	if err := h.ping(ctx); err != nil {
		redisStatus = "disconnected"
		h.logger.Error("Redis health check failed", "error", err)
	}

	records, err := h.store.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count processed events", "error", err)
		records = -1
	}

	status, httpStatus := "healthy", http.StatusOK
	if redisStatus != "connected" {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":            status,
		"service":           consul.NotifierService,
		"redis":             redisStatus,
		"processed_records": records,
	})
}
