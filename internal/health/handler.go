package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/logger"
)

const (
	ServiceName = "orders-api"
	APIName     = "Orders Management API"
	Version     = "1.0.0"

	pingTimeout = 2 * time.Second
)

// Pinger reports whether the datastore is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db  Pinger
	log *zap.Logger
}

// NewHandler builds the health handler. A nil db means the in-memory store,
// which is always reachable.
func NewHandler(db Pinger, log *zap.Logger) *Handler {
	return &Handler{db: db, log: log}
}

func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/health", h.health)
	router.Get("/api/status", h.status)
}

func (h *Handler) health(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			logger.FromCtx(c, h.log).Error("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"database": "disconnected",
				"service":  ServiceName,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":   "healthy",
		"database": "connected",
		"service":  ServiceName,
	})
}

func (h *Handler) status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"api":     APIName,
		"version": Version,
		"status":  "running",
	})
}
