package admin

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/logger"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

type statusRequest struct {
	Status string `json:"status"`
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterProtectedRoutes mounts the admin routes behind the given guards
// (normally the admin check).
func (h *Handler) RegisterProtectedRoutes(router fiber.Router, guards ...fiber.Handler) {
	group := router.Group("/admin", guards...)
	group.Get("/dashboard", h.getDashboard)
	group.Get("/orders", h.getOrders)
	group.Put("/orders/:id<int>/status", h.updateOrderStatus)
	group.Get("/users", h.getUsers)
	group.Put("/users/:id<int>/toggle", h.toggleUser)
	group.Get("/payments", h.getPayments)
}

func (h *Handler) getDashboard(c *fiber.Ctx) error {
	d, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(d)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	orders, err := h.service.Orders(c.UserContext(), c.Query("status"))
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders, "count": len(orders)})
}

func (h *Handler) updateOrderStatus(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid order id"))
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}

	log := logger.FromCtx(c, h.log)
	o, err := h.service.SetOrderStatus(c.UserContext(), orderID, payload.Status)
	if err != nil {
		log.Warn("order status update failed", zap.Int("order_id", orderID), zap.Error(err))
		return apperror.Write(c, err)
	}

	log.Info("order status updated", zap.Int("order_id", o.ID), zap.String("status", string(o.Status)))
	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"order":   o,
	})
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.Users(c.UserContext())
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

func (h *Handler) toggleUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid user id"))
	}

	log := logger.FromCtx(c, h.log)
	u, err := h.service.ToggleUser(c.UserContext(), userID)
	if err != nil {
		log.Warn("user toggle failed", zap.Int("target_user_id", userID), zap.Error(err))
		return apperror.Write(c, err)
	}

	log.Info("user status toggled", zap.Int("target_user_id", u.ID), zap.Bool("is_active", u.IsActive))
	return c.JSON(fiber.Map{
		"message": "User status updated",
		"user":    u,
	})
}

func (h *Handler) getPayments(c *fiber.Ctx) error {
	payments, err := h.service.Payments(c.UserContext())
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"payments": payments, "count": len(payments)})
}
