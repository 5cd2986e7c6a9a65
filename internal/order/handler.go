package order

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/auth"
	"github.com/wichananm65/orders-api/internal/logger"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterProtectedRoutes expects router to already enforce authentication.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	group := router.Group("/orders")
	group.Get("/", h.getOrders)
	group.Post("/checkout", h.checkout)
	group.Get("/:id<int>", h.getOrder)
	group.Post("/:id<int>/cancel", h.cancelOrder)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}

	orders, err := h.service.ListForUser(c.UserContext(), userID)
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders, "count": len(orders)})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid order id"))
	}

	o, err := h.service.GetForUser(c.UserContext(), userID, orderID)
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"order": o})
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}

	payload := new(checkoutRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
		}
	}

	log := logger.FromCtx(c, h.log)
	o, err := h.service.Checkout(c.UserContext(), userID, CheckoutInput{
		ShippingAddress: payload.ShippingAddress,
		PaymentMethod:   payload.PaymentMethod,
	})
	if err != nil {
		log.Warn("checkout failed", zap.Int("user_id", userID), zap.Error(err))
		return apperror.Write(c, err)
	}

	log.Info("order placed",
		zap.Int("user_id", userID),
		zap.Int("order_id", o.ID),
		zap.String("total_amount", o.TotalAmount.StringFixed(2)),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   o,
	})
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid order id"))
	}

	log := logger.FromCtx(c, h.log)
	o, err := h.service.Cancel(c.UserContext(), userID, orderID)
	if err != nil {
		log.Warn("order cancel failed", zap.Int("order_id", orderID), zap.Error(err))
		return apperror.Write(c, err)
	}

	log.Info("order cancelled", zap.Int("user_id", userID), zap.Int("order_id", o.ID))
	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
		"order":   o,
	})
}
