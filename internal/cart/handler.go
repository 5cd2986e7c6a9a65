package cart

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

type addRequest struct {
	ProductID *int `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

type updateRequest struct {
	Quantity *int `json:"quantity"`
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterProtectedRoutes expects router to already enforce authentication.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	group := router.Group("/cart")
	group.Get("/", h.getCart)
	group.Post("/add", h.addToCart)
	// clear must be registered before the id route
	group.Delete("/clear", h.clearCart)
	group.Put("/:id<int>", h.updateCartItem)
	group.Delete("/:id<int>", h.removeFromCart)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}

	view, err := h.service.View(c.UserContext(), userID)
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}

	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}
	if payload.ProductID == nil {
		return apperror.Write(c, apperror.NewBadRequest("Product ID required"))
	}
	quantity := 1
	if payload.Quantity != nil {
		quantity = *payload.Quantity
	}

	line, err := h.service.Add(c.UserContext(), userID, *payload.ProductID, quantity)
	if err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("item added to cart",
		zap.Int("user_id", userID),
		zap.Int("product_id", line.ProductID),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Item added to cart",
		"cart_item": line,
	})
}

func (h *Handler) updateCartItem(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}
	itemID, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid cart item id"))
	}

	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}
	quantity := 1
	if payload.Quantity != nil {
		quantity = *payload.Quantity
	}

	line, err := h.service.Update(c.UserContext(), userID, itemID, quantity)
	if err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("cart item updated", zap.Int("cart_item_id", itemID))
	return c.JSON(fiber.Map{
		"message":   "Cart item updated",
		"cart_item": line,
	})
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}
	itemID, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid cart item id"))
	}

	if err := h.service.Remove(c.UserContext(), userID, itemID); err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("cart item removed", zap.Int("cart_item_id", itemID))
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return apperror.Write(c, auth.ErrInvalidToken)
	}

	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("cart cleared", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
