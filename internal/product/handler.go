package product

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/logger"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

type createRequest struct {
	Name          *string          `json:"name"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity int              `json:"stock_quantity"`
	Category      string           `json:"category"`
	ImageURL      string           `json:"image_url"`
}

type updateRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	Category      *string          `json:"category"`
	ImageURL      *string          `json:"image_url"`
	IsActive      *bool            `json:"is_active"`
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	group := router.Group("/api/products")
	group.Get("/", h.getProducts)
	// categories must be registered before the id route
	group.Get("/categories", h.getCategories)
	group.Get("/:id<int>", h.getProduct)
}

// RegisterProtectedRoutes mounts the catalog management routes behind the
// given guards (normally the admin check).
func (h *Handler) RegisterProtectedRoutes(router fiber.Router, guards ...fiber.Handler) {
	group := router.Group("/products", guards...)
	group.Post("/", h.createProduct)
	group.Put("/:id<int>", h.updateProduct)
	group.Delete("/:id<int>", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), Filter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"products": products, "count": len(products)})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid product id"))
	}

	p, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"product": p})
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return apperror.Write(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		return apperror.Write(c, apperror.NewBadRequest("Missing required field: name"))
	}
	if payload.Price == nil {
		return apperror.Write(c, apperror.NewBadRequest("Missing required field: price"))
	}

	created, err := h.service.Create(c.UserContext(), CreateInput{
		Name:          *payload.Name,
		Description:   payload.Description,
		Price:         *payload.Price,
		StockQuantity: payload.StockQuantity,
		Category:      payload.Category,
		ImageURL:      payload.ImageURL,
	})
	if err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("product created", zap.Int("product_id", created.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": created,
	})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid product id"))
	}

	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}

	updated, err := h.service.Update(c.UserContext(), id, UpdateInput{
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
		Category:      payload.Category,
		ImageURL:      payload.ImageURL,
		IsActive:      payload.IsActive,
	})
	if err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("product updated", zap.Int("product_id", updated.ID))
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": updated,
	})
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid product id"))
	}

	if _, err := h.service.SoftDelete(c.UserContext(), id); err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("product deleted", zap.Int("product_id", id))
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
