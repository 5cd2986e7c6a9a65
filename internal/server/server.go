package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/wichananm65/orders-api/internal/admin"
	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/auth"
	"github.com/wichananm65/orders-api/internal/cart"
	"github.com/wichananm65/orders-api/internal/health"
	"github.com/wichananm65/orders-api/internal/logger"
	"github.com/wichananm65/orders-api/internal/metrics"
	"github.com/wichananm65/orders-api/internal/order"
	"github.com/wichananm65/orders-api/internal/product"
)

// New builds the fiber app with every route mounted. Public routes are
// registered before the bearer-protected /api group.
func New(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      health.APIName,
		ErrorHandler: apperror.Handler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware(deps.Logger))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.CORSAllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	authHandler := auth.NewHandler(deps.Users, deps.Tokens, deps.LoginLimiter, deps.Logger)
	productHandler := product.NewHandler(deps.Products, deps.Logger)
	cartHandler := cart.NewHandler(deps.Carts, deps.Logger)
	orderHandler := order.NewHandler(deps.Orders, deps.Logger)
	adminHandler := admin.NewHandler(admin.NewService(deps.Users, deps.Products, deps.Orders), deps.Logger)

	app.Get("/metrics", metrics.Handler())
	health.NewHandler(deps.DB, deps.Logger).RegisterPublicRoutes(app)
	authHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	api := app.Group("/api", auth.Middleware(deps.JWTSecret), auth.RequireUser(deps.Users))
	authHandler.RegisterProtectedRoutes(api)
	cartHandler.RegisterProtectedRoutes(api)
	orderHandler.RegisterProtectedRoutes(api)
	productHandler.RegisterProtectedRoutes(api, auth.RequireAdmin())
	adminHandler.RegisterProtectedRoutes(api, auth.RequireAdmin())

	return app
}
