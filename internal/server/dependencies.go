package server

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/auth"
	"github.com/wichananm65/orders-api/internal/cart"
	"github.com/wichananm65/orders-api/internal/config"
	"github.com/wichananm65/orders-api/internal/health"
	"github.com/wichananm65/orders-api/internal/order"
	"github.com/wichananm65/orders-api/internal/product"
	"github.com/wichananm65/orders-api/internal/user"
)

// Repositories is one complete datastore backing for the API.
type Repositories struct {
	Users    user.Repository
	Products product.Repository
	Carts    cart.Repository
	Orders   order.Repository
}

func PostgresRepositories(db *sql.DB) Repositories {
	return Repositories{
		Users:    user.NewPostgresRepository(db),
		Products: product.NewPostgresRepository(db),
		Carts:    cart.NewPostgresRepository(db),
		Orders:   order.NewPostgresRepository(db),
	}
}

// InMemoryRepositories backs the API with process memory. Data is lost on
// restart.
func InMemoryRepositories() Repositories {
	products := product.NewInMemoryRepository(nil)
	carts := cart.NewInMemoryRepository()
	return Repositories{
		Users:    user.NewInMemoryRepository(nil),
		Products: products,
		Carts:    carts,
		Orders:   order.NewInMemoryRepository(products, carts),
	}
}

// Dependencies is everything the HTTP layer needs, built once at startup.
type Dependencies struct {
	Logger *zap.Logger
	// DB is pinged by /health. Leave nil for the in-memory store.
	DB health.Pinger

	CORSAllowOrigins string

	Users    *user.Service
	Products *product.Service
	Carts    *cart.Service
	Orders   *order.Service

	JWTSecret    string
	Tokens       *auth.TokenIssuer
	LoginLimiter *auth.RateLimiter
}

func NewDependencies(cfg config.Config, log *zap.Logger, db health.Pinger, repos Repositories) Dependencies {
	return Dependencies{
		Logger:           log,
		DB:               db,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		Users:            user.NewService(repos.Users),
		Products:         product.NewService(repos.Products),
		Carts:            cart.NewService(repos.Carts, repos.Products),
		Orders:           order.NewService(repos.Orders),
		JWTSecret:        cfg.JWT.Secret,
		Tokens:           auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL),
		LoginLimiter:     newLoginLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateBurst),
	}
}

// newLoginLimiter returns nil, disabling the limiter, for a non-positive rate.
func newLoginLimiter(rps float64, burst int) *auth.RateLimiter {
	if rps <= 0 {
		return nil
	}
	return auth.NewRateLimiter(rps, burst)
}

// ShutdownTimeout bounds how long in-flight requests may run after a stop
// signal.
func ShutdownTimeout(cfg config.Config) time.Duration {
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.HTTP.ShutdownTimeout
}
