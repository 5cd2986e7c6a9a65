package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/orders-api/internal/config"
	"github.com/wichananm65/orders-api/internal/database"
	"github.com/wichananm65/orders-api/internal/health"
	"github.com/wichananm65/orders-api/internal/logger"
	"github.com/wichananm65/orders-api/internal/product"
	"github.com/wichananm65/orders-api/internal/server"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: health.ServiceName,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, pinger, closeDB, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	deps := server.NewDependencies(cfg, log, pinger, repos)
	if err := seed(ctx, cfg, deps, log); err != nil {
		return err
	}

	app := server.New(deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		return app.Listen(cfg.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return app.ShutdownWithTimeout(server.ShutdownTimeout(cfg))
	})
	return g.Wait()
}

// openStore connects to Postgres when DATABASE_URL is set and falls back to
// the in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (server.Repositories, health.Pinger, func(), error) {
	if cfg.Database.URL == "" {
		if cfg.IsProduction() {
			return server.Repositories{}, nil, nil, errors.New("DATABASE_URL must be set in production")
		}
		log.Warn("DATABASE_URL not set, using in-memory store")
		return server.InMemoryRepositories(), nil, func() {}, nil
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return server.Repositories{}, nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return server.Repositories{}, nil, nil, err
	}
	log.Info("database ready")

	return server.PostgresRepositories(db), db, closer(db, log), nil
}

func closer(db *sql.DB, log *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}
}

func seed(ctx context.Context, cfg config.Config, deps server.Dependencies, log *zap.Logger) error {
	created, err := deps.Users.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.Admin.Email))
	}

	if !cfg.SeedSampleData {
		return nil
	}
	n, err := deps.Products.SeedIfEmpty(ctx, product.SampleProducts)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info("sample catalog seeded", zap.Int("products", n))
	}
	return nil
}
