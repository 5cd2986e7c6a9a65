package database

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		email         VARCHAR(120) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name    VARCHAR(50)  NOT NULL,
		last_name     VARCHAR(50)  NOT NULL,
		role          VARCHAR(20)  NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id             SERIAL PRIMARY KEY,
		name           VARCHAR(200)  NOT NULL,
		description    TEXT          NOT NULL DEFAULT '',
		price          NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		stock_quantity INTEGER       NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		category       VARCHAR(100)  NOT NULL DEFAULT '',
		image_url      VARCHAR(500)  NOT NULL DEFAULT '',
		is_active      BOOLEAN       NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ   NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ   NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id         SERIAL PRIMARY KEY,
		user_id    INTEGER     NOT NULL REFERENCES users (id),
		product_id INTEGER     NOT NULL REFERENCES products (id),
		quantity   INTEGER     NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               SERIAL PRIMARY KEY,
		user_id          INTEGER       NOT NULL REFERENCES users (id),
		total_amount     NUMERIC(12,2) NOT NULL,
		status           VARCHAR(20)   NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'processing', 'shipped', 'delivered', 'cancelled')),
		shipping_address TEXT          NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ   NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ   NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id                SERIAL PRIMARY KEY,
		order_id          INTEGER       NOT NULL REFERENCES orders (id),
		product_id        INTEGER       NOT NULL REFERENCES products (id),
		quantity          INTEGER       NOT NULL CHECK (quantity >= 1),
		price_at_purchase NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             SERIAL PRIMARY KEY,
		order_id       INTEGER       NOT NULL UNIQUE REFERENCES orders (id),
		amount         NUMERIC(12,2) NOT NULL,
		payment_method VARCHAR(50)   NOT NULL,
		payment_status VARCHAR(20)   NOT NULL DEFAULT 'pending'
			CHECK (payment_status IN ('pending', 'completed', 'failed', 'refunded')),
		transaction_id VARCHAR(100)  UNIQUE,
		created_at     TIMESTAMPTZ   NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ   NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema idempotently. Statements run in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
