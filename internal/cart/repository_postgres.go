package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	itemColumns = `id, user_id, product_id, quantity, created_at, updated_at`

	listCartQuery    = `SELECT ` + itemColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY id`
	getCartItemQuery = `SELECT ` + itemColumns + ` FROM cart_items WHERE id = $1 AND user_id = $2`

	upsertCartItemQuery = `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + itemColumns
	setQuantityQuery = `
		UPDATE cart_items
		SET quantity = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		RETURNING ` + itemColumns
	deleteCartItemQuery = `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`
	clearCartQuery      = `DELETE FROM cart_items WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, listCartQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) GetForUser(ctx context.Context, userID, itemID int) (Item, error) {
	return r.one(scanItem(r.db.QueryRowContext(ctx, getCartItemQuery, itemID, userID)))
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID, quantity int, now time.Time) (Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, upsertCartItemQuery, userID, productID, quantity, now))
	if err != nil {
		return Item{}, fmt.Errorf("add cart item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) SetQuantity(ctx context.Context, userID, itemID, quantity int, now time.Time) (Item, error) {
	return r.one(scanItem(r.db.QueryRowContext(ctx, setQuantityQuery, quantity, now, itemID, userID)))
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, itemID int) error {
	result, err := r.db.ExecContext(ctx, deleteCartItemQuery, itemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID int) error {
	if _, err := r.db.ExecContext(ctx, clearCartQuery, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) one(item Item, err error) (Item, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

func scanItem(scanner rowScanner) (Item, error) {
	var item Item
	err := scanner.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}
