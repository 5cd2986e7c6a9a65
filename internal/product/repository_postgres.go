package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Columns is the select list ScanRow expects.
const Columns = productColumns

const (
	productColumns = `id, name, description, price, stock_quantity, category, image_url, is_active, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = TRUE
			AND ($1 = '' OR category = $1)
			AND ($2 = '' OR name ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY id
	`
	getProductByIDQuery    = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	listProductsByIDsQuery = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id`

	insertProductQuery = `
		INSERT INTO products (name, description, price, stock_quantity, category, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	updateProductQuery = `
		UPDATE products
		SET name = COALESCE($1, name),
			description = COALESCE($2, description),
			price = COALESCE($3, price),
			stock_quantity = COALESCE($4, stock_quantity),
			category = COALESCE($5, category),
			image_url = COALESCE($6, image_url),
			is_active = COALESCE($7, is_active),
			updated_at = $8
		WHERE id = $9
		RETURNING ` + productColumns + `
	`
	listCategoriesQuery = `
		SELECT DISTINCT category
		FROM products
		WHERE is_active = TRUE AND category <> ''
		ORDER BY category
	`
	countActiveProductsQuery = `SELECT COUNT(*) FROM products WHERE is_active = TRUE`
	countProductsQuery       = `SELECT COUNT(*) FROM products`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery, filter.Category, escapeLike(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.QueryContext(ctx, listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list products by id: %w", err)
	}
	return collectProducts(rows)
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx,
		insertProductQuery,
		p.Name,
		p.Description,
		p.Price,
		p.StockQuantity,
		p.Category,
		p.ImageURL,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, patch UpdateInput, now time.Time) (Product, error) {
	var price decimal.NullDecimal
	if patch.Price != nil {
		price = decimal.NewNullDecimal(*patch.Price)
	}
	var stock sql.NullInt64
	if patch.StockQuantity != nil {
		stock = sql.NullInt64{Int64: int64(*patch.StockQuantity), Valid: true}
	}
	var active sql.NullBool
	if patch.IsActive != nil {
		active = sql.NullBool{Bool: *patch.IsActive, Valid: true}
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx,
		updateProductQuery,
		nullString(patch.Name),
		nullString(patch.Description),
		price,
		stock,
		nullString(patch.Category),
		nullString(patch.ImageURL),
		active,
		now,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) CountActive(ctx context.Context) (int, error) {
	return r.count(ctx, countActiveProductsQuery)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, countProductsQuery)
}

func (r *PostgresRepository) count(ctx context.Context, query string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func collectProducts(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ScanRow reads one row selected with the product column list. The order
// repository reuses it when locking products inside a transaction.
func ScanRow(scanner interface{ Scan(dest ...any) error }) (Product, error) {
	return scanProduct(scanner)
}

func scanProduct(scanner rowScanner) (Product, error) {
	var p Product
	err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.Category,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
