package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/orders-api/internal/cart"
	"github.com/wichananm65/orders-api/internal/database"
	"github.com/wichananm65/orders-api/internal/product"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	orderColumns   = `id, user_id, total_amount, status, shipping_address, created_at, updated_at`
	itemColumns    = `id, order_id, product_id, quantity, price_at_purchase`
	paymentColumns = `id, order_id, amount, payment_method, payment_status, transaction_id, created_at, updated_at`

	lockCartQuery = `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY id
		FOR UPDATE
	`
	lockProductsQuery = `
		SELECT ` + product.Columns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`
	insertOrderQuery = `
		INSERT INTO orders (user_id, total_amount, status, shipping_address, created_at, updated_at)
		VALUES ($1, $2, 'pending', $3, $4, $4)
		RETURNING id
	`
	insertItemQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	adjustStockQuery = `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = $2
		WHERE id = $3
	`
	insertPaymentQuery = `
		INSERT INTO payments (order_id, amount, payment_method, payment_status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, 'completed', $4, $5, $5)
		RETURNING id
	`
	setOrderStatusQuery = `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	clearCartQuery      = `DELETE FROM cart_items WHERE user_id = $1`

	lockOrderQuery      = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`
	refundPaymentQuery  = `UPDATE payments SET payment_status = 'refunded', updated_at = $1 WHERE order_id = $2`
	getOrderQuery       = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getUserOrderQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	listUserOrdersQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	listOrdersQuery     = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT NULLIF($2::int, 0)
	`
	listItemsQuery    = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`
	listPaymentsQuery = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = ANY($1)`
	allPaymentsQuery  = `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC, id DESC`
	summaryQuery      = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ('processing', 'shipped', 'delivered')), 0)
		FROM orders
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Checkout locks the user's cart rows and then every referenced product row
// in ascending id order before validating stock.
func (r *PostgresRepository) Checkout(ctx context.Context, req CheckoutRequest) (Order, error) {
	var created Order
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		items, err := lockCart(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		products, err := lockProducts(ctx, tx, items)
		if err != nil {
			return err
		}

		plan, err := PlanCheckout(items, products)
		if err != nil {
			return err
		}

		o := Order{
			UserID:          req.UserID,
			TotalAmount:     plan.Total,
			Status:          StatusPending,
			ShippingAddress: req.ShippingAddress,
			CreatedAt:       req.Now,
			UpdatedAt:       req.Now,
			Items:           make([]Item, 0, len(plan.Lines)),
		}
		if err := tx.QueryRowContext(ctx, insertOrderQuery, o.UserID, o.TotalAmount, o.ShippingAddress, req.Now).Scan(&o.ID); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, line := range plan.Lines {
			item := newItem(o.ID, line.ProductID, line.Quantity, line.Price)
			if err := tx.QueryRowContext(ctx, insertItemQuery, o.ID, item.ProductID, item.Quantity, item.PriceAtPurchase).Scan(&item.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			o.Items = append(o.Items, item)
		}

		for _, id := range plan.ProductIDs() {
			if _, err := tx.ExecContext(ctx, adjustStockQuery, -plan.Consumed[id], req.Now, id); err != nil {
				return fmt.Errorf("decrement stock for product %d: %w", id, err)
			}
		}

		payment := &Payment{
			OrderID:       o.ID,
			Amount:        plan.Total,
			Method:        req.PaymentMethod,
			Status:        PaymentCompleted,
			TransactionID: req.TransactionID,
			CreatedAt:     req.Now,
			UpdatedAt:     req.Now,
		}
		if err := tx.QueryRowContext(ctx, insertPaymentQuery, o.ID, payment.Amount, payment.Method, payment.TransactionID, req.Now).Scan(&payment.ID); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		o.Payment = payment

		if _, err := tx.ExecContext(ctx, setOrderStatusQuery, string(StatusProcessing), req.Now, o.ID); err != nil {
			return fmt.Errorf("advance order status: %w", err)
		}
		o.Status = StatusProcessing

		if _, err := tx.ExecContext(ctx, clearCartQuery, req.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		created = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Cancel(ctx context.Context, userID, orderID int, now time.Time) (Order, error) {
	var cancelled Order
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := scanOrder(tx.QueryRowContext(ctx, lockOrderQuery, orderID, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}
		if !o.Status.Cancellable() {
			return ErrNotCancellable
		}

		if err := loadDetails(ctx, tx, []*Order{&o}); err != nil {
			return err
		}

		restored := make(map[int]int, len(o.Items))
		for _, item := range o.Items {
			restored[item.ProductID] += item.Quantity
		}
		for _, id := range sortedKeys(restored) {
			if _, err := tx.ExecContext(ctx, adjustStockQuery, restored[id], now, id); err != nil {
				return fmt.Errorf("restore stock for product %d: %w", id, err)
			}
		}

		if _, err := tx.ExecContext(ctx, setOrderStatusQuery, string(StatusCancelled), now, o.ID); err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		o.Status = StatusCancelled
		o.UpdatedAt = now

		if _, err := tx.ExecContext(ctx, refundPaymentQuery, now, o.ID); err != nil {
			return fmt.Errorf("refund payment: %w", err)
		}
		if o.Payment != nil {
			o.Payment.Status = PaymentRefunded
			o.Payment.UpdatedAt = now
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return cancelled, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	return r.list(ctx, true, listUserOrdersQuery, userID)
}

func (r *PostgresRepository) GetForUser(ctx context.Context, userID, orderID int) (Order, error) {
	return r.get(ctx, getUserOrderQuery, orderID, userID)
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	return r.list(ctx, filter.WithItems, listOrdersQuery, string(filter.Status), filter.Limit)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Order, error) {
	return r.get(ctx, getOrderQuery, id)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int, status Status, now time.Time) (Order, error) {
	result, err := r.db.ExecContext(ctx, setOrderStatusQuery, string(status), now, id)
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Order{}, err
	}
	if affected == 0 {
		return Order{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) ListPayments(ctx context.Context) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx, allPaymentsQuery)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PostgresRepository) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	if err := r.db.QueryRowContext(ctx, summaryQuery).Scan(&s.TotalOrders, &s.PendingOrders, &s.Revenue); err != nil {
		return Summary{}, fmt.Errorf("order summary: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) get(ctx context.Context, query string, args ...any) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	if err := loadDetails(ctx, r.db, []*Order{&o}); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) list(ctx context.Context, withItems bool, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if withItems {
		err = loadDetails(ctx, r.db, refs)
	} else {
		err = loadPayments(ctx, r.db, refs)
	}
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func lockCart(ctx context.Context, q database.Querier, userID int) ([]cart.Item, error) {
	rows, err := q.QueryContext(ctx, lockCartQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	defer rows.Close()

	items := make([]cart.Item, 0)
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func lockProducts(ctx context.Context, q database.Querier, items []cart.Item) (map[int]product.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, int64(item.ProductID))
	}

	rows, err := q.QueryContext(ctx, lockProductsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	products := make(map[int]product.Product, len(ids))
	for rows.Next() {
		p, err := product.ScanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

// loadDetails attaches line items and payments to the given orders.
func loadDetails(ctx context.Context, q database.Querier, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := indexOrders(orders)

	rows, err := q.QueryContext(ctx, listItemsQuery, pq.Array(orderIDs(orders)))
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			rows.Close()
			return fmt.Errorf("scan order item: %w", err)
		}
		item.Subtotal = item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	return loadPayments(ctx, q, orders)
}

func loadPayments(ctx context.Context, q database.Querier, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := indexOrders(orders)

	rows, err := q.QueryContext(ctx, listPaymentsQuery, pq.Array(orderIDs(orders)))
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		if o, ok := byID[p.OrderID]; ok {
			payment := p
			o.Payment = &payment
		}
	}
	return rows.Err()
}

func indexOrders(orders []*Order) map[int]*Order {
	byID := make(map[int]*Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return byID
}

func orderIDs(orders []*Order) []int64 {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, int64(o.ID))
	}
	return ids
}

func scanOrder(scanner rowScanner) (Order, error) {
	var o Order
	err := scanner.Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.Status,
		&o.ShippingAddress,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func scanPayment(scanner rowScanner) (Payment, error) {
	var p Payment
	var transactionID sql.NullString
	err := scanner.Scan(
		&p.ID,
		&p.OrderID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&transactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.TransactionID = transactionID.String
	return p, err
}
