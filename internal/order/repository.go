package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/cart"
	"github.com/wichananm65/orders-api/internal/product"
)

var (
	ErrNotFound       = apperror.NewNotFound("Order not found")
	ErrNotCancellable = apperror.NewBadRequest("Order cannot be cancelled")
	ErrInvalidStatus  = apperror.NewBadRequest("Invalid status")
)

// CheckoutRequest carries everything the store needs to turn a cart into an
// order. TransactionID must be unique.
type CheckoutRequest struct {
	UserID          int
	ShippingAddress string
	PaymentMethod   string
	TransactionID   string
	Now             time.Time
}

// ListFilter narrows the admin order listing. Zero values match everything.
type ListFilter struct {
	Status    Status
	Limit     int
	WithItems bool
}

type Repository interface {
	// Checkout atomically creates the order, its lines and payment,
	// decrements stock and empties the cart.
	Checkout(ctx context.Context, req CheckoutRequest) (Order, error)
	// Cancel atomically restores stock, cancels the order and refunds its
	// payment.
	Cancel(ctx context.Context, userID, orderID int, now time.Time) (Order, error)
	ListByUser(ctx context.Context, userID int) ([]Order, error)
	GetForUser(ctx context.Context, userID, orderID int) (Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	GetByID(ctx context.Context, id int) (Order, error)
	UpdateStatus(ctx context.Context, id int, status Status, now time.Time) (Order, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	Summary(ctx context.Context) (Summary, error)
}

// InMemoryRepository keeps orders in memory and works against the in-memory
// cart and catalog. One mutex serialises every order mutation.
type InMemoryRepository struct {
	mu            sync.RWMutex
	orders        []Order
	nextOrderID   int
	nextItemID    int
	nextPaymentID int

	products *product.InMemoryRepository
	carts    *cart.InMemoryRepository
}

func NewInMemoryRepository(products *product.InMemoryRepository, carts *cart.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{
		nextOrderID:   1,
		nextItemID:    1,
		nextPaymentID: 1,
		products:      products,
		carts:         carts,
	}
}

func (r *InMemoryRepository) Checkout(ctx context.Context, req CheckoutRequest) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.carts.ListByUser(ctx, req.UserID)
	if err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, ErrCartEmpty
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	found, err := r.products.ListByIDs(ctx, ids)
	if err != nil {
		return Order{}, err
	}
	byID := make(map[int]product.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	plan, err := PlanCheckout(items, byID)
	if err != nil {
		return Order{}, err
	}

	for _, o := range r.orders {
		if o.Payment != nil && o.Payment.TransactionID == req.TransactionID {
			return Order{}, errors.New("duplicate transaction id")
		}
	}

	deltas := make(map[int]int, len(plan.Consumed))
	for id, qty := range plan.Consumed {
		deltas[id] = -qty
	}
	if err := r.products.ApplyStockDeltas(deltas); err != nil {
		if errors.Is(err, product.ErrInsufficientStock) {
			return Order{}, ErrInsufficientStock
		}
		return Order{}, err
	}

	o := Order{
		ID:              r.nextOrderID,
		UserID:          req.UserID,
		TotalAmount:     plan.Total,
		Status:          StatusProcessing,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       req.Now,
		UpdatedAt:       req.Now,
		Items:           make([]Item, 0, len(plan.Lines)),
	}
	r.nextOrderID++

	for _, line := range plan.Lines {
		item := newItem(o.ID, line.ProductID, line.Quantity, line.Price)
		item.ID = r.nextItemID
		r.nextItemID++
		o.Items = append(o.Items, item)
	}

	o.Payment = &Payment{
		ID:            r.nextPaymentID,
		OrderID:       o.ID,
		Amount:        plan.Total,
		Method:        req.PaymentMethod,
		Status:        PaymentCompleted,
		TransactionID: req.TransactionID,
		CreatedAt:     req.Now,
		UpdatedAt:     req.Now,
	}
	r.nextPaymentID++

	if err := r.carts.Clear(ctx, req.UserID); err != nil {
		return Order{}, err
	}

	r.orders = append(r.orders, o)
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) Cancel(ctx context.Context, userID, orderID int, now time.Time) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(orderID)
	if i < 0 || r.orders[i].UserID != userID {
		return Order{}, ErrNotFound
	}
	o := r.orders[i]
	if !o.Status.Cancellable() {
		return Order{}, ErrNotCancellable
	}

	deltas := make(map[int]int, len(o.Items))
	for _, item := range o.Items {
		deltas[item.ProductID] += item.Quantity
	}
	if err := r.products.ApplyStockDeltas(deltas); err != nil {
		return Order{}, err
	}

	o.Status = StatusCancelled
	o.UpdatedAt = now
	if o.Payment != nil {
		payment := *o.Payment
		payment.Status = PaymentRefunded
		payment.UpdatedAt = now
		o.Payment = &payment
	}
	r.orders[i] = o
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, cloneOrder(o))
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (r *InMemoryRepository) GetForUser(ctx context.Context, userID, orderID int) (Order, error) {
	o, err := r.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		o = cloneOrder(o)
		if !filter.WithItems {
			o.Items = nil
		}
		orders = append(orders, o)
	}
	sortNewestFirst(orders)
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	return cloneOrder(r.orders[i]), nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id int, status Status, now time.Time) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	r.orders[i].Status = status
	r.orders[i].UpdatedAt = now
	return cloneOrder(r.orders[i]), nil
}

func (r *InMemoryRepository) ListPayments(ctx context.Context) ([]Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payments := make([]Payment, 0, len(r.orders))
	for _, o := range r.orders {
		if o.Payment != nil {
			payments = append(payments, *o.Payment)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

func (r *InMemoryRepository) Summary(ctx context.Context) (Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := Summary{TotalOrders: len(r.orders)}
	for _, o := range r.orders {
		switch o.Status {
		case StatusPending:
			summary.PendingOrders++
		case StatusProcessing, StatusShipped, StatusDelivered:
			summary.Revenue = summary.Revenue.Add(o.TotalAmount)
		}
	}
	return summary, nil
}

func (r *InMemoryRepository) indexLocked(id int) int {
	for i, o := range r.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func cloneOrder(o Order) Order {
	if o.Items != nil {
		o.Items = append([]Item(nil), o.Items...)
	}
	if o.Payment != nil {
		payment := *o.Payment
		o.Payment = &payment
	}
	return o
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
