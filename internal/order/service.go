package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/orders-api/internal/metrics"
)

type Service struct {
	repo             Repository
	now              func() time.Time
	newTransactionID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:             repo,
		now:              time.Now,
		newTransactionID: uuid.NewString,
	}
}

type CheckoutInput struct {
	ShippingAddress string
	PaymentMethod   string
}

// Checkout converts the user's cart into an order with a completed payment.
// Nothing is written when any line fails validation.
func (s *Service) Checkout(ctx context.Context, userID int, in CheckoutInput) (Order, error) {
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	o, err := s.repo.Checkout(ctx, CheckoutRequest{
		UserID:          userID,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		PaymentMethod:   method,
		TransactionID:   s.newTransactionID(),
		Now:             s.now().UTC(),
	})
	metrics.RecordOrderOperation("checkout", err == nil)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// Cancel cancels a pending or processing order owned by userID, restoring
// stock and refunding the payment.
func (s *Service) Cancel(ctx context.Context, userID, orderID int) (Order, error) {
	o, err := s.repo.Cancel(ctx, userID, orderID, s.now().UTC())
	metrics.RecordOrderOperation("cancel", err == nil)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetForUser(ctx context.Context, userID, orderID int) (Order, error) {
	return s.repo.GetForUser(ctx, userID, orderID)
}

// List returns all orders, newest first, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, status string) ([]Order, error) {
	filter := ListFilter{WithItems: true}
	if status = strings.TrimSpace(status); status != "" {
		filter.Status = Status(status)
		if !filter.Status.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	return s.repo.List(ctx, filter)
}

// Recent returns the latest n orders without their line items.
func (s *Service) Recent(ctx context.Context, n int) ([]Order, error) {
	return s.repo.List(ctx, ListFilter{Limit: n})
}

// SetStatus overrides an order's status. Any valid status may be set from
// any other; stock and payment are left untouched.
func (s *Service) SetStatus(ctx context.Context, orderID int, status string) (Order, error) {
	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		metrics.RecordOrderOperation("status_update", false)
		return Order{}, err
	}

	st := Status(strings.TrimSpace(status))
	if !st.Valid() {
		metrics.RecordOrderOperation("status_update", false)
		return Order{}, ErrInvalidStatus
	}

	o, err := s.repo.UpdateStatus(ctx, orderID, st, s.now().UTC())
	metrics.RecordOrderOperation("status_update", err == nil)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *Service) Payments(ctx context.Context) ([]Payment, error) {
	return s.repo.ListPayments(ctx)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.repo.Summary(ctx)
}
