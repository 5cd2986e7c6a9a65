package admin

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/orders-api/internal/order"
	"github.com/wichananm65/orders-api/internal/user"
)

const recentOrdersLimit = 10

type Users interface {
	List(ctx context.Context) ([]user.User, error)
	CountCustomers(ctx context.Context) (int, error)
	ToggleActive(ctx context.Context, id int) (user.User, error)
}

type Catalog interface {
	CountActive(ctx context.Context) (int, error)
}

type Orders interface {
	List(ctx context.Context, status string) ([]order.Order, error)
	Recent(ctx context.Context, n int) ([]order.Order, error)
	SetStatus(ctx context.Context, orderID int, status string) (order.Order, error)
	Payments(ctx context.Context) ([]order.Payment, error)
	Summary(ctx context.Context) (order.Summary, error)
}

type Statistics struct {
	TotalUsers    int             `json:"total_users"`
	TotalProducts int             `json:"total_products"`
	TotalOrders   int             `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	PendingOrders int             `json:"pending_orders"`
}

type Dashboard struct {
	Statistics   Statistics    `json:"statistics"`
	RecentOrders []order.Order `json:"recent_orders"`
}

type Service struct {
	users    Users
	products Catalog
	orders   Orders
}

func NewService(users Users, products Catalog, orders Orders) *Service {
	return &Service{users: users, products: products, orders: orders}
}

// Dashboard gathers the store-wide figures. Revenue counts processing,
// shipped and delivered orders only.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.Statistics.TotalUsers, err = s.users.CountCustomers(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.Statistics.TotalProducts, err = s.products.CountActive(ctx); err != nil {
		return Dashboard{}, err
	}
	summary, err := s.orders.Summary(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	if d.RecentOrders, err = s.orders.Recent(ctx, recentOrdersLimit); err != nil {
		return Dashboard{}, err
	}

	d.Statistics.TotalOrders = summary.TotalOrders
	d.Statistics.PendingOrders = summary.PendingOrders
	d.Statistics.TotalRevenue = summary.Revenue
	return d, nil
}

func (s *Service) Orders(ctx context.Context, status string) ([]order.Order, error) {
	return s.orders.List(ctx, status)
}

func (s *Service) SetOrderStatus(ctx context.Context, orderID int, status string) (order.Order, error) {
	return s.orders.SetStatus(ctx, orderID, status)
}

func (s *Service) Users(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

// ToggleUser flips a customer's active flag. Admin accounts are refused.
func (s *Service) ToggleUser(ctx context.Context, id int) (user.User, error) {
	return s.users.ToggleActive(ctx, id)
}

func (s *Service) Payments(ctx context.Context) ([]order.Payment, error) {
	return s.orders.Payments(ctx)
}
