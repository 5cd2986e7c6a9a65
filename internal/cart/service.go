package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/orders-api/internal/product"
)

// Catalog is the product lookup the cart needs.
type Catalog interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]product.Product, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// Add puts quantity units of a product in the user's cart, merging with an
// existing row. Stock is checked against the requested quantity only.
func (s *Service) Add(ctx context.Context, userID, productID, quantity int) (Line, error) {
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}

	p, err := s.activeProduct(ctx, productID)
	if err != nil {
		return Line{}, err
	}
	if p.StockQuantity < quantity {
		return Line{}, ErrInsufficientStock
	}

	item, err := s.repo.Add(ctx, userID, productID, quantity, s.now().UTC())
	if err != nil {
		return Line{}, err
	}
	return newLine(item, &p), nil
}

func (s *Service) Update(ctx context.Context, userID, itemID, quantity int) (Line, error) {
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}

	item, err := s.repo.GetForUser(ctx, userID, itemID)
	if err != nil {
		return Line{}, err
	}

	p, err := s.catalog.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return Line{}, ErrProductNotFound
		}
		return Line{}, err
	}
	if p.StockQuantity < quantity {
		return Line{}, ErrInsufficientStock
	}

	item, err = s.repo.SetQuantity(ctx, userID, itemID, quantity, s.now().UTC())
	if err != nil {
		return Line{}, err
	}
	return newLine(item, &p), nil
}

func (s *Service) Remove(ctx context.Context, userID, itemID int) error {
	return s.repo.Remove(ctx, userID, itemID)
}

func (s *Service) Clear(ctx context.Context, userID int) error {
	return s.repo.Clear(ctx, userID)
}

// View returns the cart with per-line subtotals and the total.
func (s *Service) View(ctx context.Context, userID int) (View, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return View{}, err
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return View{}, err
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := View{Items: make([]Line, 0, len(items)), Total: decimal.Zero, Count: len(items)}
	for _, item := range items {
		var line Line
		if p, ok := byID[item.ProductID]; ok {
			line = newLine(item, &p)
		} else {
			line = newLine(item, nil)
		}
		view.Items = append(view.Items, line)
		view.Total = view.Total.Add(line.Subtotal)
	}
	return view, nil
}

func (s *Service) activeProduct(ctx context.Context, id int) (product.Product, error) {
	p, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.Product{}, ErrProductNotFound
		}
		return product.Product{}, err
	}
	if !p.IsActive {
		return product.Product{}, ErrProductNotFound
	}
	return p, nil
}
