package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Category      string
	ImageURL      string
}

// UpdateInput holds optional changes; nil fields are left alone.
type UpdateInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	Category      *string
	ImageURL      *string
	IsActive      *bool
}

func (in UpdateInput) apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}

// Get returns an active product. Inactive products are reported as missing.
func (s *Service) Get(ctx context.Context, id int) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// GetAny returns a product regardless of its active flag.
func (s *Service) GetAny(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if in.Price.IsNegative() {
		return Product{}, ErrInvalidPrice
	}
	if in.StockQuantity < 0 {
		return Product{}, ErrInvalidStock
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price.Round(2),
		StockQuantity: in.StockQuantity,
		Category:      strings.TrimSpace(in.Category),
		ImageURL:      in.ImageURL,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (Product, error) {
	if in.Price != nil {
		if in.Price.IsNegative() {
			return Product{}, ErrInvalidPrice
		}
		price := in.Price.Round(2)
		in.Price = &price
	}
	if in.StockQuantity != nil && *in.StockQuantity < 0 {
		return Product{}, ErrInvalidStock
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		in.Category = &category
	}

	return s.repo.Update(ctx, id, in, s.now().UTC())
}

// SoftDelete marks the product inactive. The row stays for order history.
func (s *Service) SoftDelete(ctx context.Context, id int) (Product, error) {
	inactive := false
	return s.Update(ctx, id, UpdateInput{IsActive: &inactive})
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountActive(ctx)
}

// SeedIfEmpty loads the given catalog when no product exists yet and returns
// how many products were inserted.
func (s *Service) SeedIfEmpty(ctx context.Context, products []Product) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	for i, p := range products {
		if _, err := s.Create(ctx, CreateInput{
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price,
			StockQuantity: p.StockQuantity,
			Category:      p.Category,
			ImageURL:      p.ImageURL,
		}); err != nil {
			return i, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}
