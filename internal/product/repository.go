package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/orders-api/internal/apperror"
)

var (
	ErrNotFound          = apperror.NewNotFound("Product not found")
	ErrInvalidPrice      = apperror.NewBadRequest("Price must be non-negative")
	ErrInvalidStock      = apperror.NewBadRequest("Stock quantity must be non-negative")
	ErrInsufficientStock = apperror.NewBadRequest("Insufficient stock")
)

type Repository interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	GetByID(ctx context.Context, id int) (Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	// Update writes only the fields set in the patch; every other column,
	// stock included, keeps its current stored value.
	Update(ctx context.Context, id int, patch UpdateInput, now time.Time) (Product, error)
	Categories(ctx context.Context) ([]string, error)
	CountActive(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	products []Product
	nextID   int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	repo := &InMemoryRepository{
		products: make([]Product, 0, len(seed)),
		nextID:   1,
	}

	maxID := 0
	for _, p := range seed {
		repo.products = append(repo.products, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	products := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	products := make([]Product, 0, len(ids))
	for _, p := range r.products {
		if _, ok := wanted[p.ID]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	r.nextID++
	r.products = append(r.products, p)
	return p, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int, patch UpdateInput, now time.Time) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.products {
		if r.products[i].ID == id {
			patch.apply(&r.products[i])
			r.products[i].UpdatedAt = now
			return r.products[i], nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Categories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	categories := make([]string, 0)
	for _, p := range r.products {
		if !p.IsActive || p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *InMemoryRepository) CountActive(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.products {
		if p.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), nil
}

// ApplyStockDeltas adds each delta to the product's stock. Every delta is
// validated first; if any product is missing or would drop below zero no
// stock changes.
func (r *InMemoryRepository) ApplyStockDeltas(deltas map[int]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := make(map[int]int, len(r.products))
	for i, p := range r.products {
		index[p.ID] = i
	}

	for id, delta := range deltas {
		i, ok := index[id]
		if !ok {
			return ErrNotFound
		}
		if r.products[i].StockQuantity+delta < 0 {
			return ErrInsufficientStock
		}
	}

	for id, delta := range deltas {
		r.products[index[id]].StockQuantity += delta
	}
	return nil
}
