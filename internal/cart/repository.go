package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/orders-api/internal/apperror"
)

var (
	ErrItemNotFound      = apperror.NewNotFound("Cart item not found")
	ErrProductNotFound   = apperror.NewNotFound("Product not found")
	ErrInsufficientStock = apperror.NewBadRequest("Insufficient stock")
	ErrInvalidQuantity   = apperror.NewBadRequest("Quantity must be at least 1")
)

type Repository interface {
	ListByUser(ctx context.Context, userID int) ([]Item, error)
	GetForUser(ctx context.Context, userID, itemID int) (Item, error)
	// Add inserts a row or increments the quantity of the existing
	// (user, product) row.
	Add(ctx context.Context, userID, productID, quantity int, now time.Time) (Item, error)
	SetQuantity(ctx context.Context, userID, itemID, quantity int, now time.Time) (Item, error)
	Remove(ctx context.Context, userID, itemID int) error
	Clear(ctx context.Context, userID int) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  map[int]Item
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[int]Item), nextID: 1}
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(userID), nil
}

func (r *InMemoryRepository) listLocked(userID int) []Item {
	items := make([]Item, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (r *InMemoryRepository) GetForUser(ctx context.Context, userID, itemID int) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (r *InMemoryRepository) Add(ctx context.Context, userID, productID, quantity int, now time.Time) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			item.UpdatedAt = now
			r.items[id] = item
			return item, nil
		}
	}

	item := Item{
		ID:        r.nextID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.items[item.ID] = item
	return item, nil
}

func (r *InMemoryRepository) SetQuantity(ctx context.Context, userID, itemID, quantity int, now time.Time) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return Item{}, ErrItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = now
	r.items[itemID] = item
	return item, nil
}

func (r *InMemoryRepository) Remove(ctx context.Context, userID, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return ErrItemNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *InMemoryRepository) Clear(ctx context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked(userID)
	return nil
}

func (r *InMemoryRepository) clearLocked(userID int) {
	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
		}
	}
}
