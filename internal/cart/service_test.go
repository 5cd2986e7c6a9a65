package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/orders-api/internal/product"
)

func newTestService() (*Service, *product.InMemoryRepository) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Widget", Price: decimal.RequireFromString("20.00"), StockQuantity: 10, IsActive: true},
		{ID: 2, Name: "Gadget", Price: decimal.RequireFromString("5.50"), StockQuantity: 2, IsActive: true},
		{ID: 3, Name: "Retired", Price: decimal.RequireFromString("1.00"), StockQuantity: 9, IsActive: false},
	})
	return NewService(NewInMemoryRepository(), products), products
}

func TestAdd_MergesSameProduct(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Add(ctx, 1, 1, 2)
	require.NoError(t, err)
	second, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.True(t, second.Subtotal.Equal(decimal.NewFromInt(100)))

	view, err := svc.View(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Count)
}

func TestAdd_Rejections(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, 99, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Add(ctx, 1, 3, 1)
	assert.ErrorIs(t, err, ErrProductNotFound, "inactive products cannot be added")

	_, err = svc.Add(ctx, 1, 2, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.Add(ctx, 1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdate_OwnershipAndStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	line, err := svc.Add(ctx, 1, 2, 1)
	require.NoError(t, err)

	_, err = svc.Update(ctx, 2, line.ID, 1)
	assert.ErrorIs(t, err, ErrItemNotFound, "other users' items are invisible")

	_, err = svc.Update(ctx, 1, line.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	updated, err := svc.Update(ctx, 1, line.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)
	assert.True(t, updated.Subtotal.Equal(decimal.NewFromInt(11)))
}

func TestView_TotalsAndInactiveProducts(t *testing.T) {
	svc, products := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, 2, 2)
	require.NoError(t, err)

	view, err := svc.View(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(71)), "got %s", view.Total)

	inactive := false
	_, err = products.Update(ctx, 2, product.UpdateInput{IsActive: &inactive}, time.Now())
	require.NoError(t, err)

	view, err = svc.View(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)
	assert.Nil(t, view.Items[1].Product)
	assert.True(t, view.Items[1].Subtotal.IsZero())
	assert.True(t, view.Total.Equal(decimal.NewFromInt(60)))
}

func TestRemoveAndClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	line, err := svc.Add(ctx, 1, 1, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, 2, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 2, 1, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Remove(ctx, 2, line.ID), ErrItemNotFound)
	require.NoError(t, svc.Remove(ctx, 1, line.ID))
	assert.ErrorIs(t, svc.Remove(ctx, 1, line.ID), ErrItemNotFound)

	require.NoError(t, svc.Clear(ctx, 1))
	require.NoError(t, svc.Clear(ctx, 1))

	view, err := svc.View(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Count)

	other, err := svc.View(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, other.Count)
}
