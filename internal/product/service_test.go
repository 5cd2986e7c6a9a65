package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) (*Service, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo)
	n, err := svc.SeedIfEmpty(context.Background(), SampleProducts)
	require.NoError(t, err)
	require.Equal(t, len(SampleProducts), n)
	return svc, repo
}

func TestList_FiltersAndSearch(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	electronics, err := svc.List(ctx, Filter{Category: "Electronics"})
	require.NoError(t, err)
	assert.Len(t, electronics, 2)

	found, err := svc.List(ctx, Filter{Search: "MOUSE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Wireless Mouse", found[0].Name)
}

func TestSoftDelete_HidesFromPublicListing(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()

	_, err := svc.SoftDelete(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	stored, err := repo.GetByID(ctx, 1)
	require.NoError(t, err, "soft delete must keep the row")
	assert.False(t, stored.IsActive)

	count, err := svc.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestUpdate_KeepsStockChangedSinceRead(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()

	before, err := svc.GetAny(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyStockDeltas(map[int]int{1: -3}))

	price := decimal.RequireFromString("11.00")
	updated, err := svc.Update(ctx, 1, UpdateInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, before.StockQuantity-3, updated.StockQuantity)
	assert.True(t, updated.Price.Equal(price))

	require.NoError(t, repo.ApplyStockDeltas(map[int]int{1: -1}))
	deleted, err := svc.SoftDelete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before.StockQuantity-4, deleted.StockQuantity)
	assert.True(t, deleted.Price.Equal(price))
	assert.Equal(t, before.Name, deleted.Name)
}

func TestCreateAndUpdate_Validation(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.Create(ctx, CreateInput{Name: "Bad", Price: decimal.NewFromInt(1), StockQuantity: -1})
	assert.ErrorIs(t, err, ErrInvalidStock)

	p, err := svc.Create(ctx, CreateInput{Name: "Pen", Price: decimal.RequireFromString("1.50"), StockQuantity: 3})
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	stock := -5
	_, err = svc.Update(ctx, p.ID, UpdateInput{StockQuantity: &stock})
	assert.ErrorIs(t, err, ErrInvalidStock)

	name := "Blue Pen"
	updated, err := svc.Update(ctx, p.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Blue Pen", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 3, updated.StockQuantity)

	_, err = svc.Update(ctx, 99, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories_DistinctActive(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Accessories", "Electronics", "Office"}, categories)

	_, err = svc.SoftDelete(ctx, 6)
	require.NoError(t, err)
	categories, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Accessories", "Electronics"}, categories)
}

func TestSeedIfEmpty_SkipsPopulatedCatalog(t *testing.T) {
	svc, _ := seededService(t)
	n, err := svc.SeedIfEmpty(context.Background(), SampleProducts)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestApplyStockDeltas_AllOrNothing(t *testing.T) {
	repo := NewInMemoryRepository([]Product{
		{ID: 1, Name: "A", StockQuantity: 5, IsActive: true},
		{ID: 2, Name: "B", StockQuantity: 1, IsActive: true},
	})
	ctx := context.Background()

	err := repo.ApplyStockDeltas(map[int]int{1: -2, 2: -3})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	a, _ := repo.GetByID(ctx, 1)
	b, _ := repo.GetByID(ctx, 2)
	assert.Equal(t, 5, a.StockQuantity)
	assert.Equal(t, 1, b.StockQuantity)

	require.NoError(t, repo.ApplyStockDeltas(map[int]int{1: -2, 2: -1}))
	a, _ = repo.GetByID(ctx, 1)
	b, _ = repo.GetByID(ctx, 2)
	assert.Equal(t, 3, a.StockQuantity)
	assert.Equal(t, 0, b.StockQuantity)
}
