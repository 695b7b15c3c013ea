package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pourcost/backend/internal/domain"
)

func feedProduct(id, name, category string, price, volume float64) domain.Product {
	return domain.Product{
		ID:                id,
		Name:              name,
		Brand:             "Distillery",
		Category:          category,
		Price:             domain.Float(price),
		RegularPrice:      domain.Float(price),
		VolumeML:          domain.Float(volume),
		AlcoholPercentage: domain.Float(40),
		IsActive:          true,
	}
}

func TestCatalogStore_UpsertProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts new product with price history", func(t *testing.T) {
		store := NewCatalogStore(newTestDB(t))

		changed, err := store.UpsertProduct(ctx, feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750))
		require.NoError(t, err)
		assert.True(t, changed)

		products, err := store.ListActiveProducts(ctx, domain.ProductFilter{})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Buffalo Trace Bourbon", products[0].Name)
		assert.InDelta(t, 35.99, *products[0].Price, 1e-9)
		assert.False(t, products[0].LastUpdated.IsZero())

		history, err := store.PriceHistory(ctx, "100", time.Time{})
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.InDelta(t, 35.99, history[0].Price, 1e-9)
	})

	t.Run("unchanged product reports no change", func(t *testing.T) {
		store := NewCatalogStore(newTestDB(t))
		product := feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750)

		_, err := store.UpsertProduct(ctx, product)
		require.NoError(t, err)

		changed, err := store.UpsertProduct(ctx, product)
		require.NoError(t, err)
		assert.False(t, changed)

		history, err := store.PriceHistory(ctx, "100", time.Time{})
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("price change appends history", func(t *testing.T) {
		store := NewCatalogStore(newTestDB(t))

		_, err := store.UpsertProduct(ctx, feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750))
		require.NoError(t, err)

		sale := feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 31.99, 750)
		sale.RegularPrice = domain.Float(35.99)
		changed, err := store.UpsertProduct(ctx, sale)
		require.NoError(t, err)
		assert.True(t, changed)

		history, err := store.PriceHistory(ctx, "100", time.Time{})
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.InDelta(t, 31.99, history[0].Price, 1e-9)
		assert.True(t, history[0].OnSale())

		products, err := store.ListActiveProducts(ctx, domain.ProductFilter{})
		require.NoError(t, err)
		assert.InDelta(t, 35.99, *products[0].RegularPrice, 1e-9)
	})

	t.Run("empty incoming fields keep stored values", func(t *testing.T) {
		store := NewCatalogStore(newTestDB(t))

		_, err := store.UpsertProduct(ctx, feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750))
		require.NoError(t, err)

		partial := domain.Product{ID: "100", Name: "Buffalo Trace Bourbon", IsActive: true}
		changed, err := store.UpsertProduct(ctx, partial)
		require.NoError(t, err)
		assert.False(t, changed)

		products, err := store.ListActiveProducts(ctx, domain.ProductFilter{})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Whisky", products[0].Category)
		assert.Equal(t, "Distillery", products[0].Brand)
	})

	t.Run("inactive feed rows disappear from listings", func(t *testing.T) {
		store := NewCatalogStore(newTestDB(t))

		_, err := store.UpsertProduct(ctx, feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750))
		require.NoError(t, err)

		gone := feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750)
		gone.IsActive = false
		changed, err := store.UpsertProduct(ctx, gone)
		require.NoError(t, err)
		assert.True(t, changed)

		products, err := store.ListActiveProducts(ctx, domain.ProductFilter{})
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("blank id is rejected", func(t *testing.T) {
		store := NewCatalogStore(newTestDB(t))

		_, err := store.UpsertProduct(ctx, domain.Product{Name: "No ID"})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestCatalogStore_ListActiveProducts_Filter(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(newTestDB(t))

	for _, p := range []domain.Product{
		feedProduct("3", "Bombay Sapphire", "Gin", 32.95, 750),
		feedProduct("1", "Buffalo Trace", "Whisky", 35.99, 750),
		feedProduct("2", "Bacardi Superior", "Rum", 28.45, 750),
	} {
		_, err := store.UpsertProduct(ctx, p)
		require.NoError(t, err)
	}

	all, err := store.ListActiveProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	spirits, err := store.ListActiveProducts(ctx, domain.ProductFilter{Categories: []string{"Gin", "Rum"}})
	require.NoError(t, err)
	require.Len(t, spirits, 2)
	assert.Equal(t, "2", spirits[0].ID)
	assert.Equal(t, "3", spirits[1].ID)

	byName, err := store.ListActiveProducts(ctx, domain.ProductFilter{NameContains: " BAC "})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "2", byName[0].ID)

	byNameAndCategory, err := store.ListActiveProducts(ctx, domain.ProductFilter{NameContains: "b", CategoryContains: "whis"})
	require.NoError(t, err)
	require.Len(t, byNameAndCategory, 1)
	assert.Equal(t, "1", byNameAndCategory[0].ID)

	limited, err := store.ListActiveProducts(ctx, domain.ProductFilter{NameContains: "b", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCatalogStore_ProductAvailability(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(newTestDB(t))

	product := feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750)
	product.Inventory = []domain.StoreAvailability{
		{StoreID: domain.GeneralStoreID, InStock: true, Quantity: 40},
		{StoreID: "S1", StoreName: "Welland Ave", City: "St. Catharines", InStock: true, Quantity: 12},
		{StoreID: "S2", StoreName: "Queen St", City: "Niagara Falls", InStock: false},
	}
	_, err := store.UpsertProduct(ctx, product)
	require.NoError(t, err)

	t.Run("city filter keeps general line", func(t *testing.T) {
		lines, err := store.ProductAvailability(ctx, "100", "st. catharines")
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, domain.GeneralStoreName, lines[0].StoreName)
		assert.Equal(t, "Welland Ave", lines[1].StoreName)
		assert.Equal(t, 12, lines[1].Quantity)
	})

	t.Run("empty city returns every store", func(t *testing.T) {
		lines, err := store.ProductAvailability(ctx, "100", "")
		require.NoError(t, err)
		assert.Len(t, lines, 3)
	})

	t.Run("inactive stores are hidden", func(t *testing.T) {
		require.NoError(t, store.UpsertStore(ctx, domain.Store{StoreID: "S1", Name: "Welland Ave", City: "St. Catharines", IsActive: false}))

		lines, err := store.ProductAvailability(ctx, "100", "St. Catharines")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, domain.GeneralStoreID, lines[0].StoreID)
	})

	t.Run("stock updates overwrite the line", func(t *testing.T) {
		restock := feedProduct("100", "Buffalo Trace Bourbon", "Whisky", 35.99, 750)
		restock.Inventory = []domain.StoreAvailability{
			{StoreID: "S2", StoreName: "Queen St", City: "Niagara Falls", InStock: true, Quantity: 3, LowStock: true},
		}
		_, err := store.UpsertProduct(ctx, restock)
		require.NoError(t, err)

		lines, err := store.ProductAvailability(ctx, "100", "Niagara")
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.True(t, lines[1].InStock)
		assert.True(t, lines[1].LowStock)
		assert.Equal(t, 3, lines[1].Quantity)
	})

	t.Run("unknown product has no lines", func(t *testing.T) {
		lines, err := store.ProductAvailability(ctx, "missing", "")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}
