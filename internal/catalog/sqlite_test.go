package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteCatalog {
	c, err := NewSQLiteCatalog(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.RunMigrations())
	return c
}

func TestSQLiteCatalog_MigrationsAreIdempotent(t *testing.T) {
	c := setupTestDB(t)
	assert.NoError(t, c.RunMigrations())
}

func TestSQLiteCatalog_SeedMatchesDemoCatalog(t *testing.T) {
	c := setupTestDB(t)

	list, err := c.GetProducts(context.Background(), domain.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, DemoProducts(), list.Products)
	assert.Equal(t, 4, list.Total)
	assert.False(t, list.HasMore)

	cats, err := c.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DemoCategories(), cats)
}

func TestSQLiteCatalog_GetProductByID(t *testing.T) {
	c := setupTestDB(t)
	ctx := context.Background()

	p, err := c.GetProductByID(ctx, "4")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "JACKET-LEATHER-001", p.SKU)
	assert.False(t, p.InStock)

	p, err = c.GetProductByID(ctx, "product-404")
	require.NoError(t, err)
	assert.Nil(t, p)
}

// The SQL filters must agree with FilterProducts on the same data.
func TestSQLiteCatalog_FiltersMatchInMemory(t *testing.T) {
	c := setupTestDB(t)
	ctx := context.Background()

	cases := []domain.ProductFilters{
		{SearchQuery: "PREMIUM"},
		{SearchQuery: "100%"},
		{CategoryID: "hoodies"},
		{PriceRange: &domain.PriceRange{Min: 2999, Max: 7999}},
		{InStockOnly: true, SearchQuery: "classic"},
	}
	for _, f := range cases {
		list, err := c.GetProducts(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, ids(FilterProducts(DemoProducts(), f)), ids(list.Products), "%+v", f)
	}
}

func TestSQLiteCatalog_Pagination(t *testing.T) {
	c := setupTestDB(t)

	list, err := c.GetProducts(context.Background(), domain.ProductFilters{Limit: 3, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"product-2", "product-3", "product-4"}, ids(list.Products))
	assert.Equal(t, 4, list.Total)
	assert.False(t, list.HasMore)
}

func TestSQLiteCatalog_HugeLimit(t *testing.T) {
	c := setupTestDB(t)

	list, err := c.GetProducts(context.Background(), domain.ProductFilters{Limit: math.MaxInt, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"product-2", "product-3", "product-4"}, ids(list.Products))
	assert.False(t, list.HasMore)

	list, err = c.GetProducts(context.Background(), domain.ProductFilters{Offset: 50})
	require.NoError(t, err)
	assert.NotNil(t, list.Products)
	assert.Empty(t, list.Products)
}

func TestSQLiteCatalog_CancelledContext(t *testing.T) {
	c := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetProducts(ctx, domain.ProductFilters{})
	assert.Error(t, err)
}
