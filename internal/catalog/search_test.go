package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterProducts(t *testing.T) {
	products := DemoProducts()

	tests := []struct {
		name    string
		filters domain.ProductFilters
		want    []string
	}{
		{"no filters", domain.ProductFilters{}, []string{"product-1", "product-2", "product-3", "product-4"}},
		{"query matches name case-insensitively", domain.ProductFilters{SearchQuery: "  HOODIE "}, []string{"product-3"}},
		{"query matches description", domain.ProductFilters{SearchQuery: "denim"}, []string{"product-1"}},
		{"query matches category name", domain.ProductFilters{SearchQuery: "t-shirts"}, []string{"product-2"}},
		{"category id", domain.ProductFilters{CategoryID: "jackets"}, []string{"product-4"}},
		{"price range is inclusive", domain.ProductFilters{PriceRange: &domain.PriceRange{Min: 2999, Max: 5999}}, []string{"product-2", "product-3"}},
		{"in stock only", domain.ProductFilters{InStockOnly: true}, []string{"product-1", "product-2", "product-3"}},
		{"filters combine with AND", domain.ProductFilters{SearchQuery: "premium", InStockOnly: true}, []string{"product-2"}},
		{"no match", domain.ProductFilters{SearchQuery: "socks"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterProducts(products, tt.filters)))
		})
	}
}

func TestPaginate(t *testing.T) {
	products := DemoProducts()

	page := Paginate(products, 2, 0)
	assert.Equal(t, []string{"product-1", "product-2"}, ids(page.Products))
	assert.Equal(t, 4, page.Total)
	assert.True(t, page.HasMore)

	page = Paginate(products, 2, 2)
	assert.Equal(t, []string{"product-3", "product-4"}, ids(page.Products))
	assert.False(t, page.HasMore)

	page = Paginate(products, 0, 10)
	assert.Empty(t, page.Products)
	assert.Equal(t, 4, page.Total)
	assert.False(t, page.HasMore)
}

func TestPaginate_HugeLimit(t *testing.T) {
	products := DemoProducts()

	page := Paginate(products, math.MaxInt, 1)
	assert.Equal(t, []string{"product-2", "product-3", "product-4"}, ids(page.Products))
	assert.False(t, page.HasMore)

	page = Paginate(products, math.MaxInt, math.MaxInt)
	assert.Empty(t, page.Products)
	assert.Equal(t, 4, page.Total)

	list, err := NewDemoCatalog().GetProducts(context.Background(), domain.ProductFilters{Limit: math.MaxInt, Offset: 1})
	assert.NoError(t, err)
	assert.Len(t, list.Products, 3)
}

func TestPaginate_LimitIsCapped(t *testing.T) {
	products := make([]domain.Product, MaxLimit+10)
	for i := range products {
		products[i] = domain.Product{ID: "p"}
	}

	page := Paginate(products, MaxLimit*2, 0)
	assert.Len(t, page.Products, MaxLimit)
	assert.True(t, page.HasMore)
}

func TestNormalizeProductID(t *testing.T) {
	assert.Equal(t, "product-1", NormalizeProductID("1"))
	assert.Equal(t, "product-1", NormalizeProductID("product-1"))
	assert.Equal(t, "", NormalizeProductID(" "))
}
