// Package catalog resolves products for the cart and serves the product listing.
package catalog

import (
	"context"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	// DefaultLimit is the page size when a listing request doesn't set one.
	DefaultLimit = 20

	// MaxLimit caps the page size of a listing.
	MaxLimit = 100
)

// Catalog is the product source the cart store depends on. GetProductByID returns
// nil, nil for an unknown id.
type Catalog interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProducts(ctx context.Context, filters domain.ProductFilters) (domain.ProductList, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

// NormalizeProductID accepts both "product-1" and the bare "1" that product pages pass around.
func NormalizeProductID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "product-") {
		return id
	}
	return "product-" + id
}

// pageBounds applies the default and the cap to limit and clamps offset at zero.
func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
