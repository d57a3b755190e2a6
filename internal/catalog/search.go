package catalog

import (
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// FilterProducts applies every active filter with AND semantics and keeps input order.
// Limit and Offset are ignored here; see Paginate.
func FilterProducts(products []domain.Product, filters domain.ProductFilters) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(filters.SearchQuery))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) &&
			!strings.Contains(strings.ToLower(p.CategoryName), query) {
			continue
		}
		if filters.CategoryID != "" && p.CategoryID != filters.CategoryID {
			continue
		}
		if r := filters.PriceRange; r != nil && (p.Price.Amount < r.Min || p.Price.Amount > r.Max) {
			continue
		}
		if filters.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Paginate slices an already filtered list into one page.
func Paginate(products []domain.Product, limit, offset int) domain.ProductList {
	limit, offset = pageBounds(limit, offset)

	total := len(products)
	if offset > total {
		offset = total
	}
	end := offset + min(limit, total-offset)

	page := make([]domain.Product, end-offset)
	copy(page, products[offset:end])
	return domain.ProductList{
		Products: page,
		Total:    total,
		HasMore:  end < total,
	}
}
