package catalog

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryCatalog serves a fixed product list, in the order given.
type MemoryCatalog struct {
	products   []domain.Product
	byID       map[string]int
	categories []domain.Category
}

func NewMemoryCatalog(products []domain.Product, categories []domain.Category) *MemoryCatalog {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &MemoryCatalog{
		products:   products,
		byID:       byID,
		categories: categories,
	}
}

// NewDemoCatalog returns the storefront's sample assortment.
func NewDemoCatalog() *MemoryCatalog {
	return NewMemoryCatalog(DemoProducts(), DemoCategories())
}

func (m *MemoryCatalog) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	i, ok := m.byID[NormalizeProductID(id)]
	if !ok {
		return nil, nil
	}
	p := m.products[i]
	return &p, nil
}

func (m *MemoryCatalog) GetProducts(_ context.Context, filters domain.ProductFilters) (domain.ProductList, error) {
	return Paginate(FilterProducts(m.products, filters), filters.Limit, filters.Offset), nil
}

func (m *MemoryCatalog) GetCategories(context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func DemoCategories() []domain.Category {
	return []domain.Category{
		{ID: "pants", Name: "Pants", Slug: "pants"},
		{ID: "t-shirts", Name: "T-Shirts", Slug: "t-shirts"},
		{ID: "hoodies", Name: "Hoodies", Slug: "hoodies"},
		{ID: "jackets", Name: "Jackets", Slug: "jackets"},
	}
}

func DemoProducts() []domain.Product {
	usd := func(amount int64) domain.Price {
		return domain.Price{Amount: amount, CurrencyCode: domain.DefaultCurrency}
	}
	image := func(url, alt string) []domain.ProductImage {
		return []domain.ProductImage{{URL: url, Alt: alt, Width: 400, Height: 400}}
	}

	return []domain.Product{
		{
			ID:           "product-1",
			Name:         "Classic Blue Jeans",
			Description:  "Comfortable and durable classic blue jeans made from premium denim.",
			Price:        usd(7999),
			Images:       image("https://images.unsplash.com/photo-1542272604-787c3835535d?w=400&h=400&fit=crop", "Classic Blue Jeans"),
			CategoryID:   "pants",
			CategoryName: "Pants",
			Rating:       domain.Rating{Average: 4.5, Count: 128},
			InStock:      true,
			SKU:          "JEANS-CLASSIC-BLUE-001",
		},
		{
			ID:           "product-2",
			Name:         "White Cotton T-Shirt",
			Description:  "Premium 100% cotton t-shirt in classic white.",
			Price:        usd(2999),
			Images:       image("https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400&h=400&fit=crop", "White Cotton T-Shirt"),
			CategoryID:   "t-shirts",
			CategoryName: "T-Shirts",
			Rating:       domain.Rating{Average: 4.8, Count: 95},
			InStock:      true,
			SKU:          "TSHIRT-WHITE-COTTON-001",
		},
		{
			ID:           "product-3",
			Name:         "Black Hoodie",
			Description:  "Cozy black hoodie with drawstring hood and front pocket.",
			Price:        usd(5999),
			Images:       image("https://images.unsplash.com/photo-1556821840-3a63f95609a7?w=400&h=400&fit=crop", "Black Hoodie"),
			CategoryID:   "hoodies",
			CategoryName: "Hoodies",
			Rating:       domain.Rating{Average: 4.6, Count: 73},
			InStock:      true,
			SKU:          "HOODIE-BLACK-001",
		},
		{
			ID:           "product-4",
			Name:         "Leather Jacket",
			Description:  "Premium leather jacket with zipper closure and multiple pockets.",
			Price:        usd(19999),
			Images:       image("https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400&h=400&fit=crop", "Leather Jacket"),
			CategoryID:   "jackets",
			CategoryName: "Jackets",
			Rating:       domain.Rating{Average: 4.9, Count: 42},
			InStock:      false,
			SKU:          "JACKET-LEATHER-001",
		},
	}
}
