package domain

const DefaultCurrency = "USD"

type Price struct {
	Amount       int64  `json:"amount" bson:"amount"`
	CurrencyCode string `json:"currencyCode" bson:"currency_code"`
}

type ProductImage struct {
	URL    string `json:"url" bson:"url"`
	Alt    string `json:"alt" bson:"alt"`
	Width  int    `json:"width,omitempty" bson:"width,omitempty"`
	Height int    `json:"height,omitempty" bson:"height,omitempty"`
}

type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

// Product is a catalog snapshot. Cart items hold a copy, never a reference.
type Product struct {
	ID           string         `json:"id" bson:"id"`
	Name         string         `json:"name" bson:"name"`
	Description  string         `json:"description" bson:"description"`
	Price        Price          `json:"price" bson:"price"`
	Images       []ProductImage `json:"images" bson:"images"`
	CategoryID   string         `json:"categoryId" bson:"category_id"`
	CategoryName string         `json:"categoryName" bson:"category_name"`
	Rating       Rating         `json:"rating" bson:"rating"`
	InStock      bool           `json:"inStock" bson:"in_stock"`
	SKU          string         `json:"sku" bson:"sku"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ProductFilters are combined with AND; zero values are inactive.
type ProductFilters struct {
	SearchQuery string      `json:"searchQuery,omitempty"`
	CategoryID  string      `json:"categoryId,omitempty"`
	PriceRange  *PriceRange `json:"priceRange,omitempty"`
	InStockOnly bool        `json:"inStockOnly,omitempty"`
	Limit       int         `json:"limit,omitempty"`
	Offset      int         `json:"offset,omitempty"`
}

type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"hasMore"`
}
