// Package pricing derives cart and checkout totals. All amounts are integer minor units;
// only FormatPrice divides by 100.
package pricing

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxRatePercent is a flat rate, not a tax engine.
const TaxRatePercent = 8

const DefaultShippingCost int64 = 599

var shippingCosts = map[string]int64{
	"standard":  599,
	"express":   1299,
	"overnight": 2499,
	"free":      0,
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Tax applies TaxRatePercent rounding half up, the same way Math.round does.
func Tax(amount int64) int64 {
	n := amount * TaxRatePercent
	if n >= 0 {
		return (n + 50) / 100
	}
	return -((-n + 49) / 100)
}

func ItemTotal(product domain.Product, quantity int) domain.Price {
	return domain.Price{
		Amount:       product.Price.Amount * int64(quantity),
		CurrencyCode: product.Price.CurrencyCode,
	}
}

func CartSummary(items []domain.CartItem) domain.CartSummary {
	var subtotal int64
	count := 0
	for _, item := range items {
		subtotal += item.TotalPrice.Amount
		count += item.Quantity
	}

	currency := domain.DefaultCurrency
	if len(items) > 0 {
		currency = items[0].Product.Price.CurrencyCode
	}

	tax := Tax(subtotal)
	return domain.CartSummary{
		Subtotal:  domain.Price{Amount: subtotal, CurrencyCode: currency},
		Tax:       domain.Price{Amount: tax, CurrencyCode: currency},
		Total:     domain.Price{Amount: subtotal + tax, CurrencyCode: currency},
		ItemCount: count,
	}
}

// ShippingCost looks up the flat table; unset or unknown methods cost the standard rate.
func ShippingCost(methodID string) int64 {
	if cost, ok := shippingCosts[methodID]; ok {
		return cost
	}
	return DefaultShippingCost
}

func CheckoutSummary(cart *domain.Cart, shippingMethodID string) domain.CheckoutSummary {
	if cart == nil {
		zero := domain.Price{CurrencyCode: domain.DefaultCurrency}
		return domain.CheckoutSummary{Subtotal: zero, Shipping: zero, Tax: zero, Total: zero}
	}

	subtotal := cart.Summary.Subtotal
	if subtotal.CurrencyCode == "" {
		subtotal.CurrencyCode = domain.DefaultCurrency
	}
	currency := subtotal.CurrencyCode

	shipping := ShippingCost(shippingMethodID)
	tax := Tax(subtotal.Amount + shipping)

	return domain.CheckoutSummary{
		Subtotal: subtotal,
		Shipping: domain.Price{Amount: shipping, CurrencyCode: currency},
		Tax:      domain.Price{Amount: tax, CurrencyCode: currency},
		Total:    domain.Price{Amount: subtotal.Amount + shipping + tax, CurrencyCode: currency},
	}
}

// FormatPrice renders a price for display, e.g. "$79.99" or "CHF 12.50".
func FormatPrice(p domain.Price) string {
	value := decimal.New(p.Amount, -2).StringFixed(2)
	if symbol, ok := currencySymbols[p.CurrencyCode]; ok {
		if p.Amount < 0 {
			return "-" + symbol + value[1:]
		}
		return symbol + value
	}
	return p.CurrencyCode + " " + value
}
