package checkout

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

func usd(amount int64) domain.Price {
	return domain.Price{Amount: amount, CurrencyCode: domain.DefaultCurrency}
}

// ShippingMethods lists the selectable methods. Prices come from the pricing table so the
// summary and the list can't disagree.
func ShippingMethods() []domain.ShippingMethod {
	return []domain.ShippingMethod{
		{
			ID:           "standard",
			Name:         "Standard Shipping",
			Description:  "Delivered in 5-7 business days",
			Price:        usd(pricing.ShippingCost("standard")),
			DeliveryTime: "5-7 business days",
		},
		{
			ID:           "express",
			Name:         "Express Shipping",
			Description:  "Delivered in 2-3 business days",
			Price:        usd(pricing.ShippingCost("express")),
			DeliveryTime: "2-3 business days",
		},
		{
			ID:           "overnight",
			Name:         "Overnight Shipping",
			Description:  "Delivered next business day",
			Price:        usd(pricing.ShippingCost("overnight")),
			DeliveryTime: "Next business day",
		},
		{
			ID:           "free",
			Name:         "Free Shipping",
			Description:  "Delivered in 7-10 business days (orders over $50)",
			Price:        usd(pricing.ShippingCost("free")),
			DeliveryTime: "7-10 business days",
		},
	}
}

func PaymentMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: "credit_card", Type: domain.PaymentCreditCard, Name: "Credit Card", Icon: "💳"},
		{ID: "paypal", Type: domain.PaymentPayPal, Name: "PayPal", Icon: "🅿️"},
		{ID: "bank_transfer", Type: domain.PaymentBankTransfer, Name: "Bank Transfer", Icon: "🏦"},
	}
}

func Countries() []domain.Country {
	return []domain.Country{
		{Code: "US", Name: "United States"},
		{Code: "CA", Name: "Canada"},
		{Code: "GB", Name: "United Kingdom"},
		{Code: "DE", Name: "Germany"},
		{Code: "FR", Name: "France"},
		{Code: "IT", Name: "Italy"},
		{Code: "ES", Name: "Spain"},
		{Code: "AU", Name: "Australia"},
		{Code: "JP", Name: "Japan"},
	}
}

func FindShippingMethod(id string) (domain.ShippingMethod, bool) {
	for _, m := range ShippingMethods() {
		if m.ID == id {
			return m, true
		}
	}
	return domain.ShippingMethod{}, false
}

func FindPaymentMethod(id string) (domain.PaymentMethod, bool) {
	for _, m := range PaymentMethods() {
		if m.ID == id {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}
