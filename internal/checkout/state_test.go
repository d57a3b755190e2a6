package checkout

import (
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func address(first string) *domain.ShippingAddress {
	return &domain.ShippingAddress{
		FirstName:    first,
		LastName:     "Hopper",
		Email:        "grace@example.com",
		Phone:        "555-0100",
		StreetName:   "Navy Way",
		StreetNumber: "1",
		PostalCode:   "20301",
		City:         "Arlington",
		Country:      "US",
	}
}

func express() *domain.ShippingMethod {
	m, _ := FindShippingMethod("express")
	return &m
}

func cardPayment() *domain.PaymentInfo {
	m, _ := FindPaymentMethod("credit_card")
	return &domain.PaymentInfo{
		Method: m,
		CreditCard: &domain.CreditCardInfo{
			CardNumber:     "4111111111111111",
			ExpiryMonth:    "12",
			ExpiryYear:     "2030",
			CVV:            "123",
			CardholderName: "Grace Hopper",
		},
	}
}

func cartWithSubtotal(amount int64) *domain.Cart {
	now := time.Now()
	p := domain.Product{ID: "p1", Price: domain.Price{Amount: amount, CurrencyCode: "USD"}, InStock: true}
	return cart.AddProduct(cart.NewEmptyCart("cart-1", now), p, 1, "item-1", now)
}

func TestInitialState(t *testing.T) {
	st := InitialState()

	require.Len(t, st.Steps, 3)
	assert.Equal(t, "shipping", st.Steps[0].ID)
	assert.Equal(t, "Shipping Information", st.Steps[0].Title)
	assert.Equal(t, "Payment Information", st.Steps[1].Title)
	assert.Equal(t, "Review & Place Order", st.Steps[2].Title)
	assert.True(t, st.Steps[0].Current)
	assert.False(t, st.Steps[0].Completed)
	assert.Equal(t, int64(0), st.Summary.Total.Amount)
}

func TestReduce_ShippingAddressMirrorsIntoBilling(t *testing.T) {
	st := Reduce(InitialState(), Action{Type: SetBillingAddress, BillingAddress: &domain.BillingAddress{SameAsShipping: true}})
	st = Reduce(st, Action{Type: SetShippingAddress, ShippingAddress: address("Grace")})

	require.NotNil(t, st.Data.BillingAddress)
	assert.True(t, st.Data.BillingAddress.SameAsShipping)
	assert.Equal(t, "Grace", st.Data.BillingAddress.FirstName)
	assert.True(t, st.Steps[0].Completed)
}

func TestReduce_SeparateBillingIsKept(t *testing.T) {
	billing := &domain.BillingAddress{ShippingAddress: *address("Ada")}
	st := Reduce(InitialState(), Action{Type: SetBillingAddress, BillingAddress: billing})
	st = Reduce(st, Action{Type: SetShippingAddress, ShippingAddress: address("Grace")})

	assert.Equal(t, "Ada", st.Data.BillingAddress.FirstName)
}

func TestReduce_SummaryFollowsCartAndShippingMethod(t *testing.T) {
	st := Reduce(InitialState(), Action{Type: SetCart, Cart: cartWithSubtotal(5000)})
	assert.Equal(t, int64(599), st.Summary.Shipping.Amount)

	st = Reduce(st, Action{Type: SetShippingMethod, ShippingMethod: express()})
	assert.Equal(t, int64(5000), st.Summary.Subtotal.Amount)
	assert.Equal(t, int64(1299), st.Summary.Shipping.Amount)
	assert.Equal(t, int64(504), st.Summary.Tax.Amount)
	assert.Equal(t, int64(6803), st.Summary.Total.Amount)
}

func TestReduce_UpdateCheckoutDataPatch(t *testing.T) {
	yes := true
	st := Reduce(InitialState(), Action{Type: SetShippingMethod, ShippingMethod: express()})
	st = Reduce(st, Action{Type: UpdateCheckoutData, Patch: &domain.CheckoutPatch{AgreeToTerms: &yes}})

	assert.True(t, st.Data.AgreeToTerms)
	assert.False(t, st.Data.SubscribeToNewsletter)
	assert.Equal(t, "express", st.Data.ShippingMethod.ID)

	assert.Equal(t, st, Reduce(st, Action{Type: UpdateCheckoutData}))
}

func TestReduce_ResetKeepsCart(t *testing.T) {
	c := cartWithSubtotal(1000)
	st := Reduce(InitialState(), Action{Type: SetCart, Cart: c})
	st = Reduce(st, Action{Type: SetShippingAddress, ShippingAddress: address("Grace")})
	st = Reduce(st, Action{Type: SetCurrentStep, Step: 2})
	st = Reduce(st, Action{Type: SetError, Error: "boom"})

	st = Reduce(st, Action{Type: Reset})

	assert.Same(t, c, st.Cart)
	assert.Equal(t, domain.CheckoutData{}, st.Data)
	assert.Equal(t, 0, st.CurrentStep)
	assert.Empty(t, st.Error)
	assert.True(t, st.Steps[0].Current)
}

func TestMethods(t *testing.T) {
	assert.Len(t, ShippingMethods(), 4)
	m, ok := FindShippingMethod("overnight")
	require.True(t, ok)
	assert.Equal(t, int64(2499), m.Price.Amount)

	_, ok = FindShippingMethod("teleport")
	assert.False(t, ok)

	p, ok := FindPaymentMethod("paypal")
	require.True(t, ok)
	assert.Equal(t, domain.PaymentPayPal, p.Type)
	assert.Len(t, Countries(), 9)
}
