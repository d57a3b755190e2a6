package domain

import (
	"fmt"
	"strings"
	"time"
)

type ShippingAddress struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	StreetName   string `json:"streetName"`
	StreetNumber string `json:"streetNumber"`
	PostalCode   string `json:"postalCode"`
	City         string `json:"city"`
	Region       string `json:"region,omitempty"`
	Country      string `json:"country"`
}

type BillingAddress struct {
	ShippingAddress
	SameAsShipping bool `json:"sameAsShipping,omitempty"`
}

type ShippingMethod struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        Price  `json:"price"`
	DeliveryTime string `json:"deliveryTime"`
}

type PaymentMethodType string

const (
	PaymentCreditCard   PaymentMethodType = "credit_card"
	PaymentPayPal       PaymentMethodType = "paypal"
	PaymentBankTransfer PaymentMethodType = "bank_transfer"
)

type PaymentMethod struct {
	ID   string            `json:"id"`
	Type PaymentMethodType `json:"type"`
	Name string            `json:"name"`
	Icon string            `json:"icon,omitempty"`
}

type CreditCardInfo struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

// String never exposes more than the last four digits so a card can't leak through %v.
func (c CreditCardInfo) String() string {
	digits := strings.ReplaceAll(c.CardNumber, " ", "")
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return fmt.Sprintf("card ending %s (%s/%s)", digits, c.ExpiryMonth, c.ExpiryYear)
}

type PaymentInfo struct {
	Method     PaymentMethod   `json:"method"`
	CreditCard *CreditCardInfo `json:"creditCard,omitempty"`
}

// CheckoutData is built step by step and never persisted.
type CheckoutData struct {
	ShippingAddress       *ShippingAddress `json:"shippingAddress,omitempty"`
	BillingAddress        *BillingAddress  `json:"billingAddress,omitempty"`
	ShippingMethod        *ShippingMethod  `json:"shippingMethod,omitempty"`
	PaymentInfo           *PaymentInfo     `json:"paymentInfo,omitempty"`
	AgreeToTerms          bool             `json:"agreeToTerms"`
	SubscribeToNewsletter bool             `json:"subscribeToNewsletter"`
}

// CheckoutPatch is a partial update; nil fields are left untouched.
type CheckoutPatch struct {
	ShippingAddress       *ShippingAddress `json:"shippingAddress,omitempty"`
	BillingAddress        *BillingAddress  `json:"billingAddress,omitempty"`
	ShippingMethod        *ShippingMethod  `json:"shippingMethod,omitempty"`
	PaymentInfo           *PaymentInfo     `json:"paymentInfo,omitempty"`
	AgreeToTerms          *bool            `json:"agreeToTerms,omitempty"`
	SubscribeToNewsletter *bool            `json:"subscribeToNewsletter,omitempty"`
}

type CheckoutStep struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

const (
	StepShipping = iota
	StepPayment
	StepReview
	StepCount
)

type CheckoutSummary struct {
	Subtotal Price `json:"subtotal"`
	Shipping Price `json:"shipping"`
	Tax      Price `json:"tax"`
	Total    Price `json:"total"`
}

type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	TotalPrice  int64  `json:"total_price"`
}

// Order is what gets handed to the order backend. Card data is masked before it gets here.
type Order struct {
	ID                string            `json:"order_id"`
	SessionID         string            `json:"session_id"`
	CartID            string            `json:"cart_id"`
	Items             []OrderItem       `json:"items"`
	Summary           CheckoutSummary   `json:"summary"`
	ShippingAddress   ShippingAddress   `json:"shipping_address"`
	BillingAddress    *BillingAddress   `json:"billing_address,omitempty"`
	ShippingMethodID  string            `json:"shipping_method_id"`
	PaymentMethodType PaymentMethodType `json:"payment_method_type"`
	MaskedCardNumber  string            `json:"masked_card_number,omitempty"`
	Newsletter        bool              `json:"newsletter"`
	CreatedAt         time.Time         `json:"created_at"`
}

// OrderRequest is everything the order backend needs to place an order.
type OrderRequest struct {
	SessionID string
	Cart      *Cart
	Data      CheckoutData
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
