// Package validation holds every field and step check of the checkout wizard. Stores and
// transports call into it; nothing else re-implements these rules.
package validation

import (
	"regexp"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// GeneralKey carries errors that don't belong to a single form field.
const GeneralKey = "general"

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardNumberPattern  = regexp.MustCompile(`^\d{16}$`)
	expiryMonthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	expiryYearPattern  = regexp.MustCompile(`^\d{4}$`)
	cvvPattern         = regexp.MustCompile(`^\d{3,4}$`)
	whitespace         = regexp.MustCompile(`\s`)
)

// Result maps form field names to messages so they bind directly to inputs.
type Result struct {
	Valid  bool              `json:"isValid"`
	Errors map[string]string `json:"errors"`
}

func valid() Result {
	return Result{Valid: true, Errors: map[string]string{}}
}

func invalid(key, message string) Result {
	return Result{Valid: false, Errors: map[string]string{key: message}}
}

func fromErrors(errs map[string]string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func ValidateShippingAddress(address *domain.ShippingAddress) Result {
	if address == nil {
		return invalid(GeneralKey, "Shipping address is required")
	}

	errs := make(map[string]string)
	if blank(address.FirstName) {
		errs["firstName"] = "First name is required"
	}
	if blank(address.LastName) {
		errs["lastName"] = "Last name is required"
	}
	if blank(address.Email) {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(address.Email) {
		errs["email"] = "Invalid email format"
	}
	if blank(address.Phone) {
		errs["phone"] = "Phone number is required"
	}
	if blank(address.StreetName) {
		errs["streetName"] = "Street name is required"
	}
	if blank(address.StreetNumber) {
		errs["streetNumber"] = "Street number is required"
	}
	if blank(address.PostalCode) {
		errs["postalCode"] = "Postal code is required"
	}
	if blank(address.City) {
		errs["city"] = "City is required"
	}
	if blank(address.Country) {
		errs["country"] = "Country is required"
	}

	return fromErrors(errs)
}

// ValidateBillingAddress short-circuits to valid when the address mirrors shipping.
func ValidateBillingAddress(address *domain.BillingAddress) Result {
	if address == nil {
		return invalid(GeneralKey, "Billing address is required")
	}
	if address.SameAsShipping {
		return valid()
	}
	return ValidateShippingAddress(&address.ShippingAddress)
}

func ValidateCreditCard(card *domain.CreditCardInfo) Result {
	if card == nil {
		return invalid(GeneralKey, "Credit card information is required")
	}

	errs := make(map[string]string)
	if blank(card.CardNumber) {
		errs["cardNumber"] = "Card number is required"
	} else if !cardNumberPattern.MatchString(stripWhitespace(card.CardNumber)) {
		errs["cardNumber"] = "Invalid card number format"
	}
	if blank(card.ExpiryMonth) {
		errs["expiryMonth"] = "Expiry month is required"
	} else if !expiryMonthPattern.MatchString(card.ExpiryMonth) {
		errs["expiryMonth"] = "Invalid month format"
	}
	if blank(card.ExpiryYear) {
		errs["expiryYear"] = "Expiry year is required"
	} else if !expiryYearPattern.MatchString(card.ExpiryYear) {
		errs["expiryYear"] = "Invalid year format"
	}
	if blank(card.CVV) {
		errs["cvv"] = "CVV is required"
	} else if !cvvPattern.MatchString(card.CVV) {
		errs["cvv"] = "Invalid CVV format"
	}
	if blank(card.CardholderName) {
		errs["cardholderName"] = "Cardholder name is required"
	}

	return fromErrors(errs)
}

func validatePayment(data domain.CheckoutData) Result {
	if r := ValidateBillingAddress(data.BillingAddress); !r.Valid {
		return r
	}
	if data.ShippingMethod == nil {
		return invalid("shippingMethod", "Please select a shipping method")
	}
	if data.PaymentInfo == nil || data.PaymentInfo.Method.Type == "" {
		return invalid("paymentMethod", "Please select a payment method")
	}
	if data.PaymentInfo.Method.Type == domain.PaymentCreditCard {
		if r := ValidateCreditCard(data.PaymentInfo.CreditCard); !r.Valid {
			return r
		}
	}
	return valid()
}

// ValidateCheckoutStep checks one wizard step. The review step also re-runs the shipping
// and payment checks, so a valid review means the whole checkout is complete.
func ValidateCheckoutStep(step int, data domain.CheckoutData) Result {
	switch step {
	case domain.StepShipping:
		return ValidateShippingAddress(data.ShippingAddress)
	case domain.StepPayment:
		return validatePayment(data)
	case domain.StepReview:
		if r := ValidateShippingAddress(data.ShippingAddress); !r.Valid {
			return r
		}
		if r := validatePayment(data); !r.Valid {
			return r
		}
		if !data.AgreeToTerms {
			return invalid("terms", "You must agree to the terms and conditions")
		}
		return valid()
	default:
		return invalid(GeneralKey, "Invalid step")
	}
}

func IsStepCompleted(step int, data domain.CheckoutData) bool {
	return ValidateCheckoutStep(step, data).Valid
}

// NextIncompleteStep returns the first step that doesn't validate, or the review step
// when everything does.
func NextIncompleteStep(data domain.CheckoutData) int {
	for step := 0; step < domain.StepCount; step++ {
		if !IsStepCompleted(step, data) {
			return step
		}
	}
	return domain.StepReview
}

func stripWhitespace(s string) string {
	return whitespace.ReplaceAllString(s, "")
}

// FormatCardNumber groups a card number in blocks of four.
func FormatCardNumber(cardNumber string) string {
	cleaned := []rune(stripWhitespace(cardNumber))
	var b strings.Builder
	for i, r := range cleaned {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskCardNumber keeps only the last four digits, e.g. "**** **** **** 1111".
func MaskCardNumber(cardNumber string) string {
	cleaned := []rune(stripWhitespace(cardNumber))
	if len(cleaned) < 4 {
		return string(cleaned)
	}
	masked := strings.Repeat("*", len(cleaned)-4) + string(cleaned[len(cleaned)-4:])
	return FormatCardNumber(masked)
}

// Error carries the field messages of a failed check. It matches domain.ErrValidationFailed.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	return domain.ErrValidationFailed.Error()
}

func (e *Error) Unwrap() error {
	return domain.ErrValidationFailed
}

// Err returns nil for a valid result and an *Error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Fields: r.Errors}
}
