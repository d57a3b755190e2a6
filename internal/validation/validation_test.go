package validation

import (
	"testing"
	"unicode/utf8"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() *domain.ShippingAddress {
	return &domain.ShippingAddress{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Phone:        "+44 20 7946 0000",
		StreetName:   "St James's Square",
		StreetNumber: "12",
		PostalCode:   "SW1Y 4JH",
		City:         "London",
		Country:      "GB",
	}
}

func validCard() *domain.CreditCardInfo {
	return &domain.CreditCardInfo{
		CardNumber:     "4111 1111 1111 1111",
		ExpiryMonth:    "09",
		ExpiryYear:     "2030",
		CVV:            "123",
		CardholderName: "Ada Lovelace",
	}
}

func completeData() domain.CheckoutData {
	return domain.CheckoutData{
		ShippingAddress: validAddress(),
		BillingAddress:  &domain.BillingAddress{SameAsShipping: true},
		ShippingMethod:  &domain.ShippingMethod{ID: "express"},
		PaymentInfo: &domain.PaymentInfo{
			Method:     domain.PaymentMethod{ID: "credit_card", Type: domain.PaymentCreditCard},
			CreditCard: validCard(),
		},
		AgreeToTerms: true,
	}
}

func TestValidateShippingAddress_Empty(t *testing.T) {
	r := ValidateShippingAddress(&domain.ShippingAddress{})

	assert.False(t, r.Valid)
	require.Len(t, r.Errors, 9)
	for _, field := range []string{"firstName", "lastName", "email", "phone", "streetName", "streetNumber", "postalCode", "city", "country"} {
		assert.Contains(t, r.Errors, field)
	}
}

func TestValidateShippingAddress_Nil(t *testing.T) {
	r := ValidateShippingAddress(nil)
	assert.False(t, r.Valid)
	assert.Equal(t, "Shipping address is required", r.Errors[GeneralKey])
}

func TestValidateShippingAddress_WhitespaceIsBlank(t *testing.T) {
	a := validAddress()
	a.City = "   "
	r := ValidateShippingAddress(a)
	assert.False(t, r.Valid)
	assert.Equal(t, map[string]string{"city": "City is required"}, r.Errors)
}

func TestValidateShippingAddress_Email(t *testing.T) {
	for _, email := range []string{"plain", "a@b", "a b@c.d", "@c.d", "a@@c.d"} {
		a := validAddress()
		a.Email = email
		r := ValidateShippingAddress(a)
		assert.Equal(t, "Invalid email format", r.Errors["email"], email)
	}

	r := ValidateShippingAddress(validAddress())
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestValidateBillingAddress(t *testing.T) {
	assert.False(t, ValidateBillingAddress(nil).Valid)
	assert.True(t, ValidateBillingAddress(&domain.BillingAddress{SameAsShipping: true}).Valid)
	assert.Len(t, ValidateBillingAddress(&domain.BillingAddress{}).Errors, 9)
	assert.True(t, ValidateBillingAddress(&domain.BillingAddress{ShippingAddress: *validAddress()}).Valid)
}

func TestValidateCreditCard(t *testing.T) {
	assert.True(t, ValidateCreditCard(validCard()).Valid)

	card := &domain.CreditCardInfo{CardNumber: "4111", ExpiryMonth: "13", ExpiryYear: "30", CVV: "12345"}
	r := ValidateCreditCard(card)
	assert.False(t, r.Valid)
	assert.Equal(t, "Invalid card number format", r.Errors["cardNumber"])
	assert.Equal(t, "Invalid month format", r.Errors["expiryMonth"])
	assert.Equal(t, "Invalid year format", r.Errors["expiryYear"])
	assert.Equal(t, "Invalid CVV format", r.Errors["cvv"])
	assert.Equal(t, "Cardholder name is required", r.Errors["cardholderName"])

	r = ValidateCreditCard(nil)
	assert.Equal(t, "Credit card information is required", r.Errors[GeneralKey])
}

func TestValidateCheckoutStep_Payment(t *testing.T) {
	data := completeData()
	assert.True(t, ValidateCheckoutStep(domain.StepPayment, data).Valid)

	noMethod := completeData()
	noMethod.ShippingMethod = nil
	assert.Contains(t, ValidateCheckoutStep(domain.StepPayment, noMethod).Errors, "shippingMethod")

	noPayment := completeData()
	noPayment.PaymentInfo = nil
	assert.Contains(t, ValidateCheckoutStep(domain.StepPayment, noPayment).Errors, "paymentMethod")

	badCard := completeData()
	badCard.PaymentInfo.CreditCard.CVV = "x"
	assert.Contains(t, ValidateCheckoutStep(domain.StepPayment, badCard).Errors, "cvv")

	paypal := completeData()
	paypal.PaymentInfo = &domain.PaymentInfo{Method: domain.PaymentMethod{ID: "paypal", Type: domain.PaymentPayPal}}
	assert.True(t, ValidateCheckoutStep(domain.StepPayment, paypal).Valid)

	noBilling := completeData()
	noBilling.BillingAddress = nil
	assert.Contains(t, ValidateCheckoutStep(domain.StepPayment, noBilling).Errors, GeneralKey)
}

func TestValidateCheckoutStep_ReviewCascades(t *testing.T) {
	data := completeData()
	assert.True(t, ValidateCheckoutStep(domain.StepReview, data).Valid)

	data.AgreeToTerms = false
	assert.Contains(t, ValidateCheckoutStep(domain.StepReview, data).Errors, "terms")

	missingShipping := completeData()
	missingShipping.ShippingAddress = nil
	assert.False(t, ValidateCheckoutStep(domain.StepReview, missingShipping).Valid)

	assert.Equal(t, "Invalid step", ValidateCheckoutStep(7, data).Errors[GeneralKey])
}

func TestNextIncompleteStep(t *testing.T) {
	assert.Equal(t, domain.StepShipping, NextIncompleteStep(domain.CheckoutData{}))

	data := domain.CheckoutData{ShippingAddress: validAddress()}
	assert.Equal(t, domain.StepPayment, NextIncompleteStep(data))

	data = completeData()
	data.AgreeToTerms = false
	assert.Equal(t, domain.StepReview, NextIncompleteStep(data))
	assert.False(t, IsStepCompleted(domain.StepReview, data))

	assert.Equal(t, domain.StepReview, NextIncompleteStep(completeData()))
}

func TestFormatAndMaskCardNumber(t *testing.T) {
	assert.Equal(t, "4111 1111 1111 1111", FormatCardNumber("4111111111111111"))
	assert.Equal(t, "4111 1111 1111 1111", FormatCardNumber("4111 1111 11111111"))
	assert.Equal(t, "**** **** **** 1111", MaskCardNumber("4111111111111111"))
	assert.Equal(t, "**** **** **** 1111", MaskCardNumber("4111 1111 1111 1111"))
	assert.Equal(t, "123", MaskCardNumber("123"))
}

func TestMaskCardNumber_MultiByteInput(t *testing.T) {
	masked := MaskCardNumber("41111111111111éé")
	assert.True(t, utf8.ValidString(masked))
	assert.Equal(t, "**** **** **** 11éé", masked)

	assert.Equal(t, "é12", MaskCardNumber("é12"))
	assert.Equal(t, "**** ٤٣٢١", MaskCardNumber("1234٤٣٢١"))
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, ValidateShippingAddress(validAddress()).Err())

	err := ValidateShippingAddress(nil).Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Shipping address is required", verr.Fields[GeneralKey])
}
