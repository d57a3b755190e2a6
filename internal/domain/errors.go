package domain

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInvalidQuantity    = errors.New("quantity cannot be negative")
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrNoCartFound        = errors.New("no cart found")
	ErrIncompleteCheckout = errors.New("please complete all required information")
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrValidationFailed   = errors.New("please complete all required fields")
	ErrInvalidStep        = errors.New("invalid checkout step")
	ErrPersistence        = errors.New("cart storage failure")
)
