package cart

import "github.com/fjod/go_cart/storefront/internal/domain"

// State is what subscribers render. Cart is nil until the first load.
type State struct {
	Cart    *domain.Cart `json:"cart"`
	Loading bool         `json:"isLoading"`
	Error   string       `json:"error,omitempty"`
}

type ActionType string

const (
	LoadCartStart         ActionType = "LOAD_CART_START"
	LoadCartSuccess       ActionType = "LOAD_CART_SUCCESS"
	LoadCartError         ActionType = "LOAD_CART_ERROR"
	AddToCartStart        ActionType = "ADD_TO_CART_START"
	AddToCartSuccess      ActionType = "ADD_TO_CART_SUCCESS"
	AddToCartError        ActionType = "ADD_TO_CART_ERROR"
	UpdateCartStart       ActionType = "UPDATE_CART_START"
	UpdateCartSuccess     ActionType = "UPDATE_CART_SUCCESS"
	UpdateCartError       ActionType = "UPDATE_CART_ERROR"
	RemoveFromCartStart   ActionType = "REMOVE_FROM_CART_START"
	RemoveFromCartSuccess ActionType = "REMOVE_FROM_CART_SUCCESS"
	RemoveFromCartError   ActionType = "REMOVE_FROM_CART_ERROR"
	ClearCartSuccess      ActionType = "CLEAR_CART_SUCCESS"
)

// Action carries the next cart on *_SUCCESS and a message on *_ERROR.
type Action struct {
	Type  ActionType
	Cart  *domain.Cart
	Error string
}

// Reduce is the only place cart state changes. It never mutates its input.
func Reduce(state State, action Action) State {
	switch action.Type {
	case LoadCartStart, AddToCartStart, UpdateCartStart, RemoveFromCartStart:
		state.Loading = true
		state.Error = ""
	case LoadCartSuccess, AddToCartSuccess, UpdateCartSuccess, RemoveFromCartSuccess, ClearCartSuccess:
		state.Cart = action.Cart
		state.Loading = false
		state.Error = ""
	case LoadCartError, AddToCartError, UpdateCartError, RemoveFromCartError:
		state.Loading = false
		state.Error = action.Error
	}
	return state
}
