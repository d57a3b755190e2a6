package checkout

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/validation"
)

// State of the wizard. Steps and Summary are derived on every Reduce and never set directly.
type State struct {
	Cart        *domain.Cart           `json:"cart"`
	Data        domain.CheckoutData    `json:"checkoutData"`
	CurrentStep int                    `json:"currentStep"`
	Steps       []domain.CheckoutStep  `json:"steps"`
	Summary     domain.CheckoutSummary `json:"summary"`
	Loading     bool                   `json:"isLoading"`
	Submitting  bool                   `json:"isSubmitting"`
	Error       string                 `json:"error,omitempty"`
}

type ActionType string

const (
	SetShippingAddress ActionType = "SET_SHIPPING_ADDRESS"
	SetBillingAddress  ActionType = "SET_BILLING_ADDRESS"
	SetShippingMethod  ActionType = "SET_SHIPPING_METHOD"
	SetPaymentInfo     ActionType = "SET_PAYMENT_INFO"
	UpdateCheckoutData ActionType = "UPDATE_CHECKOUT_DATA"
	SetCurrentStep     ActionType = "SET_CURRENT_STEP"
	SetLoading         ActionType = "SET_LOADING"
	SetSubmitting      ActionType = "SET_SUBMITTING"
	SetError           ActionType = "SET_ERROR"
	SetCart            ActionType = "SET_CART"
	Reset              ActionType = "RESET"
)

type Action struct {
	Type            ActionType
	ShippingAddress *domain.ShippingAddress
	BillingAddress  *domain.BillingAddress
	ShippingMethod  *domain.ShippingMethod
	PaymentInfo     *domain.PaymentInfo
	Patch           *domain.CheckoutPatch
	Cart            *domain.Cart
	Step            int
	Flag            bool
	Error           string
}

var stepDefs = [domain.StepCount]struct{ id, title string }{
	{"shipping", "Shipping Information"},
	{"payment", "Payment Information"},
	{"review", "Review & Place Order"},
}

func InitialState() State {
	return derive(State{})
}

// Reduce is the only place checkout state changes.
func Reduce(state State, action Action) State {
	data := state.Data

	switch action.Type {
	case SetShippingAddress:
		data.ShippingAddress = action.ShippingAddress
		if data.BillingAddress != nil && data.BillingAddress.SameAsShipping && action.ShippingAddress != nil {
			data.BillingAddress = &domain.BillingAddress{ShippingAddress: *action.ShippingAddress, SameAsShipping: true}
		}
	case SetBillingAddress:
		data.BillingAddress = action.BillingAddress
		if b := action.BillingAddress; b != nil && b.SameAsShipping && data.ShippingAddress != nil {
			data.BillingAddress = &domain.BillingAddress{ShippingAddress: *data.ShippingAddress, SameAsShipping: true}
		}
	case SetShippingMethod:
		data.ShippingMethod = action.ShippingMethod
	case SetPaymentInfo:
		data.PaymentInfo = action.PaymentInfo
	case UpdateCheckoutData:
		data = applyPatch(data, action.Patch)
	case SetCurrentStep:
		state.CurrentStep = action.Step
	case SetLoading:
		state.Loading = action.Flag
	case SetSubmitting:
		state.Submitting = action.Flag
	case SetError:
		state.Error = action.Error
	case SetCart:
		state.Cart = action.Cart
	case Reset:
		state = State{Cart: state.Cart}
		data = domain.CheckoutData{}
	default:
		return state
	}

	state.Data = data
	return derive(state)
}

func applyPatch(data domain.CheckoutData, patch *domain.CheckoutPatch) domain.CheckoutData {
	if patch == nil {
		return data
	}
	if patch.ShippingAddress != nil {
		data.ShippingAddress = patch.ShippingAddress
	}
	if patch.BillingAddress != nil {
		data.BillingAddress = patch.BillingAddress
	}
	if patch.ShippingMethod != nil {
		data.ShippingMethod = patch.ShippingMethod
	}
	if patch.PaymentInfo != nil {
		data.PaymentInfo = patch.PaymentInfo
	}
	if patch.AgreeToTerms != nil {
		data.AgreeToTerms = *patch.AgreeToTerms
	}
	if patch.SubscribeToNewsletter != nil {
		data.SubscribeToNewsletter = *patch.SubscribeToNewsletter
	}
	return data
}

func derive(state State) State {
	steps := make([]domain.CheckoutStep, domain.StepCount)
	for i, def := range stepDefs {
		steps[i] = domain.CheckoutStep{
			ID:        def.id,
			Title:     def.title,
			Completed: validation.IsStepCompleted(i, state.Data),
			Current:   i == state.CurrentStep,
		}
	}
	state.Steps = steps

	methodID := ""
	if state.Data.ShippingMethod != nil {
		methodID = state.Data.ShippingMethod.ID
	}
	state.Summary = pricing.CheckoutSummary(state.Cart, methodID)
	return state
}
