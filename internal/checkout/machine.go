package checkout

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/validation"
)

// NextStep advances only when the current step validates. On the last step a valid
// state is returned unchanged.
func NextStep(s State) (State, error) {
	if err := validation.ValidateCheckoutStep(s.CurrentStep, s.Data).Err(); err != nil {
		return Reduce(s, Action{Type: SetError, Error: err.Error()}), err
	}
	if s.CurrentStep < domain.StepCount-1 {
		s = Reduce(s, Action{Type: SetCurrentStep, Step: s.CurrentStep + 1})
		s = Reduce(s, Action{Type: SetError})
	}
	return s, nil
}

// PreviousStep is a no-op on the first step.
func PreviousStep(s State) State {
	if s.CurrentStep > 0 {
		s = Reduce(s, Action{Type: SetCurrentStep, Step: s.CurrentStep - 1})
		s = Reduce(s, Action{Type: SetError})
	}
	return s
}

// GoToStep jumps to any step in range. Which targets are offered is up to the caller.
func GoToStep(s State, step int) (State, error) {
	if step < 0 || step >= domain.StepCount {
		return s, domain.ErrInvalidStep
	}
	s = Reduce(s, Action{Type: SetCurrentStep, Step: step})
	return Reduce(s, Action{Type: SetError}), nil
}

// Resume moves to the first step whose data does not validate, so a returning shopper lands
// where they left off.
func Resume(s State) State {
	s = Reduce(s, Action{Type: SetCurrentStep, Step: validation.NextIncompleteStep(s.Data)})
	return Reduce(s, Action{Type: SetError})
}
