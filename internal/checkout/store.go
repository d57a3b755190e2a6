// Package checkout runs the three step checkout wizard (shipping, payment, review) on top
// of a session's cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/rs/zerolog"
)

// OrderSubmitter places an order for a validated checkout.
type OrderSubmitter interface {
	Submit(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}

type Store struct {
	sessionID string
	orders    OrderSubmitter
	log       zerolog.Logger

	opMu sync.Mutex

	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int

	unsubscribeCart func()
}

// NewStore follows the given cart store so the summary tracks every cart change.
func NewStore(sessionID string, carts *cart.Store, orders OrderSubmitter, log zerolog.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		orders:    orders,
		log:       log,
		state:     InitialState(),
		subs:      make(map[int]func(State)),
	}

	if carts != nil {
		s.unsubscribeCart = carts.Subscribe(func(cs cart.State) {
			if cs.Cart != nil {
				s.dispatch(Action{Type: SetCart, Cart: cs.Cart})
			}
		})
		if c := carts.State().Cart; c != nil {
			s.dispatch(Action{Type: SetCart, Cart: c})
		}
	}
	return s
}

// Close stops following the cart store.
func (s *Store) Close() {
	if s.unsubscribeCart != nil {
		s.unsubscribeCart()
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Cart = st.Cart.Clone()
	st.Steps = append([]domain.CheckoutStep(nil), st.Steps...)
	return st
}

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) dispatch(action Action) {
	s.update(func(st State) State { return Reduce(st, action) })
}

func (s *Store) update(fn func(State) State) {
	s.mu.Lock()
	s.state = fn(s.state)
	st := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(st)
	}
}

func (s *Store) SetShippingAddress(address domain.ShippingAddress) {
	s.dispatch(Action{Type: SetShippingAddress, ShippingAddress: &address})
}

func (s *Store) SetBillingAddress(address domain.BillingAddress) {
	s.dispatch(Action{Type: SetBillingAddress, BillingAddress: &address})
}

func (s *Store) SetShippingMethod(method domain.ShippingMethod) {
	s.dispatch(Action{Type: SetShippingMethod, ShippingMethod: &method})
}

func (s *Store) SetPaymentInfo(info domain.PaymentInfo) {
	s.dispatch(Action{Type: SetPaymentInfo, PaymentInfo: &info})
}

func (s *Store) UpdateCheckoutData(patch domain.CheckoutPatch) {
	s.dispatch(Action{Type: UpdateCheckoutData, Patch: &patch})
}

// NextStep returns a *validation.Error when the current step is incomplete.
func (s *Store) NextStep() error {
	var err error
	s.update(func(st State) State {
		st, err = NextStep(st)
		return st
	})
	return err
}

func (s *Store) PreviousStep() {
	s.update(PreviousStep)
}

func (s *Store) Resume() {
	s.update(Resume)
}

func (s *Store) GoToStep(step int) error {
	var err error
	s.update(func(st State) State {
		st, err = GoToStep(st, step)
		return st
	})
	return err
}

// Reset starts a fresh checkout and keeps the cart.
func (s *Store) Reset() {
	s.dispatch(Action{Type: Reset})
}

// SubmitOrder re-validates the whole checkout and hands it to the order backend. On
// success the caller clears the cart and resets the checkout.
func (s *Store) SubmitOrder(ctx context.Context) (domain.OrderResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.dispatch(Action{Type: SetSubmitting, Flag: true})
	s.dispatch(Action{Type: SetError})
	defer s.dispatch(Action{Type: SetSubmitting, Flag: false})

	st := s.State()

	if r := validation.ValidateCheckoutStep(domain.StepReview, st.Data); !r.Valid {
		return s.failOrder(fmt.Errorf("%w: %w", domain.ErrIncompleteCheckout, r.Err()))
	}
	if cart.IsEmpty(st.Cart) {
		return s.failOrder(domain.ErrEmptyCart)
	}

	result, err := s.orders.Submit(ctx, domain.OrderRequest{
		SessionID: s.sessionID,
		Cart:      st.Cart,
		Data:      st.Data,
	})
	if err != nil {
		s.log.Error().Err(err).Str("session_id", s.sessionID).Msg("order submission failed")
		return s.failOrder(fmt.Errorf("failed to submit order: %w", err))
	}
	if !result.Success {
		s.dispatch(Action{Type: SetError, Error: result.Error})
		return result, fmt.Errorf("order rejected: %s", result.Error)
	}

	s.log.Info().Str("session_id", s.sessionID).Str("order_id", result.OrderID).Msg("order placed")
	return result, nil
}

func (s *Store) failOrder(err error) (domain.OrderResult, error) {
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrIncompleteCheckout):
		msg = domain.ErrIncompleteCheckout.Error()
	case errors.Is(err, domain.ErrEmptyCart):
		msg = domain.ErrEmptyCart.Error()
	}
	s.dispatch(Action{Type: SetError, Error: msg})
	return domain.OrderResult{Success: false, Error: msg}, err
}
