// Package cart owns the shopping cart of one session. Every change goes through Reduce
// and is published to subscribers afterwards.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Store struct {
	catalog catalog.Catalog
	storage storage.Persistence
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string

	// opMu serializes operations so each one sees the result of the previous.
	opMu sync.Mutex

	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

func NewStore(c catalog.Catalog, p storage.Persistence, log zerolog.Logger) *Store {
	return &Store{
		catalog: c,
		storage: p,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
		subs:    make(map[int]func(State)),
	}
}

// State returns a copy callers may keep.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Cart = st.Cart.Clone()
	return st
}

// Subscribe registers fn for every state change. fn runs outside the store lock and must
// not modify the cart it receives.
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
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	st := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

func (s *Store) current() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Cart
}

func (s *Store) fail(action ActionType, err error) error {
	s.dispatch(Action{Type: action, Error: err.Error()})
	return err
}

// LoadCart restores the persisted cart or starts an empty one. Storage problems are
// logged and end in an empty cart.
func (s *Store) LoadCart(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.dispatch(Action{Type: LoadCartStart})

	saved, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("cart load failed, starting empty")
	}
	if saved == nil {
		saved = NewEmptyCart(s.newID(), s.now())
	}

	s.dispatch(Action{Type: LoadCartSuccess, Cart: saved})
}

// AddToCart adds quantity units of a product; zero means one. A second add of the same
// product grows the existing line.
func (s *Store) AddToCart(ctx context.Context, productID string, quantity int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.dispatch(Action{Type: AddToCartStart})

	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return s.fail(AddToCartError, domain.ErrInvalidQuantity)
	}

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		return s.fail(AddToCartError, fmt.Errorf("failed to get product: %w", err))
	}
	if product == nil {
		return s.fail(AddToCartError, domain.ErrProductNotFound)
	}
	if !product.InStock {
		return s.fail(AddToCartError, domain.ErrOutOfStock)
	}

	cart := s.current()
	if cart == nil {
		cart = NewEmptyCart(s.newID(), s.now())
	}
	updated := AddProduct(cart, *product, quantity, s.newID(), s.now())

	s.persist(ctx, updated)
	s.dispatch(Action{Type: AddToCartSuccess, Cart: updated})
	return nil
}

// UpdateCartItem sets a line's quantity; zero removes the line.
func (s *Store) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.dispatch(Action{Type: UpdateCartStart})

	cart := s.current()
	if cart == nil {
		return s.fail(UpdateCartError, domain.ErrNoCartFound)
	}

	updated, err := SetItemQuantity(cart, itemID, quantity, s.now())
	if err != nil {
		return s.fail(UpdateCartError, err)
	}

	s.persist(ctx, updated)
	s.dispatch(Action{Type: UpdateCartSuccess, Cart: updated})
	return nil
}

// RemoveFromCart is idempotent: removing an unknown item is not an error.
func (s *Store) RemoveFromCart(ctx context.Context, itemID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.dispatch(Action{Type: RemoveFromCartStart})

	cart := s.current()
	if cart == nil {
		return s.fail(RemoveFromCartError, domain.ErrNoCartFound)
	}

	updated := RemoveItem(cart, itemID, s.now())

	s.persist(ctx, updated)
	s.dispatch(Action{Type: RemoveFromCartSuccess, Cart: updated})
	return nil
}

// ClearCart always ends with an empty cart, whatever storage says.
func (s *Store) ClearCart(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("cart storage clear failed")
	}
	s.dispatch(Action{Type: ClearCartSuccess, Cart: NewEmptyCart(s.newID(), s.now())})
}

// persist writes the snapshot. A failed write keeps the in-memory change; the next
// mutation writes the whole cart again.
func (s *Store) persist(ctx context.Context, cart *domain.Cart) {
	err := s.storage.Save(ctx, cart)
	if err == nil {
		return
	}
	if !errors.Is(err, domain.ErrPersistence) {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	s.log.Warn().Err(err).Str("cart_id", cart.ID).Msg("cart save failed")
}
