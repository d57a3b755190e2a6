// Package session keeps one cart store and one checkout store per shopper session. Sessions
// are created on first use and dropped after sitting idle.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultIdleTTL is how long an untouched session stays in memory.
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are looked for.
	CleanupInterval = time.Minute
)

type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Store

	load     sync.Once
	lastSeen time.Time
}

// PlaceOrder submits the checkout. A placed order empties the cart and restarts the wizard.
func (s *Session) PlaceOrder(ctx context.Context) (domain.OrderResult, error) {
	result, err := s.Checkout.SubmitOrder(ctx)
	if err != nil {
		return result, err
	}
	s.Cart.ClearCart(ctx)
	s.Checkout.Reset()
	return result, nil
}

type Registry struct {
	catalog  catalog.Catalog
	snapshot storage.SnapshotStore
	expiry   time.Duration
	orders   checkout.OrderSubmitter
	log      zerolog.Logger
	idleTTL  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

// NewRegistry starts the idle cleanup loop when idleTTL is positive. Carts are persisted in
// snapshot under the session id and expire after expiry.
func NewRegistry(
	c catalog.Catalog,
	snapshot storage.SnapshotStore,
	expiry time.Duration,
	orders checkout.OrderSubmitter,
	idleTTL time.Duration,
	log zerolog.Logger,
) *Registry {
	r := &Registry{
		catalog:     c,
		snapshot:    snapshot,
		expiry:      expiry,
		orders:      orders,
		log:         log,
		idleTTL:     idleTTL,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		stopCleanup: make(chan struct{}),
	}

	if idleTTL > 0 {
		r.wg.Add(1)
		go r.cleanupLoop(CleanupInterval)
	}
	return r
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the session, creating it and loading its persisted cart on first use.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = r.newSession(id)
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	r.mu.Unlock()

	s.load.Do(func() {
		s.Cart.LoadCart(ctx)
		r.log.Debug().Str("session_id", id).Msg("session started")
	})
	return s
}

func (r *Registry) newSession(id string) *Session {
	log := r.log.With().Str("session_id", id).Logger()
	persistence := storage.NewCartStorage(r.snapshot, id, r.expiry)

	carts := cart.NewStore(r.catalog, persistence, log)
	return &Session{
		ID:       id,
		Cart:     carts,
		Checkout: checkout.NewStore(id, carts, r.orders, log),
	}
}

// ClearSession drops the cart of a session whose order was placed, possibly by another
// replica. Only the cart with cartID is cleared, so a cart started after the order survives.
// The persisted snapshot is removed even when the session isn't held here.
func (r *Registry) ClearSession(ctx context.Context, id, cartID string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if ok {
		if c := s.Cart.State().Cart; c != nil && c.ID != cartID {
			return nil
		}
		s.Cart.ClearCart(ctx)
		s.Checkout.Reset()
		return nil
	}

	persisted := storage.NewCartStorage(r.snapshot, id, r.expiry)
	saved, err := persisted.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cart of session %s: %w", id, err)
	}
	if saved == nil || saved.ID != cartID {
		return nil
	}
	return persisted.Clear(ctx)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the cleanup loop. Persisted carts are left alone.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.stopCleanup)
	})
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.Checkout.Close()
		delete(r.sessions, id)
	}
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle forgets sessions not seen for idleTTL. Their carts stay in storage and are
// reloaded on the next request.
func (r *Registry) evictIdle() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			s.Checkout.Close()
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.log.Debug().Int("evicted", evicted).Int("remaining", len(r.sessions)).Msg("idle sessions evicted")
	}
	return evicted
}
