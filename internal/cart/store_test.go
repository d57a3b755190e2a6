package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStorage records saves and can be told to fail.
type mockStorage struct {
	mu       sync.RWMutex
	saved    *domain.Cart
	saves    int
	clears   int
	loadCart *domain.Cart
	loadErr  error
	saveErr  error
	clearErr error
}

func (m *mockStorage) Save(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = cart.Clone()
	return nil
}

func (m *mockStorage) Load(context.Context) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadCart.Clone(), m.loadErr
}

func (m *mockStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.saved = nil
	return m.clearErr
}

func (m *mockStorage) IsAvailable(context.Context) bool { return true }

func (m *mockStorage) lastSaved() *domain.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saved
}

func testCatalog() *catalog.MemoryCatalog {
	out := product("p3", 333)
	out.InStock = false
	return catalog.NewMemoryCatalog([]domain.Product{
		product("p1", 1000),
		product("p2", 2499),
		out,
	}, nil)
}

func newTestStore(t *testing.T, st *mockStorage) *Store {
	t.Helper()
	s := NewStore(testCatalog(), st, zerolog.Nop())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.LoadCart(context.Background())
	return s
}

func TestLoadCart_EmptyWhenNothingSaved(t *testing.T) {
	s := newTestStore(t, &mockStorage{})

	st := s.State()
	require.NotNil(t, st.Cart)
	assert.Empty(t, st.Cart.Items)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
}

func TestLoadCart_RestoresSavedCart(t *testing.T) {
	now := time.Now()
	saved := AddProduct(NewEmptyCart("saved", now), product("p1", 1000), 3, "item-x", now)
	s := newTestStore(t, &mockStorage{loadCart: saved})

	assert.Equal(t, saved, s.State().Cart)
}

func TestLoadCart_StorageErrorDegradesToEmpty(t *testing.T) {
	s := newTestStore(t, &mockStorage{loadErr: fmt.Errorf("%w: boom", domain.ErrPersistence)})

	st := s.State()
	require.NotNil(t, st.Cart)
	assert.Empty(t, st.Cart.Items)
	assert.Empty(t, st.Error)
}

func TestAddToCart_ExampleScenario(t *testing.T) {
	st := &mockStorage{}
	s := newTestStore(t, st)

	require.NoError(t, s.AddToCart(context.Background(), "p1", 2))

	c := s.State().Cart
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, int64(2000), c.Summary.Subtotal.Amount)
	assert.Equal(t, int64(160), c.Summary.Tax.Amount)
	assert.Equal(t, int64(2160), c.Summary.Total.Amount)
	assert.Equal(t, 2, c.Summary.ItemCount)
	assert.Equal(t, c, st.lastSaved())
}

func TestAddToCart_DefaultsToOne(t *testing.T) {
	s := newTestStore(t, &mockStorage{})

	require.NoError(t, s.AddToCart(context.Background(), "p2", 0))
	assert.Equal(t, 1, s.State().Cart.Summary.ItemCount)
}

func TestAddToCart_SameProductTwiceMerges(t *testing.T) {
	s := newTestStore(t, &mockStorage{})
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 2))
	require.NoError(t, s.AddToCart(ctx, "p1", 5))

	c := s.State().Cart
	require.Len(t, c.Items, 1)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

func TestAddToCart_Failures(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  int
		wantErr   error
	}{
		{"unknown product", "nope", 1, domain.ErrProductNotFound},
		{"out of stock", "p3", 1, domain.ErrOutOfStock},
		{"negative quantity", "p1", -2, domain.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStorage{}
			s := newTestStore(t, st)
			require.NoError(t, s.AddToCart(context.Background(), "p1", 1))
			before := s.State().Cart

			err := s.AddToCart(context.Background(), tt.productID, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)

			state := s.State()
			assert.Equal(t, before, state.Cart, "cart must be unchanged")
			assert.Equal(t, tt.wantErr.Error(), state.Error)
			assert.False(t, state.Loading)
			assert.Equal(t, 1, st.saves)
		})
	}
}

func TestAddToCart_SaveFailureKeepsChange(t *testing.T) {
	st := &mockStorage{saveErr: errors.New("quota exceeded")}
	s := newTestStore(t, st)

	require.NoError(t, s.AddToCart(context.Background(), "p1", 1))

	state := s.State()
	assert.Len(t, state.Cart.Items, 1)
	assert.Empty(t, state.Error)
}

func TestUpdateCartItem(t *testing.T) {
	s := newTestStore(t, &mockStorage{})
	ctx := context.Background()
	require.NoError(t, s.AddToCart(ctx, "p1", 1))
	itemID := s.State().Cart.Items[0].ID

	require.NoError(t, s.UpdateCartItem(ctx, itemID, 3))
	assert.Equal(t, int64(3000), s.State().Cart.Summary.Subtotal.Amount)

	assert.ErrorIs(t, s.UpdateCartItem(ctx, itemID, -1), domain.ErrInvalidQuantity)
	assert.Equal(t, domain.ErrInvalidQuantity.Error(), s.State().Error)

	assert.ErrorIs(t, s.UpdateCartItem(ctx, "missing", 2), domain.ErrItemNotFound)
	assert.Equal(t, 3, s.State().Cart.Summary.ItemCount)
}

func TestUpdateCartItem_ZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	build := func() (*Store, string) {
		s := newTestStore(t, &mockStorage{})
		require.NoError(t, s.AddToCart(ctx, "p1", 2))
		require.NoError(t, s.AddToCart(ctx, "p2", 1))
		return s, s.State().Cart.Items[0].ID
	}

	a, itemA := build()
	b, itemB := build()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed }

	require.NoError(t, a.UpdateCartItem(ctx, itemA, 0))
	require.NoError(t, b.RemoveFromCart(ctx, itemB))

	assert.Equal(t, b.State().Cart, a.State().Cart)
	assert.Len(t, a.State().Cart.Items, 1)
}

func TestRemoveFromCart_UnknownItemIsNoop(t *testing.T) {
	s := newTestStore(t, &mockStorage{})
	ctx := context.Background()
	require.NoError(t, s.AddToCart(ctx, "p1", 2))
	before := s.State().Cart

	require.NoError(t, s.RemoveFromCart(ctx, "missing"))

	after := s.State().Cart
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Summary, after.Summary)
	assert.Empty(t, s.State().Error)
}

func TestMutations_WithoutLoadedCart(t *testing.T) {
	s := NewStore(testCatalog(), &mockStorage{}, zerolog.Nop())
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateCartItem(ctx, "x", 1), domain.ErrNoCartFound)
	assert.ErrorIs(t, s.RemoveFromCart(ctx, "x"), domain.ErrNoCartFound)
	assert.Equal(t, domain.ErrNoCartFound.Error(), s.State().Error)

	require.NoError(t, s.AddToCart(ctx, "p1", 1))
	assert.Len(t, s.State().Cart.Items, 1)
}

func TestClearCart_SwallowsStorageErrors(t *testing.T) {
	st := &mockStorage{clearErr: errors.New("disk gone")}
	s := newTestStore(t, st)
	ctx := context.Background()
	require.NoError(t, s.AddToCart(ctx, "p1", 2))

	s.ClearCart(ctx)

	state := s.State()
	require.NotNil(t, state.Cart)
	assert.Empty(t, state.Cart.Items)
	assert.Equal(t, 0, state.Cart.Summary.ItemCount)
	assert.Empty(t, state.Error)
	assert.Equal(t, 1, st.clears)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, &mockStorage{})

	var mu sync.Mutex
	var seen []State
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	require.NoError(t, s.AddToCart(context.Background(), "p1", 1))
	unsubscribe()
	require.NoError(t, s.AddToCart(context.Background(), "p1", 1))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[1].Loading)
	assert.Equal(t, 1, seen[1].Cart.Summary.ItemCount)
}

func TestStateIsACopy(t *testing.T) {
	s := newTestStore(t, &mockStorage{})
	require.NoError(t, s.AddToCart(context.Background(), "p1", 1))

	st := s.State()
	st.Cart.Items[0].Quantity = 99

	assert.Equal(t, 1, s.State().Cart.Items[0].Quantity)
}

// Random operation sequences must keep the summary consistent with the lines.
func TestSummaryMatchesItems_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()
	prices := map[string]int64{"p1": 1000, "p2": 2499}
	productIDs := []string{"p1", "p2", "p3", "nope"}

	for run := 0; run < 50; run++ {
		s := newTestStore(t, &mockStorage{})

		for step := 0; step < 30; step++ {
			items := s.State().Cart.Items
			switch rng.Intn(3) {
			case 0:
				_ = s.AddToCart(ctx, productIDs[rng.Intn(len(productIDs))], rng.Intn(5))
			case 1:
				id := "missing"
				if len(items) > 0 {
					id = items[rng.Intn(len(items))].ID
				}
				_ = s.UpdateCartItem(ctx, id, rng.Intn(6)-1)
			case 2:
				id := "missing"
				if len(items) > 0 && rng.Intn(4) > 0 {
					id = items[rng.Intn(len(items))].ID
				}
				_ = s.RemoveFromCart(ctx, id)
			}

			c := s.State().Cart
			var subtotal int64
			count := 0
			seen := map[string]bool{}
			for _, item := range c.Items {
				require.Positive(t, item.Quantity)
				require.False(t, seen[item.Product.ID], "duplicate line for %s", item.Product.ID)
				seen[item.Product.ID] = true
				subtotal += int64(item.Quantity) * prices[item.Product.ID]
				count += item.Quantity
			}
			require.Equal(t, count, c.Summary.ItemCount)
			require.Equal(t, subtotal, c.Summary.Subtotal.Amount)
			require.Equal(t, c.Summary.Subtotal.Amount+c.Summary.Tax.Amount, c.Summary.Total.Amount)
		}
	}
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	s := newTestStore(t, &mockStorage{})
	s.newID = func() string { return "id" }

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddToCart(context.Background(), "p1", 1)
		}()
	}
	wg.Wait()

	c := s.State().Cart
	require.Len(t, c.Items, 1)
	assert.Equal(t, 20, c.Items[0].Quantity)
}

func TestStore_WithCartStorage(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()

	first := NewStore(testCatalog(), storage.NewCartStorage(mem, "session-1", storage.DefaultExpiry), zerolog.Nop())
	first.LoadCart(ctx)
	require.NoError(t, first.AddToCart(ctx, "p1", 2))

	second := NewStore(testCatalog(), storage.NewCartStorage(mem, "session-1", storage.DefaultExpiry), zerolog.Nop())
	second.LoadCart(ctx)

	assert.Equal(t, first.State().Cart.Items, second.State().Cart.Items)
	assert.Equal(t, first.State().Cart.Summary, second.State().Cart.Summary)
}
