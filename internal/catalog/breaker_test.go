package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCatalog fails while err is set.
type flakyCatalog struct {
	*MemoryCatalog
	mu    sync.Mutex
	err   error
	calls int
}

func (f *flakyCatalog) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.MemoryCatalog.GetProductByID(ctx, id)
}

func (f *flakyCatalog) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *flakyCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestBreakerCatalog_OpensAfterFailures(t *testing.T) {
	flaky := &flakyCatalog{MemoryCatalog: NewDemoCatalog(), err: errors.New("db down")}
	b := NewBreakerCatalog(flaky, BreakerSettings{FailureThreshold: 2, OpenTimeout: 50 * time.Millisecond}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.GetProductByID(ctx, "product-1")
		assert.EqualError(t, err, "db down")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.GetProductByID(ctx, "product-1")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Equal(t, 2, flaky.callCount())

	flaky.setErr(nil)
	require.Eventually(t, func() bool {
		p, err := b.GetProductByID(ctx, "product-1")
		return err == nil && p != nil
	}, time.Second, 20*time.Millisecond)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerCatalog_MissingProductIsNotAFailure(t *testing.T) {
	b := NewBreakerCatalog(NewDemoCatalog(), BreakerSettings{FailureThreshold: 1}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		p, err := b.GetProductByID(context.Background(), "product-404")
		require.NoError(t, err)
		assert.Nil(t, p)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())

	list, err := b.GetProducts(context.Background(), domain.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Total)

	cats, err := b.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 4)
}

func TestBreakerCatalog_CallerContextErrorsAreNotFailures(t *testing.T) {
	flaky := &flakyCatalog{MemoryCatalog: NewDemoCatalog()}
	b := NewBreakerCatalog(flaky, BreakerSettings{FailureThreshold: 1}, zerolog.Nop())

	for _, cause := range []error{context.DeadlineExceeded, fmt.Errorf("failed to query product: %w", context.Canceled)} {
		flaky.setErr(cause)
		_, err := b.GetProductByID(context.Background(), "product-1")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, gobreaker.StateClosed, b.State())
	}

	flaky.setErr(nil)
	p, err := b.GetProductByID(context.Background(), "product-1")
	require.NoError(t, err)
	assert.NotNil(t, p)
}
