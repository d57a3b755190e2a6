package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCatalogUnavailable is returned while the breaker is open.
var ErrCatalogUnavailable = errors.New("catalog temporarily unavailable")

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// BreakerCatalog fails fast once the wrapped catalog keeps erroring. A missing product is
// not a failure.
type BreakerCatalog struct {
	next Catalog
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerCatalog(next Catalog, settings BreakerSettings, log zerolog.Logger) *BreakerCatalog {
	if settings.Name == "" {
		settings.Name = "catalog"
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		// A caller that gave up, or ran out of its own deadline, says nothing about the catalog.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &BreakerCatalog{next: next, cb: cb}
}

func (b *BreakerCatalog) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.GetProductByID(ctx, id)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return v.(*domain.Product), nil
}

func (b *BreakerCatalog) GetProducts(ctx context.Context, filters domain.ProductFilters) (domain.ProductList, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.GetProducts(ctx, filters)
	})
	if err != nil {
		return domain.ProductList{}, breakerError(err)
	}
	return v.(domain.ProductList), nil
}

func (b *BreakerCatalog) GetCategories(ctx context.Context) ([]domain.Category, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.GetCategories(ctx)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return v.([]domain.Category), nil
}

func (b *BreakerCatalog) State() gobreaker.State {
	return b.cb.State()
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCatalogUnavailable
	}
	return err
}
