package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryRepository keeps orders and their outbox in process memory. Processed events are
// dropped, so the outbox only holds what is still waiting to be published.
type MemoryRepository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	outbox   []*OutboxEvent
	nextID   int64
	noOutbox bool
}

type MemoryOption func(*MemoryRepository)

// WithoutOutbox stops queueing events. For when nothing publishes them.
func WithoutOutbox() MemoryOption {
	return func(m *MemoryRepository) { m.noOutbox = true }
}

func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	m := &MemoryRepository{orders: make(map[string]*domain.Order)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryRepository) CreateOrder(_ context.Context, o *domain.Order) error {
	payload, err := marshalOrderPlaced(o)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[o.ID]; ok {
		return ErrDuplicateOrder
	}
	stored := *o
	m.orders[o.ID] = &stored

	if m.noOutbox {
		return nil
	}
	m.nextID++
	m.outbox = append(m.outbox, &OutboxEvent{
		ID:          m.nextID,
		AggregateID: o.ID,
		EventType:   EventOrderPlaced,
		Payload:     payload,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (m *MemoryRepository) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := *o
	return &out, nil
}

// ListOrdersBySession returns newest first.
func (m *MemoryRepository) ListOrdersBySession(_ context.Context, sessionID string) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Order
	for _, o := range m.orders {
		if o.SessionID == sessionID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*OutboxEvent
	for _, ev := range m.outbox {
		if ev.ProcessedAt != nil {
			continue
		}
		cp := *ev
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, ev := range m.outbox {
		if ev.ID == id {
			m.outbox = append(m.outbox[:i], m.outbox[i+1:]...)
			return nil
		}
	}
	return nil
}
