package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// DefaultExpiry is how long a saved cart stays loadable.
const DefaultExpiry = 7 * 24 * time.Hour

var (
	ErrSnapshotMiss    = errors.New("snapshot miss")
	ErrCorruptSnapshot = errors.New("corrupt cart snapshot")
)

// Persistence is the single snapshot slot a cart store reads and writes.
type Persistence interface {
	Save(ctx context.Context, cart *domain.Cart) error
	Load(ctx context.Context) (*domain.Cart, error)
	Clear(ctx context.Context) error
	IsAvailable(ctx context.Context) bool
}

// SnapshotStore keeps raw snapshots by session key. Backends return ErrSnapshotMiss when
// the key is absent and ErrCorruptSnapshot when the stored value can't be decoded.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (*domain.StorageSnapshot, error)
	Put(ctx context.Context, key string, snapshot *domain.StorageSnapshot) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// CartStorage binds a SnapshotStore to one session and applies the expiry window.
type CartStorage struct {
	store  SnapshotStore
	key    string
	expiry time.Duration
	now    func() time.Time
}

func NewCartStorage(store SnapshotStore, sessionID string, expiry time.Duration) *CartStorage {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &CartStorage{
		store:  store,
		key:    sessionID,
		expiry: expiry,
		now:    time.Now,
	}
}

func (s *CartStorage) Save(ctx context.Context, cart *domain.Cart) error {
	snapshot := &domain.StorageSnapshot{
		Cart:      cart,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.Put(ctx, s.key, snapshot); err != nil {
		return fmt.Errorf("%w: save: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Load returns nil without error when nothing is stored or the snapshot is older than the
// expiry window. Expired and corrupt snapshots are removed.
func (s *CartStorage) Load(ctx context.Context) (*domain.Cart, error) {
	snapshot, err := s.store.Get(ctx, s.key)
	if errors.Is(err, ErrSnapshotMiss) {
		return nil, nil
	}
	if errors.Is(err, ErrCorruptSnapshot) {
		_ = s.store.Delete(ctx, s.key)
		return nil, fmt.Errorf("%w: load: %w", domain.ErrPersistence, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", domain.ErrPersistence, err)
	}

	age := s.now().Sub(time.UnixMilli(snapshot.Timestamp))
	if age > s.expiry {
		if err := s.store.Delete(ctx, s.key); err != nil {
			return nil, fmt.Errorf("%w: clear expired: %w", domain.ErrPersistence, err)
		}
		return nil, nil
	}

	return snapshot.Cart, nil
}

func (s *CartStorage) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%w: clear: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *CartStorage) IsAvailable(ctx context.Context) bool {
	return s.store.Ping(ctx) == nil
}

func encodeSnapshot(snapshot *domain.StorageSnapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot failed: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*domain.StorageSnapshot, error) {
	var snapshot domain.StorageSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return &snapshot, nil
}
