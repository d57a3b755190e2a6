package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// TieredStorage reads through a cache in front of a primary store. Writes go to the primary
// and invalidate the cached entry. A cache fill is dropped, or undone, when a write to the
// same key lands while it is in flight.
type TieredStorage struct {
	cache   SnapshotStore
	primary SnapshotStore
	log     zerolog.Logger
	sfg     singleflight.Group // Prevents cache stampede

	mu    sync.Mutex
	fills map[string]*fillState
	wg    sync.WaitGroup
}

// fillState tracks the write generation of a key while cache fills for it are pending.
type fillState struct {
	gen     uint64
	pending int
}

func NewTieredStorage(cache, primary SnapshotStore, log zerolog.Logger) *TieredStorage {
	return &TieredStorage{
		cache:   cache,
		primary: primary,
		log:     log,
		fills:   make(map[string]*fillState),
	}
}

func (t *TieredStorage) Get(ctx context.Context, key string) (*domain.StorageSnapshot, error) {
	v, err, _ := t.sfg.Do(key, func() (interface{}, error) {
		snapshot, err := t.cache.Get(ctx, key)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, ErrSnapshotMiss) {
			t.log.Warn().Err(err).Str("session_id", key).Msg("snapshot cache get failed")
		}

		gen := t.beginFill(key)
		snapshot, err = t.primary.Get(ctx, key)
		if err != nil {
			t.endFill(key)
			return nil, err
		}

		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			defer t.endFill(key)
			t.fill(key, gen, snapshot)
		}()

		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.StorageSnapshot), nil
}

func (t *TieredStorage) Put(ctx context.Context, key string, snapshot *domain.StorageSnapshot) error {
	if err := t.primary.Put(ctx, key, snapshot); err != nil {
		return err
	}
	t.invalidate(key)
	return nil
}

func (t *TieredStorage) Delete(ctx context.Context, key string) error {
	if err := t.primary.Delete(ctx, key); err != nil {
		return err
	}
	t.invalidate(key)
	return nil
}

func (t *TieredStorage) Ping(ctx context.Context) error {
	return t.primary.Ping(ctx)
}

// Close waits for in-flight cache fills.
func (t *TieredStorage) Close() {
	t.wg.Wait()
}

func (t *TieredStorage) beginFill(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.fills[key]
	if !ok {
		st = &fillState{}
		t.fills[key] = st
	}
	st.pending++
	return st.gen
}

func (t *TieredStorage) endFill(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.fills[key]
	st.pending--
	if st.pending == 0 {
		delete(t.fills, key)
	}
}

// written reports whether key was written since generation gen was read.
func (t *TieredStorage) written(key string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fills[key].gen != gen
}

// fill caches a snapshot read from the primary at generation gen. A write that races the
// set is caught by the second check, and the stale entry is removed again.
func (t *TieredStorage) fill(key string, gen uint64, snapshot *domain.StorageSnapshot) {
	if t.written(key, gen) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := t.cache.Put(ctx, key, snapshot); err != nil {
		t.log.Warn().Err(err).Str("session_id", key).Msg("snapshot cache set failed")
		return
	}

	if t.written(key, gen) {
		if err := t.cache.Delete(ctx, key); err != nil {
			t.log.Warn().Err(err).Str("session_id", key).Msg("stale snapshot cache entry not removed")
		}
	}
}

func (t *TieredStorage) invalidate(key string) {
	t.mu.Lock()
	if st, ok := t.fills[key]; ok {
		st.gen++
	}
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := t.cache.Delete(ctx, key); err != nil {
		t.log.Warn().Err(err).Str("session_id", key).Msg("snapshot cache invalidate failed")
	}
}
