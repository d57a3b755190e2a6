package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStorage on top of it
func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStorage(client, time.Hour)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestRedisStorage_PutGet(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	snapshot := &domain.StorageSnapshot{Cart: sampleCart(), Timestamp: 1767225600000}

	require.NoError(t, store.Put(ctx, "session-1", snapshot))
	assert.True(t, mr.Exists("cart:session-1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:session-1"))

	got, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
}

func TestRedisStorage_Miss(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	got, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrSnapshotMiss)
	assert.Nil(t, got)
}

func TestRedisStorage_InvalidJSON(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set("cart:session-1", "garbage"))

	_, err := store.Get(context.Background(), "session-1")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestRedisStorage_TTLExpiry(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "session-1", &domain.StorageSnapshot{Timestamp: 1}))

	mr.FastForward(time.Hour + time.Second)

	_, err := store.Get(ctx, "session-1")
	assert.ErrorIs(t, err, ErrSnapshotMiss)
}

func TestRedisStorage_Delete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "session-1", &domain.StorageSnapshot{Timestamp: 1}))
	require.NoError(t, store.Delete(ctx, "session-1"))
	assert.False(t, mr.Exists("cart:session-1"))
}

func TestRedisStorage_PingFailsWhenServerDown(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	mr.Close()
	assert.Error(t, store.Ping(ctx))
	assert.False(t, NewCartStorage(store, "session-1", 0).IsAvailable(ctx))
}
