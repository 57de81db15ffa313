package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "page:/?page=1", []byte("a"), 20*time.Second))

	got, ok, err := store.Get(ctx, "page:/?page=1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), got)

	now = now.Add(20 * time.Second)
	_, ok, err = store.Get(ctx, "page:/?page=1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "page:/?page=1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "other", []byte("b"), time.Minute))

	require.NoError(t, store.DeletePrefix(ctx, PageKeyPrefix))

	_, ok, _ := store.Get(ctx, "page:/?page=1")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "other")
	assert.True(t, ok)
}

func TestRedisStore(t *testing.T) {
	rdb, mr := newMiniredisClient(t)
	store := NewStore(rdb)
	ctx := context.Background()

	_, isRedis := store.(*RedisStore)
	require.True(t, isRedis)

	_, ok, err := store.Get(ctx, "page:/?page=1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "page:/?page=1", []byte("one"), 20*time.Second))
	require.NoError(t, store.Set(ctx, "page:/?page=2", []byte("two"), 20*time.Second))
	mr.Set("blacklist:abc", "1")

	got, ok, err := store.Get(ctx, "page:/?page=1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), got)

	mr.FastForward(21 * time.Second)
	_, ok, err = store.Get(ctx, "page:/?page=1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "page:/?page=3", []byte("three"), time.Minute))
	require.NoError(t, store.DeletePrefix(ctx, PageKeyPrefix))
	assert.False(t, mr.Exists("page:/?page=3"))
	assert.True(t, mr.Exists("blacklist:abc"))
}

func TestNewStoreWithoutRedis(t *testing.T) {
	_, isMemory := NewStore(nil).(*MemoryStore)
	assert.True(t, isMemory)
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	require.NotNil(t, opts.MaintNotificationsConfig)
	assert.Equal(t, maintnotifications.ModeDisabled, opts.MaintNotificationsConfig.Mode)

	opts, err = ParseOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = ParseOptions("redis://cache:6380/not-a-db")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	_, mr := newMiniredisClient(t)

	c, err := Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "k", "v", 0).Err())
	_ = c.Close()

	mr.Close()
	_, err = Connect(context.Background(), mr.Addr())
	assert.ErrorContains(t, err, "redis ping")

	_, err = Connect(context.Background(), "redis://cache:6380/not-a-db")
	assert.ErrorContains(t, err, "invalid redis url")
}
