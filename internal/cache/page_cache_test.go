package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingRender(calls *int32) RenderFunc {
	return func(_ context.Context) ([]byte, error) {
		n := atomic.AddInt32(calls, 1)
		return []byte(fmt.Sprintf(`{"render":%d}`, n)), nil
	}
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "page:/?page=1", PageKey("/", 1))
	assert.Equal(t, "page:/?page=3", PageKey("/", 3))
}

func TestPageCache_HitWithinTTL(t *testing.T) {
	pc := NewPageCache(NewMemoryStore())
	ctx := context.Background()
	var calls int32

	first, hit, err := pc.GetOrRender(ctx, PageKey("/", 1), 20*time.Second, countingRender(&calls))
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := pc.GetOrRender(ctx, PageKey("/", 1), 20*time.Second, countingRender(&calls))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPageCache_ExpiryAndClear(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	pc := NewPageCache(store)
	ctx := context.Background()
	var calls int32
	key := PageKey("/", 1)

	_, _, err := pc.GetOrRender(ctx, key, 20*time.Second, countingRender(&calls))
	require.NoError(t, err)

	now = now.Add(21 * time.Second)
	body, hit, err := pc.GetOrRender(ctx, key, 20*time.Second, countingRender(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, `{"render":2}`, string(body))

	require.NoError(t, pc.Clear(ctx))
	body, hit, err = pc.GetOrRender(ctx, key, 20*time.Second, countingRender(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, `{"render":3}`, string(body))
}

func TestPageCache_DistinctPagesDistinctEntries(t *testing.T) {
	pc := NewPageCache(NewMemoryStore())
	ctx := context.Background()
	var calls int32

	one, _, err := pc.GetOrRender(ctx, PageKey("/", 1), time.Minute, countingRender(&calls))
	require.NoError(t, err)
	two, _, err := pc.GetOrRender(ctx, PageKey("/", 2), time.Minute, countingRender(&calls))
	require.NoError(t, err)
	assert.NotEqual(t, one, two)
}

func TestPageCache_ZeroTTLBypasses(t *testing.T) {
	pc := NewPageCache(NewMemoryStore())
	ctx := context.Background()
	var calls int32

	for i := 0; i < 3; i++ {
		_, hit, err := pc.GetOrRender(ctx, PageKey("/", 1), 0, countingRender(&calls))
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPageCache_RenderErrorNotCached(t *testing.T) {
	pc := NewPageCache(NewMemoryStore())
	ctx := context.Background()
	boom := errors.New("db down")

	_, _, err := pc.GetOrRender(ctx, PageKey("/", 1), time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	var calls int32
	_, hit, err := pc.GetOrRender(ctx, PageKey("/", 1), time.Minute, countingRender(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int32(1), calls)
}

func TestPageCache_ConcurrentMissesRenderOnce(t *testing.T) {
	pc := NewPageCache(NewMemoryStore())
	ctx := context.Background()
	var calls int32
	render := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return []byte("shared"), nil
	}

	var wg sync.WaitGroup
	bodies := make([][]byte, 16)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _, err := pc.GetOrRender(ctx, PageKey("/", 1), time.Minute, render)
			assert.NoError(t, err)
			bodies[i] = body
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, b := range bodies {
		assert.Equal(t, []byte("shared"), b)
	}
}

func TestPageCache_RedisUnavailableStillRenders(t *testing.T) {
	rdb, mr := newMiniredisClient(t)
	pc := NewPageCache(NewRedisStore(rdb))
	mr.Close()
	var calls int32

	body, hit, err := pc.GetOrRender(context.Background(), PageKey("/", 1), time.Minute, countingRender(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, `{"render":1}`, string(body))
}
