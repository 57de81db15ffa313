package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateLimiter(rdb, true), mr
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(nil, false)
	for i := 0; i < 3; i++ {
		allowed, _, err := l.Allow(context.Background(), "signup", "ip:1.2.3.4", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestRateLimiter_NoStore(t *testing.T) {
	allowed, _, err := NewRateLimiter(nil, true).Allow(context.Background(), "signup", "ip:1.2.3.4", 1, time.Minute)
	assert.ErrorIs(t, err, errNoStore)
	assert.False(t, allowed)
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	l, mr := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := l.Allow(ctx, "comment", "user:7", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, retry, err := l.Allow(ctx, "comment", "user:7", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retry)
	assert.Equal(t, time.Minute, mr.TTL("rl:comment:user:7"))

	// Other actors and resources have their own windows.
	allowed, _, err = l.Allow(ctx, "comment", "user:8", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, _, err = l.Allow(ctx, "login", "user:7", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, _, err = l.Allow(ctx, "comment", "user:7", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Limit(t *testing.T) {
	newApp := func(handler fiber.Handler) *fiber.App {
		app := fiber.New()
		app.Post("/auth/login/", handler, func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}
	send := func(t *testing.T, app *fiber.App) int {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/auth/login/", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	t.Run("fail open without redis", func(t *testing.T) {
		app := newApp(NewRateLimiter(nil, true).Limit("login", 1, time.Minute))
		assert.Equal(t, fiber.StatusOK, send(t, app))
	})

	t.Run("fail closed without redis", func(t *testing.T) {
		l := NewRateLimiter(nil, true)
		l.Policy = FailClosed
		assert.Equal(t, fiber.StatusServiceUnavailable, send(t, newApp(l.Limit("login", 1, time.Minute))))
	})

	t.Run("too many requests", func(t *testing.T) {
		l, _ := newLimiter(t)
		app := newApp(l.Limit("login", 1, 5*time.Minute))
		assert.Equal(t, fiber.StatusOK, send(t, app))

		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/auth/login/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "300", resp.Header.Get(fiber.HeaderRetryAfter))
	})
}
