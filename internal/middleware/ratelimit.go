// Package middleware provides request logging, tracing, sessions and rate limiting.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the counter store is unreachable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503 Service Unavailable.
	FailClosed
)

var errNoStore = errors.New("rate limit store not configured")

// RateLimiter counts requests per actor in fixed windows kept in Redis.
type RateLimiter struct {
	redis   *redis.Client
	enabled bool
	Policy  FailPolicy
}

// NewRateLimiter returns a fail-open limiter. A disabled limiter admits everything.
func NewRateLimiter(rdb *redis.Client, enabled bool) *RateLimiter {
	return &RateLimiter{redis: rdb, enabled: enabled}
}

// Allow records one hit of actor on resource. When the limit is exceeded it
// returns false and how long until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, resource, actor string, limit int, window time.Duration) (bool, time.Duration, error) {
	if !l.enabled {
		return true, 0, nil
	}
	if l.redis == nil {
		return false, 0, errNoStore
	}

	key := "rl:" + resource + ":" + actor
	hits, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if hits == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}
	if hits <= int64(limit) {
		return true, 0, nil
	}

	retry, err := l.redis.PTTL(ctx, key).Result()
	if err != nil || retry < 0 {
		retry = window
	}
	return false, retry, nil
}

// Limit guards a route with limit requests per window, counted per signed-in
// user or, for anonymous visitors, per client IP.
func (l *RateLimiter) Limit(resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := "ip:" + c.IP()
		if uid, ok := CurrentUserID(c); ok {
			actor = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		allowed, retry, err := l.Allow(c.UserContext(), resource, actor, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				"resource", resource, "error", err.Error())
			if l.Policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retry.Round(time.Second)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
