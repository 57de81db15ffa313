package cache

import (
	"context"
	"fmt"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// PageKeyPrefix namespaces rendered pages in the store.
const PageKeyPrefix = "page:"

// PageKey derives the cache key of a paginated route.
func PageKey(path string, page int) string {
	return fmt.Sprintf("%s%s?page=%d", PageKeyPrefix, path, page)
}

// RenderFunc produces the response body for a cache miss.
type RenderFunc func(ctx context.Context) ([]byte, error)

// PageCache memoizes rendered pages for a TTL and collapses concurrent misses.
type PageCache struct {
	store Store
	group singleflight.Group
}

// NewPageCache builds a page cache over store.
func NewPageCache(store Store) *PageCache {
	return &PageCache{store: store}
}

// GetOrRender returns the cached body for key, rendering and storing it on a miss.
// A non-positive ttl renders without caching. Store failures degrade to rendering.
func (c *PageCache) GetOrRender(ctx context.Context, key string, ttl time.Duration, render RenderFunc) ([]byte, bool, error) {
	if ttl <= 0 {
		observability.PageCacheRequests.WithLabelValues("bypass").Inc()
		body, err := render(ctx)
		return body, false, err
	}

	if body, ok := c.lookup(ctx, key); ok {
		observability.PageCacheRequests.WithLabelValues("hit").Inc()
		return body, true, nil
	}

	observability.PageCacheRequests.WithLabelValues("miss").Inc()
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if body, ok := c.lookup(ctx, key); ok {
			return body, nil
		}
		span, ctx := observability.NewSpan(ctx, "page_cache.render", attribute.String("cache.key", key))
		defer span.End()
		body, err := render(ctx)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if err := c.store.Set(ctx, key, body, ttl); err != nil {
			middleware.Logger.WarnContext(ctx, "page cache store failed", "key", key, "error", err.Error())
		}
		return body, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

func (c *PageCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := c.store.Get(ctx, key)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "page cache lookup failed", "key", key, "error", err.Error())
		return nil, false
	}
	return body, ok
}

// Clear drops every cached page.
func (c *PageCache) Clear(ctx context.Context) error {
	return c.store.DeletePrefix(ctx, PageKeyPrefix)
}
