// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisCommandErrors counts failed Redis commands by command name.
	RedisCommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_redis_command_errors_total",
		Help: "Failed Redis commands by command name",
	}, []string{"command"})

	// PageCacheRequests counts page cache lookups by result (hit, miss, bypass).
	PageCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_requests_total",
		Help: "Total number of page cache lookups by result",
	}, []string{"result"})

	// FeedBuildLatency records how long building a feed page takes per scope kind.
	FeedBuildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yatube_feed_build_latency_seconds",
		Help:    "Feed page build latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	// ContentCreated counts posts, comments and follow edges created.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_content_created_total",
		Help: "Total number of posts, comments and follows created",
	}, []string{"kind"})
)

// TrackFeedBuild returns a function that records the build latency when called (e.g. defer).
func TrackFeedBuild(scope string) func() {
	start := time.Now()
	return func() {
		FeedBuildLatency.WithLabelValues(scope).Observe(time.Since(start).Seconds())
	}
}
