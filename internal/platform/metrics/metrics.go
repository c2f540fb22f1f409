package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once guards registration: the default registry panics on a
	// duplicate collector, and tests may call Init repeatedly.
	once sync.Once

	// HTTPRequestsTotal counts finished requests. The route label is
	// the route pattern (e.g. /api/links/:id), never the concrete
	// path, to keep cardinality bounded.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of handled HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// CacheOperations tracks resolve-cache traffic per layer (l1/l2)
	// and result (hit, hit_negative, miss).
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_cache_operations_total",
			Help: "Resolve cache lookups by layer and result.",
		},
		[]string{"layer", "result"},
	)

	LinkRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "link_redirects_total",
			Help: "Total number of successful short-link redirects.",
		},
	)

	LinksCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Total number of links created.",
		},
	)

	LinksDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "links_deleted_total",
			Help: "Total number of links deleted.",
		},
	)
)

// Init registers all collectors with the default registry exactly once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			CacheOperations,
			LinkRedirects,
			LinksCreated,
			LinksDeleted,
		)
	})
}
