package partial

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_cache_hits_total",
		Help: "Total number of partial store lookups that found a tile",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_cache_misses_total",
		Help: "Total number of partial store lookups that found nothing",
	})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_cache_evictions_total",
		Help: "Total number of partials evicted for capacity",
	})

	cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_cache_invalidations_total",
		Help: "Total number of partials dropped by invalidation",
	})

	renderRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_render_requests_total",
		Help: "Total number of render backend calls",
	})

	renderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_render_failures_total",
		Help: "Total number of render backend calls that produced no tile",
	})

	renderCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_render_coalesced_total",
		Help: "Total number of tile requests served by another caller's in-flight render",
	})

	renderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "partial_render_latency_seconds",
		Help:    "Latency of render backend calls in seconds",
		Buckets: prometheus.DefBuckets,
	})

	queryTiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "partial_query_tiles",
		Help:    "Number of tiles covering each viewport query",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
