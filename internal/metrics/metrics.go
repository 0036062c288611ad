// Registers:
//
//	#perpdash_upstream_requests_total
//	#perpdash_upstream_request_seconds
//	#perpdash_cache_hits_total / #perpdash_cache_misses_total
//	#perpdash_pagination_pages
//	#go_* and process_* system metrics
//
// The collectors are served by the API server's /metrics route via
// promhttp; this package only owns registration and the increment helpers.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	once             sync.Once
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	paginationPages  *prometheus.HistogramVec
)

func Init() {
	once.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpdash_upstream_requests_total",
				Help: "Number of requests sent to the venue API",
			},
			[]string{"endpoint", "status"},
		)

		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "perpdash_upstream_request_seconds",
				Help:    "Venue API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		)

		cacheHits = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpdash_cache_hits_total",
				Help: "Number of TTL cache hits",
			},
			[]string{"cache"},
		)

		cacheMisses = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpdash_cache_misses_total",
				Help: "Number of TTL cache misses",
			},
			[]string{"cache"},
		)

		paginationPages = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "perpdash_pagination_pages",
				Help:    "Pages walked per paginated upstream listing",
				Buckets: []float64{1, 2, 3, 5, 8, 10},
			},
			[]string{"endpoint"},
		)

		_ = prometheus.Register(upstreamRequests)
		_ = prometheus.Register(upstreamLatency)
		_ = prometheus.Register(cacheHits)
		_ = prometheus.Register(cacheMisses)
		_ = prometheus.Register(paginationPages)
		_ = prometheus.Register(collectors.NewGoCollector())
		_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// ObserveUpstream records one venue API request with its HTTP status and
// duration in seconds.
func ObserveUpstream(endpoint string, status int, seconds float64) {
	if upstreamRequests != nil {
		upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	}
	if upstreamLatency != nil {
		upstreamLatency.WithLabelValues(endpoint).Observe(seconds)
	}
}

// CacheHit increases the hit counter for the named cache.
func CacheHit(cache string) {
	if cacheHits != nil {
		cacheHits.WithLabelValues(cache).Inc()
	}
}

// CacheMiss increases the miss counter for the named cache.
func CacheMiss(cache string) {
	if cacheMisses != nil {
		cacheMisses.WithLabelValues(cache).Inc()
	}
}

// ObservePages records how many pages a paginated walk consumed.
func ObservePages(endpoint string, pages int) {
	if paginationPages != nil {
		paginationPages.WithLabelValues(endpoint).Observe(float64(pages))
	}
}
