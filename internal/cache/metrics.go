package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHitsTotal counts cache hits.
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	// CacheMissesTotal counts cache misses.
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// CacheEvictionsTotal counts lazy expiry evictions.
	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_cache_evictions_total",
			Help: "Total number of entries evicted on expired reads",
		},
		[]string{"cache"},
	)

	// CacheSize shows the current number of entries per cache.
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "token_cache_entries",
			Help: "Current number of cache entries",
		},
		[]string{"cache"},
	)
)

func recordHit(name string) {
	CacheHitsTotal.WithLabelValues(name).Inc()
}

func recordMiss(name string) {
	CacheMissesTotal.WithLabelValues(name).Inc()
}

func recordEviction(name string) {
	CacheEvictionsTotal.WithLabelValues(name).Inc()
}

func recordSize(name string, n int) {
	CacheSize.WithLabelValues(name).Set(float64(n))
}
