package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer (snapshot, memory, redis).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestsellers_cache_hits_total",
			Help: "Total number of bestseller cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks full tiered-read misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bestsellers_cache_misses_total",
			Help: "Total number of bestseller cache misses across all layers",
		},
	)

	// StaleServes tracks values served past their freshness bound after a
	// live-computation failure.
	StaleServes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bestsellers_cache_stale_serves_total",
			Help: "Total number of stale cache values served on pipeline failure",
		},
	)

	// CacheErrors tracks cache operation errors by operation; these are
	// swallowed, the counter is the only place they surface besides logs.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestsellers_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "decode"
	)
)
