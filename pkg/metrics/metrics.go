// Package metrics provides the central Prometheus registry reference for the
// bestseller engine. All collectors are defined in their owning packages
// (shop, cache, throttle, bestseller) via promauto to keep concerns local and
// avoid circular dependencies; this package documents the inventory.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the module. All
// collectors register here automatically via promauto.
var Registry = prometheus.DefaultRegisterer

// Metrics inventory
//
// Upstream client (pkg/shop):
//   - shop_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status
//   - shop_request_duration_seconds{endpoint} (Histogram): request duration
//   - shop_errors_total{class} (Counter): errors by class (client, server, rate_limit, network)
//   - shop_retries_total{error_class} (Counter): retry attempts
//   - shop_retry_backoff_seconds{error_class} (Histogram): backoff durations
//   - shop_retry_exhausted_total{error_class} (Counter): exhausted retry budgets
//
// Call-limit gate (pkg/throttle):
//   - shop_calls_remaining (Gauge): headroom left in the upstream call bucket
//   - shop_throttle_blocks_total (Counter): requests refused by the gate
//   - shop_throttle_waits_total (Counter): requests delayed by the gate
//
// Cache (pkg/cache):
//   - bestsellers_cache_hits_total{layer} (Counter): hits by layer (snapshot, memory, redis)
//   - bestsellers_cache_misses_total (Counter): full tiered-read misses
//   - bestsellers_cache_stale_serves_total (Counter): stale values served on failure
//   - bestsellers_cache_errors_total{operation} (Counter): swallowed cache errors
//
// Service (pkg/bestseller):
//   - bestsellers_queries_total{source} (Counter): queries by result provenance
//   - bestsellers_query_failures_total (Counter): queries degraded to empty
//   - bestsellers_snapshot_builds_total{status} (Counter): build runs by outcome
//   - bestsellers_snapshot_build_duration_seconds (Histogram): build duration
//
// Example queries:
//
//   # Cache hit rate
//   sum(rate(bestsellers_cache_hits_total[5m])) /
//   (sum(rate(bestsellers_cache_hits_total[5m])) + sum(rate(bestsellers_cache_misses_total[5m])))
//
//   # Degradation rate
//   rate(bestsellers_query_failures_total[5m]) / sum(rate(bestsellers_queries_total[5m]))
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(shop_request_duration_seconds_bucket[5m]))
