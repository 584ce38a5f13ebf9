// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsRecorded counts committed movements by type.
	MovementsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_movements_recorded_total",
		Help: "Number of stock movements committed, by movement type",
	}, []string{"type"})

	// OperationRetries counts re-runs triggered by detected conflicts.
	OperationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_operation_retries_total",
		Help: "Number of write operations re-run after an optimistic or lock conflict",
	})

	// OperationConflicts counts operations that exhausted the retry bound.
	OperationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_operation_conflicts_total",
		Help: "Number of write operations that failed after exhausting conflict retries",
	})

	// CacheHits and CacheMisses track balance cache effectiveness.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_balance_cache_hits_total",
		Help: "Number of balance reads served from the cache",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_balance_cache_misses_total",
		Help: "Number of balance reads that fell back to the ledger fold",
	})

	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
