// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package metrics defines the Prometheus collectors exposed on /metrics.
//
// Collectors are registered with the default registry through promauto.
// Callers use the RecordX helpers rather than touching label values directly.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Recipe source (TheMealDB)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealdb_requests_total",
			Help: "Total number of requests sent to TheMealDB",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok, not_found, rate_limited, error
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mealdb_request_duration_seconds",
			Help:    "TheMealDB request duration in seconds, retries included",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealdb_retries_total",
			Help: "Total number of retries after HTTP 429 from TheMealDB",
		},
		[]string{"endpoint"},
	)

	// Circuit breaker

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // recipe, listing
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_expired_evictions_total",
			Help: "Total number of expired cache entries removed by the janitor",
		},
	)

	// Domain

	HistoryReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_reads_total",
			Help: "Total number of view history reads by outcome",
		},
		[]string{"status"}, // ok, no_history, malformed
	)

	HistoryRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_records_total",
			Help: "Total number of meal views recorded into history tokens",
		},
	)

	FavouriteToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favourite_toggles_total",
			Help: "Total number of favourite toggles",
		},
		[]string{"action"}, // added, removed
	)

	StoreTxnConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "user_store_txn_conflicts_total",
			Help: "Total number of user store transactions retried after a conflict",
		},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "result"}, // operation: login, signup; result: success, failure, conflict
	)
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records one logical call to TheMealDB.
func RecordUpstreamRequest(endpoint, outcome string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordUpstreamRetry records a 429 backoff.
func RecordUpstreamRetry(endpoint string) {
	UpstreamRetries.WithLabelValues(endpoint).Inc()
}

// RecordCacheLookup records a hit or miss for cacheType.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCacheEvictions adds n evicted cache entries.
func RecordCacheEvictions(n int) {
	if n > 0 {
		CacheEvictions.Add(float64(n))
	}
}

// RecordHistoryRead records the outcome of reading a history token.
func RecordHistoryRead(status string) {
	HistoryReads.WithLabelValues(status).Inc()
}

// RecordHistoryView records a meal view written into a history token.
func RecordHistoryView() {
	HistoryRecords.Inc()
}

// RecordFavouriteToggle records a favourite toggle.
func RecordFavouriteToggle(added bool) {
	action := "removed"
	if added {
		action = "added"
	}
	FavouriteToggles.WithLabelValues(action).Inc()
}

// RecordStoreConflict records a retried user store transaction.
func RecordStoreConflict() {
	StoreTxnConflicts.Inc()
}

// RecordAuthAttempt records a login or signup outcome.
func RecordAuthAttempt(operation, result string) {
	AuthAttempts.WithLabelValues(operation, result).Inc()
}

// StatusLabel formats an HTTP status code as a label value.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
