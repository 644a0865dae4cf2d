// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package metrics provides Prometheus instrumentation for the
// personalization pipeline:
//   - tier aggregation latency and per-tier fetch failures
//   - enrichment batch counts (the N+1 countermeasure is observable here:
//     batches should track aggregations, not candidates)
//   - panel controller fetches, cancellations and retries
//   - preference persistence failures (fire-and-forget writes)
//   - API endpoint latency and throughput
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Aggregation metrics
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "picks_aggregation_duration_seconds",
			Help:    "Duration of tier aggregation calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TierFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picks_tier_fetch_failures_total",
			Help: "Total number of tier fetches that failed and were skipped",
		},
		[]string{"tier"},
	)

	// Enrichment metrics
	EnrichmentBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picks_enrichment_batches_total",
			Help: "Total number of batched performer lookups issued",
		},
	)

	EnrichmentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picks_enrichment_failures_total",
			Help: "Total number of batched performer lookups that failed",
		},
	)

	// Panel controller metrics
	PanelFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_fetches_total",
			Help: "Total number of panel fetches started",
		},
		[]string{"panel", "trigger"}, // trigger: "expand", "retry", "key_change"
	)

	PanelFetchCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "panel_fetch_cancellations_total",
			Help: "Total number of in-flight panel fetches superseded by a newer fetch",
		},
	)

	PanelStaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "panel_stale_results_total",
			Help: "Total number of late fetch resolutions discarded by token comparison",
		},
	)

	// Preference metrics
	PreferencePersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preferences_persist_failures_total",
			Help: "Total number of ignored preference persistence failures",
		},
	)

	// Catalog store metrics
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Total number of catalog store query errors",
		},
		[]string{"query"},
	)

	CatalogBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_breaker_open",
			Help: "Whether the catalog circuit breaker is currently open (1) or closed (0)",
		},
	)

	// API endpoint metrics
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCatalogQuery records one catalog query, successful or not.
func RecordCatalogQuery(query string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(query).Inc()
	}
}
