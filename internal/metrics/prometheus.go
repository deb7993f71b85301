package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linesdesk_api_calls_total",
			Help: "Total number of odds API calls",
		},
		[]string{"league", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linesdesk_api_call_duration_seconds",
			Help:    "Duration of odds API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"league"},
	)

	APIRequestsRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linesdesk_api_requests_remaining",
			Help: "Remaining odds API request quota as reported by the provider",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linesdesk_cache_hits_total",
			Help: "Total number of display odds cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linesdesk_cache_misses_total",
			Help: "Total number of display odds cache misses",
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linesdesk_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linesdesk_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	EventsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linesdesk_events_upserted_total",
			Help: "Total number of events written, by whether they were newly created",
		},
		[]string{"league", "created"},
	)

	// Enrichment metrics
	EnrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linesdesk_enrichment_total",
			Help: "Prediction enrichment attempts by result",
		},
		[]string{"status"},
	)

	PredictionsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linesdesk_predictions_pruned_total",
			Help: "Total number of predictions deleted for past events",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linesdesk_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linesdesk_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linesdesk_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordAPICall records an odds API call
func RecordAPICall(league, status string, duration float64) {
	APICallsTotal.WithLabelValues(league, status).Inc()
	APICallDuration.WithLabelValues(league).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordEventUpsert records one event write
func RecordEventUpsert(league string, created bool) {
	label := "false"
	if created {
		label = "true"
	}
	EventsUpserted.WithLabelValues(league, label).Inc()
}

// RecordEnrichment records the result of one enrichment attempt
func RecordEnrichment(status string) {
	EnrichmentTotal.WithLabelValues(status).Inc()
}

// RecordPruned records pruned predictions
func RecordPruned(count int64) {
	PredictionsPruned.Add(float64(count))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
