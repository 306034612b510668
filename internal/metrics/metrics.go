package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_search_bot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_search_bot_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_db_queries_total",
			Help: "Total number of catalog store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_search_bot_db_query_duration_seconds",
			Help:    "Catalog store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_search_bot_db_connections_open",
			Help: "Number of open catalog store connections",
		},
	)

	CatalogRecordsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_search_bot_catalog_records",
			Help: "Number of indexed media records by type",
		},
		[]string{"media_type"},
	)
)

// Indexer metrics
var (
	IngestOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_ingest_outcomes_total",
			Help: "Total number of ingestion attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	BackfillRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_search_bot_backfill_runs_total",
			Help: "Total number of history backfill runs",
		},
	)

	BackfillDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_search_bot_backfill_duration_seconds",
			Help:    "Duration of history backfill runs in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600, 14400},
		},
	)

	BackfillsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_search_bot_backfills_running",
			Help: "Number of history backfills currently running",
		},
	)
)

// Search session metrics
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_search_bot_sessions_active",
			Help: "Number of live paginated search sessions",
		},
	)

	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_search_bot_sessions_created_total",
			Help: "Total number of search sessions created",
		},
	)

	SessionsEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_sessions_ended_total",
			Help: "Total number of search sessions ended by reason",
		},
		[]string{"reason"}, // "closed", "timeout"
	)

	CallbackResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_callback_results_total",
			Help: "Total number of button-press callbacks by result",
		},
		[]string{"result"}, // "ok", "expired", "denied", "error"
	)
)

// Transport gateway metrics
var (
	TransportCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_transport_calls_total",
			Help: "Total number of outbound transport API calls",
		},
		[]string{"method", "status"},
	)

	TransportCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_search_bot_transport_call_duration_seconds",
			Help:    "Outbound transport API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	TransportRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_transport_retries_total",
			Help: "Total number of retried transport API calls",
		},
		[]string{"method"},
	)

	UpdatesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_search_bot_updates_received_total",
			Help: "Total number of inbound updates by kind",
		},
		[]string{"kind"}, // "message", "callback", "other"
	)
)
