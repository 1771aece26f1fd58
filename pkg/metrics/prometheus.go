// Package metrics provides Prometheus metrics for the engagement analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Ingest
	workbookUploads prometheus.Counter
	workbookErrors  *prometheus.CounterVec
	recordsIngested prometheus.Counter
	uploadDuration  prometheus.Histogram

	// Analysis
	chartsGenerated *prometheus.CounterVec
	chartErrors     *prometheus.CounterVec
	runDuration     prometheus.Histogram
	cohortSize      prometheus.Histogram
	exports         prometheus.Counter

	// Sessions
	activeSessions  prometheus.Gauge
	sessionsEvicted prometheus.Counter

	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global manager on a fresh registry with opts applied.
// It must run before GetRegistry is handed to an exposition handler.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "engage",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.workbookUploads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workbook_uploads_total",
		Help:      "Total number of workbooks loaded successfully",
	})

	m.workbookErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "workbook_errors_total",
			Help:      "Total number of rejected workbooks by error code",
		},
		[]string{"code"},
	)

	m.recordsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_ingested_total",
		Help:      "Total number of engagement records read from workbooks",
	})

	m.uploadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workbook_load_duration_milliseconds",
		Help:      "Time to parse and ingest a workbook in milliseconds",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	m.chartsGenerated = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "charts_generated_total",
			Help:      "Total number of charts built by kind",
		},
		[]string{"kind"},
	)

	m.chartErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "chart_errors_total",
			Help:      "Total number of charts that could not be built by kind and code",
		},
		[]string{"kind", "code"},
	)

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chart_run_duration_milliseconds",
		Help:      "Time to filter a cohort and build the requested charts in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cohortSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cohort_records",
		Help:      "Number of records left after cohort filtering",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
	})

	m.exports = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_total",
		Help:      "Total number of filtered data exports",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of open analysis sessions",
	})

	m.sessionsEvicted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_evicted_total",
		Help:      "Total number of sessions dropped after being idle",
	})

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and error type",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordWorkbookUpload counts a loaded workbook and its records.
func RecordWorkbookUpload(records int) {
	globalManager.workbookUploads.Inc()
	globalManager.recordsIngested.Add(float64(records))
}

// RecordWorkbookError counts a rejected workbook.
func RecordWorkbookError(code string) {
	globalManager.workbookErrors.WithLabelValues(code).Inc()
}

// RecordWorkbookLoadDuration records workbook parse and ingest time.
func RecordWorkbookLoadDuration(ms float64) {
	globalManager.uploadDuration.Observe(ms)
}

// RecordChartGenerated counts a built chart.
func RecordChartGenerated(kind string) {
	globalManager.chartsGenerated.WithLabelValues(kind).Inc()
}

// RecordChartError counts a chart that failed.
func RecordChartError(kind, code string) {
	globalManager.chartErrors.WithLabelValues(kind, code).Inc()
}

// RecordRunDuration records the time of one chart run.
func RecordRunDuration(ms float64) {
	globalManager.runDuration.Observe(ms)
}

// RecordCohortSize records the number of records left after filtering.
func RecordCohortSize(records int) {
	globalManager.cohortSize.Observe(float64(records))
}

// RecordExport counts a data export.
func RecordExport() {
	globalManager.exports.Inc()
}

// UpdateActiveSessions sets the number of open sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionEvicted counts an idle session being dropped.
func RecordSessionEvicted() {
	globalManager.sessionsEvicted.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
