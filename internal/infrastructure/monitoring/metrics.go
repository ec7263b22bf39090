// Package monitoring provides Prometheus metrics and the Gin
// middleware that feeds the HTTP series.
package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Template lifecycle metrics
	TemplateOps     *prometheus.CounterVec
	TemplatesPurged prometheus.Counter
	DraftsCreated   prometheus.Counter

	// Host platform metrics
	HostCalls  *prometheus.CounterVec
	HostErrors *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests int64
	TotalErrors   int64
	TotalDuration float64 // sum of all request durations
	RequestCount  int64   // count for averaging
}

// NewMetrics creates a new metrics collector. Each collector owns its
// registry, so servers can be constructed repeatedly in one process.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "templates_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "templates_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "templates_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "templates_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Template lifecycle metrics
		TemplateOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "templates_lifecycle_ops_total",
				Help: "Total number of template lifecycle operations",
			},
			[]string{"op", "outcome"},
		),
		TemplatesPurged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "templates_purged_total",
				Help: "Total number of trash entries dropped by retention purge",
			},
		),
		DraftsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "templates_drafts_created_total",
				Help: "Total number of article drafts instantiated from templates",
			},
		),

		// Host platform metrics
		HostCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "templates_host_calls_total",
				Help: "Total number of calls to the tracker platform",
			},
			[]string{"endpoint", "status"},
		),
		HostErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "templates_host_errors_total",
				Help: "Total number of failed tracker platform calls",
			},
			[]string{"endpoint"},
		),

		// System metrics
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "templates_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordTemplateOp records one lifecycle operation outcome
// ("ok" or "error").
func (m *Metrics) RecordTemplateOp(op, outcome string) {
	m.TemplateOps.WithLabelValues(op, outcome).Inc()
}

// AddTemplatesPurged adds to the purge counter.
func (m *Metrics) AddTemplatesPurged(count int) {
	if count > 0 {
		m.TemplatesPurged.Add(float64(count))
	}
}

// IncDraftsCreated increments the draft counter.
func (m *Metrics) IncDraftsCreated() {
	m.DraftsCreated.Inc()
}

// RecordHostCall records one call to the tracker platform.
func (m *Metrics) RecordHostCall(endpoint, status string) {
	m.HostCalls.WithLabelValues(endpoint, status).Inc()
}

// RecordHostError records one failed tracker platform call.
func (m *Metrics) RecordHostError(endpoint string) {
	m.HostErrors.WithLabelValues(endpoint).Inc()
}

// Registry exposes the collector's registry for the scrape endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Snapshot returns current aggregate values for the JSON status API.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
