// Package metrics provides Prometheus metrics for the demandgen simulator service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the simulator service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Simulation Metrics - the tick loop and what it produces
	ticksTotal         prometheus.Counter
	tickDelay          prometheus.Histogram
	tickDuration       prometheus.Histogram
	snapshotSequence   prometheus.Gauge
	metricValue        *prometheus.GaugeVec
	successRate        prometheus.Gauge
	projectionDuration prometheus.Histogram
	projectionHits     prometheus.Counter
	reportsTotal       prometheus.Counter

	// Fan-out Metrics - subscribers of the snapshot stream
	hubSubscribers   prometheus.Gauge
	hubPublished     prometheus.Counter
	hubDropped       prometheus.Counter
	websocketClients prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "demandgen",
		subsystem:        "simulator",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: labels, Buckets: buckets,
		})
	}

	// Simulation Metrics
	m.ticksTotal = counter("ticks_total", "Total number of simulator ticks applied")
	m.tickDelay = histogram("tick_delay_milliseconds",
		"Jittered delay scheduled before each tick in milliseconds",
		[]float64{500, 1000, 1500, 2000, 2250, 2500, 2750, 3000, 4000, 5000})
	m.tickDuration = histogram("tick_duration_milliseconds",
		"Time spent computing a tick, projecting and publishing it in milliseconds", m.histogramBuckets)
	m.snapshotSequence = gauge("snapshot_sequence", "Sequence number of the live snapshot")
	m.metricValue = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "metric_value",
		Help: "Current simulated value per dashboard field", ConstLabels: labels,
	}, []string{"field"})
	m.successRate = gauge("success_rate", "Newest success-rate sample in the sliding window")
	m.projectionDuration = histogram("projection_duration_milliseconds",
		"Time spent projecting the success-rate history onto chart geometry in milliseconds", m.histogramBuckets)
	m.projectionHits = counter("projection_cache_hits_total", "Projections served from the memoized geometry")
	m.reportsTotal = counter("reports_total", "Digests written by the scheduled reporter")

	// Fan-out Metrics
	m.hubSubscribers = gauge("hub_subscribers", "Current number of snapshot subscribers")
	m.hubPublished = counter("hub_published_total", "Snapshots delivered to subscribers")
	m.hubDropped = counter("hub_dropped_total", "Snapshots dropped because a subscriber buffer was full")
	m.websocketClients = gauge("websocket_clients", "Currently connected websocket clients")

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method", ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", ConstLabels: labels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	// Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "errors_by_component_total",
		Help: "Errors by component and type", ConstLabels: labels,
	}, []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "errors_by_type_total",
		Help: "Errors by type and severity", ConstLabels: labels,
	}, []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "errors_by_endpoint_total",
		Help: "HTTP errors by endpoint, method and type", ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	// System Performance Metrics
	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "Current memory usage in bytes")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Current number of goroutines")
	m.systemGCPauseTime = histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordTick counts a tick and records how long it took and what it produced.
func (m *Manager) RecordTick(sequence uint64, durationMs float64) {
	if !m.enabled {
		return
	}
	m.ticksTotal.Inc()
	m.tickDuration.Observe(durationMs)
	m.snapshotSequence.Set(float64(sequence))
}

// RecordTickDelay records the delay scheduled before the next tick.
func (m *Manager) RecordTickDelay(delayMs float64) {
	if !m.enabled {
		return
	}
	m.tickDelay.Observe(delayMs)
}

// UpdateMetricValue sets the current value of a dashboard field.
func (m *Manager) UpdateMetricValue(field string, value float64) {
	if !m.enabled {
		return
	}
	m.metricValue.WithLabelValues(field).Set(value)
}

// UpdateSuccessRate sets the newest success-rate sample.
func (m *Manager) UpdateSuccessRate(rate float64) {
	if !m.enabled {
		return
	}
	m.successRate.Set(rate)
}

// RecordProjection records projection latency and whether the cache served it.
func (m *Manager) RecordProjection(durationMs float64, cached bool) {
	if !m.enabled {
		return
	}
	m.projectionDuration.Observe(durationMs)
	if cached {
		m.projectionHits.Inc()
	}
}

// RecordReport counts a scheduled digest.
func (m *Manager) RecordReport() {
	if !m.enabled {
		return
	}
	m.reportsTotal.Inc()
}

// UpdateHubSubscribers sets the number of snapshot subscribers.
func (m *Manager) UpdateHubSubscribers(count int) {
	if !m.enabled {
		return
	}
	m.hubSubscribers.Set(float64(count))
}

// RecordHubPublished counts delivered snapshots.
func (m *Manager) RecordHubPublished(n int) {
	if !m.enabled {
		return
	}
	m.hubPublished.Add(float64(n))
}

// RecordHubDropped counts dropped snapshots.
func (m *Manager) RecordHubDropped(n int) {
	if !m.enabled {
		return
	}
	m.hubDropped.Add(float64(n))
}

// AddWebsocketClients adjusts the connected websocket client gauge by delta.
func (m *Manager) AddWebsocketClients(delta int) {
	if !m.enabled {
		return
	}
	m.websocketClients.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystem records memory, goroutine and GC pause figures.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Global helpers delegate to the process-wide manager.

// RecordTick counts a tick on the global manager.
func RecordTick(sequence uint64, durationMs float64) { globalManager.RecordTick(sequence, durationMs) }

// RecordTickDelay records a scheduled delay on the global manager.
func RecordTickDelay(delayMs float64) { globalManager.RecordTickDelay(delayMs) }

// UpdateMetricValue sets a field value on the global manager.
func UpdateMetricValue(field string, value float64) { globalManager.UpdateMetricValue(field, value) }

// UpdateSuccessRate sets the newest success rate on the global manager.
func UpdateSuccessRate(rate float64) { globalManager.UpdateSuccessRate(rate) }

// RecordProjection records a projection on the global manager.
func RecordProjection(durationMs float64, cached bool) {
	globalManager.RecordProjection(durationMs, cached)
}

// RecordReport counts a digest on the global manager.
func RecordReport() { globalManager.RecordReport() }

// UpdateHubSubscribers sets the subscriber gauge on the global manager.
func UpdateHubSubscribers(count int) { globalManager.UpdateHubSubscribers(count) }

// RecordHubPublished counts deliveries on the global manager.
func RecordHubPublished(n int) { globalManager.RecordHubPublished(n) }

// RecordHubDropped counts drops on the global manager.
func RecordHubDropped(n int) { globalManager.RecordHubDropped(n) }

// AddWebsocketClients adjusts the websocket gauge on the global manager.
func AddWebsocketClients(delta int) { globalManager.AddWebsocketClients(delta) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByComponent records a component error on the global manager.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByType records a typed error on the global manager.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint records an endpoint error on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystem records system figures on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memoryBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
