// Package metrics provides Prometheus metrics for the EEG screening service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Sample-count buckets span single values up to several minutes at 256 Hz.
var sampleBuckets = []float64{1, 10, 64, 256, 384, 1024, 4096, 16384, 65536}

// Manager manages all Prometheus metrics for the screening service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Screening outcomes
	screenings        *prometheus.CounterVec
	parseErrors       prometheus.Counter
	samplesPerRequest prometheus.Histogram
	probability       prometheus.Histogram
	featureSkips      prometheus.Counter

	// Inference
	inferenceLatency *prometheus.HistogramVec
	inferenceErrors  prometheus.Counter
	plotRenders      prometheus.Counter
	plotErrors       prometheus.Counter

	// Inference pool
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueues          prometheus.Counter
	queueDequeues          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram
	workerCount            prometheus.Gauge
	workerBusy             prometheus.Gauge
	workerErrors           prometheus.Counter
	workerLatency          prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eeg",
		subsystem:        "screening",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels, Buckets: buckets,
		})
	}
	counterVec := func(name, help string, keys ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels,
		}, keys)
	}
	histogramVec := func(name, help string, buckets []float64, keys ...string) *prometheus.HistogramVec {
		return auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: labels, Buckets: buckets,
		}, keys)
	}

	m.screenings = counterVec("screenings_total", "Completed screenings by outcome label", "outcome")
	m.parseErrors = counter("parse_errors_total", "Submissions rejected because the sample text did not parse")
	m.samplesPerRequest = histogram("samples_per_request", "Number of samples per accepted submission", sampleBuckets)
	m.probability = histogram("probability", "Distribution of predicted seizure probabilities", prometheus.LinearBuckets(0.1, 0.1, 10))
	m.featureSkips = counter("feature_skips_total", "Screenings too short for band-pass feature extraction")

	m.inferenceLatency = histogramVec("inference_latency_milliseconds", "Predictor latency in milliseconds", m.histogramBuckets, "predictor")
	m.inferenceErrors = counter("inference_errors_total", "Predictor failures")
	m.plotRenders = counter("plot_renders_total", "Waveform plots rendered")
	m.plotErrors = counter("plot_errors_total", "Waveform plot render failures")

	m.queueSize = gauge("queue_size", "Inference jobs waiting for a worker")
	m.queueCapacity = gauge("queue_capacity", "Maximum inference jobs that may wait")
	m.queueUtilization = gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueues = counter("queue_enqueue_total", "Inference jobs accepted by the queue")
	m.queueDequeues = counter("queue_dequeue_total", "Inference jobs handed to workers")
	m.queueEnqueueErrors = counter("queue_enqueue_errors_total", "Inference jobs rejected by the queue")
	m.queueProcessingLatency = histogram("queue_processing_latency_milliseconds", "Time spent in Enqueue", m.histogramBuckets)
	m.workerCount = gauge("worker_count", "Configured inference workers")
	m.workerBusy = gauge("worker_busy_count", "Workers currently running a prediction")
	m.workerErrors = counter("worker_errors_total", "Jobs that finished with an error")
	m.workerLatency = histogram("worker_processing_latency_milliseconds", "Time from dequeue to reply", m.histogramBuckets)

	m.httpRequests = counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorsByType = counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")
	m.errorLatency = histogramVec("error_latency_milliseconds", "Latency of failed operations", m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Live goroutines")
	m.systemGCPauseTime = histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordScreening counts a completed screening and its probability.
func RecordScreening(outcome string, samples int, probability float64) {
	globalManager.screenings.WithLabelValues(outcome).Inc()
	globalManager.samplesPerRequest.Observe(float64(samples))
	globalManager.probability.Observe(probability)
}

// RecordParseError counts a rejected submission.
func RecordParseError() {
	globalManager.parseErrors.Inc()
}

// RecordFeatureSkip counts a screening that was too short for features.
func RecordFeatureSkip() {
	globalManager.featureSkips.Inc()
}

// RecordInferenceLatency records predictor latency in milliseconds.
func RecordInferenceLatency(predictor string, latencyMs float64) {
	globalManager.inferenceLatency.WithLabelValues(predictor).Observe(latencyMs)
}

// RecordInferenceError counts a predictor failure.
func RecordInferenceError() {
	globalManager.inferenceErrors.Inc()
}

// RecordPlotRender counts a rendered waveform plot.
func RecordPlotRender() {
	globalManager.plotRenders.Inc()
}

// RecordPlotError counts a failed waveform plot.
func RecordPlotError() {
	globalManager.plotErrors.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records time spent in Enqueue.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerBusy adjusts the busy worker gauge by delta.
func AddWorkerBusy(delta int) {
	globalManager.workerBusy.Add(float64(delta))
}

// RecordWorkerError counts a job that finished with an error.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records dequeue-to-reply latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error for a specific component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for a specific HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}
