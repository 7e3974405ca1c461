// Package metrics provides Prometheus metrics for the lead dashboard service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector of the dashboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline
	pipelineRuns          *prometheus.CounterVec
	pipelineDuration      prometheus.Histogram
	renderDuration        *prometheus.HistogramVec
	staleReloadsDiscarded prometheus.Counter
	leadsInStore          prometheus.Gauge
	undatedLeads          prometheus.Gauge
	liveHotLeads          prometheus.Gauge

	// Collaborators
	collaboratorFetchDuration *prometheus.HistogramVec
	collaboratorErrors        *prometheus.CounterVec
	collaboratorRetries       *prometheus.CounterVec

	// Trigger queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      *prometheus.CounterVec
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	triggersCoalesced  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	refreshRejected     prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton bound to customRegistry

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared by /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global manager on a fresh custom registry. Call it
// once at startup, before anything records or scrapes.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// RefreshInterval returns how often the process should refresh its gauges.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "leaddash",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		// Collectors still exist so recording is safe, but nothing gathers them.
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, Buckets: m.histogramBuckets, ConstLabels: m.customLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.pipelineRuns = auto.NewCounterVec(m.counterOpts("pipeline_runs_total", "Aggregation pipeline runs by trigger and outcome"), []string{"trigger", "outcome"})
	m.pipelineDuration = auto.NewHistogram(m.histogramOpts("pipeline_duration_milliseconds", "Aggregation and render time per pipeline run"))
	m.renderDuration = auto.NewHistogramVec(m.histogramOpts("render_duration_milliseconds", "Chart render time"), []string{"chart"})
	m.staleReloadsDiscarded = auto.NewCounter(m.counterOpts("stale_reloads_discarded_total", "Reload results dropped because a newer reload started"))
	m.leadsInStore = auto.NewGauge(m.gaugeOpts("leads_in_store", "Leads held in the working set"))
	m.undatedLeads = auto.NewGauge(m.gaugeOpts("undated_leads", "Leads whose createdAt did not parse"))
	m.liveHotLeads = auto.NewGauge(m.gaugeOpts("live_hot_leads", "Hot leads reported by the real-time endpoint"))

	m.collaboratorFetchDuration = auto.NewHistogramVec(m.histogramOpts("collaborator_fetch_duration_milliseconds", "Collaborator request time including retries"), []string{"endpoint"})
	m.collaboratorErrors = auto.NewCounterVec(m.counterOpts("collaborator_errors_total", "Collaborator requests that failed after retries"), []string{"endpoint"})
	m.collaboratorRetries = auto.NewCounterVec(m.counterOpts("collaborator_retries_total", "Collaborator request retries"), []string{"endpoint"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("trigger_queue_size", "Pending triggers"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("trigger_queue_capacity", "Trigger queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("trigger_queue_utilization_ratio", "Pending triggers divided by capacity"))
	m.queueEnqueued = auto.NewCounterVec(m.counterOpts("triggers_enqueued_total", "Triggers accepted by kind"), []string{"kind"})
	m.queueDequeued = auto.NewCounter(m.counterOpts("triggers_dequeued_total", "Triggers handed to the loop"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("trigger_enqueue_errors_total", "Triggers rejected by the queue"))
	m.triggersCoalesced = auto.NewCounterVec(m.counterOpts("triggers_coalesced_total", "Triggers dropped because one of the same kind was pending"), []string{"kind"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration"), []string{"endpoint", "method", "status_code"})
	m.refreshRejected = auto.NewCounter(m.counterOpts("refresh_rate_limited_total", "Manual refresh requests rejected by the rate limiter"))

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds", "Latency of failed operations"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Goroutine count"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause"))
}

// Pipeline

// RecordPipelineRun counts one pipeline run; outcome is ok, failed or stale.
func RecordPipelineRun(trigger, outcome string) {
	globalManager.pipelineRuns.WithLabelValues(trigger, outcome).Inc()
}

// RecordPipelineDuration records aggregation plus render time.
func RecordPipelineDuration(ms float64) { globalManager.pipelineDuration.Observe(ms) }

// RecordRenderDuration records one chart render.
func RecordRenderDuration(chart string, ms float64) {
	globalManager.renderDuration.WithLabelValues(chart).Observe(ms)
}

// RecordStaleReload counts a discarded out-of-order reload.
func RecordStaleReload() { globalManager.staleReloadsDiscarded.Inc() }

// UpdateLeadsInStore sets the working set size.
func UpdateLeadsInStore(n int) { globalManager.leadsInStore.Set(float64(n)) }

// UpdateUndatedLeads sets the count of leads with unparseable createdAt.
func UpdateUndatedLeads(n int) { globalManager.undatedLeads.Set(float64(n)) }

// UpdateLiveHotLeads sets the latest real-time hot lead count.
func UpdateLiveHotLeads(n int) { globalManager.liveHotLeads.Set(float64(n)) }

// Collaborators

// RecordCollaboratorFetch records one collaborator call.
func RecordCollaboratorFetch(endpoint string, ms float64) {
	globalManager.collaboratorFetchDuration.WithLabelValues(endpoint).Observe(ms)
}

// RecordCollaboratorError counts a collaborator call that failed for good.
func RecordCollaboratorError(endpoint string) {
	globalManager.collaboratorErrors.WithLabelValues(endpoint).Inc()
}

// RecordCollaboratorRetry counts one retry.
func RecordCollaboratorRetry(endpoint string) {
	globalManager.collaboratorRetries.WithLabelValues(endpoint).Inc()
}

// Trigger queue

// UpdateQueueSize sets the number of pending triggers.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an accepted trigger.
func RecordQueueEnqueue(kind string) { globalManager.queueEnqueued.WithLabelValues(kind).Inc() }

// RecordQueueDequeue counts a trigger handed to the loop.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a rejected trigger.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordTriggerCoalesced counts a duplicate pending trigger.
func RecordTriggerCoalesced(kind string) {
	globalManager.triggersCoalesced.WithLabelValues(kind).Inc()
}

// HTTP

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRefreshRateLimited counts a throttled manual refresh.
func RecordRefreshRateLimited() { globalManager.refreshRejected.Inc() }

// Errors

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Snapshot gathers the custom registry and sums each counter and gauge family.
// Histograms report their sample count.
func Snapshot() (map[string]float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGather, err)
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		var total float64
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				total += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				total += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = total
	}
	return out, nil
}
