// Package metrics provides Prometheus metrics for the fairway matching service.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Profile ingestion
	profileUpdatesReceived  prometheus.Counter
	profileUpdatesDuplicate prometheus.Counter
	profileUpdatesApplied   prometheus.Counter
	profileUpdatesRejected  *prometheus.CounterVec
	profileApplyLatency     prometheus.Histogram

	// Matchmaking
	compatibilityComputed prometheus.Counter
	rankingLatency        prometheus.Histogram
	discoverResultSize    prometheus.Histogram
	matchRequests         *prometheus.CounterVec

	// Repository
	profilesTotal             prometheus.Gauge
	matchRequestsTotal        prometheus.Gauge
	repositoryUpdateLatency   prometheus.Histogram
	repositoryQueryLatency    prometheus.Histogram
	repositorySnapshotLatency prometheus.Histogram
	repositorySnapshotLast    prometheus.Gauge
	repositorySnapshotCount   prometheus.Counter

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fairway",
		subsystem:        "matching",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.profileUpdatesReceived = m.counter("profile_updates_received_total",
		"Profile submissions accepted onto the ingestion queue")
	m.profileUpdatesDuplicate = m.counter("profile_updates_duplicate_total",
		"Profile submissions dropped because their update id was already seen")
	m.profileUpdatesApplied = m.counter("profile_updates_applied_total",
		"Profile updates written to the profile store")
	m.profileUpdatesRejected = m.counterVec("profile_updates_rejected_total",
		"Profile updates rejected by workers", "reason")
	m.profileApplyLatency = m.histogram("profile_apply_latency_milliseconds",
		"Time from submission to store write in milliseconds", m.histogramBuckets)

	m.compatibilityComputed = m.counter("compatibility_computations_total",
		"Pairwise compatibility scores computed")
	m.rankingLatency = m.histogram("ranking_latency_milliseconds",
		"Time to score and order a candidate list in milliseconds", m.histogramBuckets)
	m.discoverResultSize = m.histogram("discover_result_size",
		"Number of candidates returned by discover",
		[]float64{0, 1, 5, 10, 20, 50, 100, 250})
	m.matchRequests = m.counterVec("match_requests_total",
		"Match request operations by outcome", "outcome")

	m.profilesTotal = m.gauge("profiles_total", "Profiles held by the profile store")
	m.matchRequestsTotal = m.gauge("match_requests_stored", "Match requests held by the match store")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds",
		"Repository write latency in milliseconds", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds",
		"Repository read latency in milliseconds", m.histogramBuckets)
	m.repositorySnapshotLatency = m.histogram("repository_snapshot_duration_milliseconds",
		"Repository snapshot duration in milliseconds", m.histogramBuckets)
	m.repositorySnapshotLast = m.gauge("repository_snapshot_last_unix",
		"Unix timestamp of the last repository snapshot")
	m.repositorySnapshotCount = m.counter("repository_snapshot_count_total",
		"Repository snapshots taken")

	m.queueSize = m.gauge("queue_size", "Profile updates waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Profile updates enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Profile updates dequeued")
	m.queueRejected = m.counter("queue_enqueue_errors_total", "Enqueue attempts rejected by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "Configured ingestion workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently applying an update")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time a worker spends on one update in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Updates a worker failed to apply")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Most recent GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordProfileUpdateReceived counts a submission accepted for ingestion.
func RecordProfileUpdateReceived() { globalManager.profileUpdatesReceived.Inc() }

// RecordProfileUpdateDuplicate counts a submission whose update id was already seen.
func RecordProfileUpdateDuplicate() { globalManager.profileUpdatesDuplicate.Inc() }

// RecordProfileUpdateApplied counts a profile written to the store.
func RecordProfileUpdateApplied() { globalManager.profileUpdatesApplied.Inc() }

// RecordProfileUpdateRejected counts an update a worker refused, by reason.
func RecordProfileUpdateRejected(reason string) {
	globalManager.profileUpdatesRejected.WithLabelValues(reason).Inc()
}

// RecordProfileApplyLatency records submission-to-write latency.
func RecordProfileApplyLatency(latencyMs float64) {
	globalManager.profileApplyLatency.Observe(latencyMs)
}

// RecordCompatibilityComputed adds n computed pair scores.
func RecordCompatibilityComputed(n int) { globalManager.compatibilityComputed.Add(float64(n)) }

// RecordRankingLatency records how long a discover ranking took.
func RecordRankingLatency(latencyMs float64) { globalManager.rankingLatency.Observe(latencyMs) }

// RecordDiscoverResultSize records the number of candidates returned.
func RecordDiscoverResultSize(n int) { globalManager.discoverResultSize.Observe(float64(n)) }

// RecordMatchRequest counts a match request operation, e.g. "created" or "conflict".
func RecordMatchRequest(outcome string) { globalManager.matchRequests.WithLabelValues(outcome).Inc() }

// UpdateProfilesTotal sets the stored profile count.
func UpdateProfilesTotal(count int) { globalManager.profilesTotal.Set(float64(count)) }

// UpdateMatchRequestsTotal sets the stored match request count.
func UpdateMatchRequestsTotal(count int) { globalManager.matchRequestsTotal.Set(float64(count)) }

// RecordRepositoryUpdateLatency records repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositorySnapshot records a completed snapshot of store counts.
func RecordRepositorySnapshot(duration time.Duration) {
	globalManager.repositorySnapshotLatency.Observe(float64(duration.Microseconds()) / 1000)
	globalManager.repositorySnapshotLast.Set(float64(time.Now().Unix()))
	globalManager.repositorySnapshotCount.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueRejected.Inc() }

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) { globalManager.workerActiveCount.Add(float64(delta)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// CollectSystemStats samples memory, goroutine and GC figures from the runtime.
func CollectSystemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		pause := ms.PauseNs[(ms.NumGC+255)%256]
		globalManager.systemGCPauseTime.Observe(float64(pause) / float64(time.Millisecond))
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
