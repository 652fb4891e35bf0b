package metrics

import (
	"fmt"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the calculator records into.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Calculation metrics
	simulations       *prometheus.CounterVec
	simulationLatency prometheus.Histogram
	sweeps            prometheus.Counter
	sweepRows         prometheus.Counter
	sweepDuration     prometheus.Histogram
	profitableDays    *prometheus.GaugeVec
	bestROI           *prometheus.GaugeVec
	networkPoints     prometheus.Gauge
	userShare         prometheus.Gauge

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository metrics
	repositoryRecordsTotal  prometheus.Gauge
	repositoryFDVCount      prometheus.Gauge
	repositoryRecordsPerFDV *prometheus.GaugeVec
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager from opts on a fresh registry, dropping
// everything recorded so far. Call it before any recording starts.
func Init(opts ...Option) (err error) {
	registry := prometheus.NewRegistry()
	defer func() {
		// promauto panics on invalid names, labels and buckets.
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidOptions, r)
		}
	}()
	m := NewManager(append(slices.Clone(opts), WithPrometheusRegistry(registry))...)
	globalManager = m
	customRegistry = registry
	return nil
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ytairdrop",
		subsystem:        "calculator",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		customLabels:     make(map[string]string),
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.simulations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "simulations_total",
		Help: "Single simulation runs by points mode",
	}, []string{"mode"})
	m.simulationLatency = m.histogram("simulation_latency_milliseconds", "Latency of a single simulation run")
	m.sweeps = m.counter("sweeps_total", "Completed entry-day sweeps")
	m.sweepRows = m.counter("sweep_rows_total", "Sweep rows evaluated across all runs")
	m.sweepDuration = m.histogram("sweep_duration_milliseconds", "Wall time of a full entry-day sweep")
	m.profitableDays = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "profitable_entry_days",
		Help: "Entry days with positive ROI in the last sweep, by FDV",
	}, []string{"fdv"})
	m.bestROI = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "best_roi",
		Help: "Best ROI found by the last sweep, by FDV",
	}, []string{"fdv"})
	m.networkPoints = m.gauge("network_points", "Network points of the last run")
	m.userShare = m.gauge("user_share", "User share of network points in the last simulation")

	m.queueSize = m.gauge("queue_size", "Entry-day jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued entry-day jobs")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size over capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Entry-day jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Entry-day jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Rejected enqueues")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency")

	m.workerCount = m.gauge("worker_count", "Workers in the sweep pool")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently evaluating a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to evaluate one entry day")
	m.workerErrors = m.counter("worker_errors_total", "Jobs that failed to evaluate")

	m.repositoryRecordsTotal = m.gauge("repository_records_total", "Sweep rows held in the ranked store")
	m.repositoryFDVCount = m.gauge("repository_fdv_count", "FDV rankings held in the store")
	m.repositoryRecordsPerFDV = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "repository_records_per_fdv",
		Help: "Sweep rows per FDV ranking",
	}, []string{"fdv"})
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Ranked store upsert latency")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Ranked store query latency")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "errors_by_component_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})
}

func fdvLabel(fdv float64) string {
	return fmt.Sprintf("%.0f", fdv)
}

// RecordSimulation counts a finished simulation and records its headline numbers.
func RecordSimulation(mode string, latencyMs, networkPoints, userShare float64) {
	globalManager.simulations.WithLabelValues(mode).Inc()
	globalManager.simulationLatency.Observe(latencyMs)
	globalManager.networkPoints.Set(networkPoints)
	globalManager.userShare.Set(userShare)
}

// RecordSweepRows adds evaluated rows to the running total.
func RecordSweepRows(n int) {
	globalManager.sweepRows.Add(float64(n))
}

// RecordSweepDuration counts a finished sweep and its wall time.
func RecordSweepDuration(durationMs, networkPoints float64) {
	globalManager.sweeps.Inc()
	globalManager.sweepDuration.Observe(durationMs)
	globalManager.networkPoints.Set(networkPoints)
}

// UpdateSweepSummary records the per-FDV outcome of a sweep.
func UpdateSweepSummary(fdv float64, profitableDays int, bestROI float64) {
	globalManager.profitableDays.WithLabelValues(fdvLabel(fdv)).Set(float64(profitableDays))
	globalManager.bestROI.WithLabelValues(fdvLabel(fdv)).Set(bestROI)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets queue size over capacity.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a delivered job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time spent on one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateRepositoryRecordsTotal sets the number of stored rows.
func UpdateRepositoryRecordsTotal(count int) {
	globalManager.repositoryRecordsTotal.Set(float64(count))
}

// UpdateRepositoryFDVCount sets the number of FDV rankings.
func UpdateRepositoryFDVCount(count int) {
	globalManager.repositoryFDVCount.Set(float64(count))
}

// UpdateRepositoryRecordsPerFDV sets the row count of one ranking.
func UpdateRepositoryRecordsPerFDV(fdv float64, count int) {
	globalManager.repositoryRecordsPerFDV.WithLabelValues(fdvLabel(fdv)).Set(float64(count))
}

// RecordRepositoryUpdateLatency records upsert latency in milliseconds.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records query latency in milliseconds.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry the global manager records into.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile snapshots the global registry in the node-exporter textfile
// format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
