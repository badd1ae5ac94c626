// Package metrics provides Prometheus metrics for the courtside scorekeeping service.
package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the courtside service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scorekeeping
	pointsRecorded    *prometheus.CounterVec
	tapsRejected      *prometheus.CounterVec
	undos             *prometheus.CounterVec
	setsCompleted     *prometheus.CounterVec
	matchesFinished   *prometheus.CounterVec
	activeMatches     prometheus.Gauge
	commandsDuplicate prometheus.Counter
	commandLatency    *prometheus.HistogramVec

	// Persistence
	persistQueueSize     prometheus.Gauge
	persistQueueCapacity prometheus.Gauge
	persistWrites        prometheus.Counter
	persistCoalesced     prometheus.Counter
	persistErrors        prometheus.Counter
	persistLatency       prometheus.Histogram
	persistWorkers       prometheus.Gauge
	storedMatches        prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

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

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
// A disabled manager records into a detached registry, so nothing it
// collects is exported.
func NewManager(opts ...Option) *Manager {
	m := configure(opts)
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func configure(opts []Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "scorekeeper",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

var validName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validate reports options that would make prometheus panic on
// registration.
func (m *Manager) validate() error {
	for _, n := range []string{m.namespace, m.subsystem, m.metricPrefix} {
		if n != "" && !validName.MatchString(n) {
			return fmt.Errorf("%w: invalid name %q", ErrInvalidOption, n)
		}
	}
	for label := range m.customLabels {
		if !validName.MatchString(label) || strings.HasPrefix(label, "__") {
			return fmt.Errorf("%w: invalid label %q", ErrInvalidOption, label)
		}
	}
	for i := 1; i < len(m.histogramBuckets); i++ {
		if m.histogramBuckets[i] <= m.histogramBuckets[i-1] {
			return fmt.Errorf("%w: buckets must increase, got %v", ErrInvalidOption, m.histogramBuckets)
		}
	}
	return nil
}

// Init replaces the global manager with one built from opts on a fresh
// registry, which GetRegistry then returns. Call it once at startup before
// any metric is recorded.
func Init(opts ...Option) error {
	if err := configure(opts).validate(); err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	manager := NewManager(append(slices.Clone(opts), WithPrometheusRegistry(registry))...)
	customRegistry = registry
	globalManager = manager
	return nil
}

// RefreshInterval is how often callers should refresh sampled gauges.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.pointsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("points_recorded_total"),
		Help:        "Total number of points committed to a match log",
		ConstLabels: labels,
	}, []string{"sport", "type"})

	m.tapsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("taps_rejected_total"),
		Help:        "Total number of court taps rejected by the zone rules",
		ConstLabels: labels,
	}, []string{"sport", "reason"})

	m.undos = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("undos_total"),
		Help:        "Total number of undo operations that changed a match",
		ConstLabels: labels,
	}, []string{"sport"})

	m.setsCompleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sets_completed_total"),
		Help:        "Total number of periods closed",
		ConstLabels: labels,
	}, []string{"sport"})

	m.matchesFinished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("matches_finished_total"),
		Help:        "Total number of matches finished",
		ConstLabels: labels,
	}, []string{"sport"})

	m.activeMatches = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("active_matches"),
		Help:        "Number of matches loaded and not finished",
		ConstLabels: labels,
	})

	m.commandsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("commands_duplicate_total"),
		Help:        "Total number of retried commands acknowledged without being applied",
		ConstLabels: labels,
	})

	m.commandLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("command_latency_milliseconds"),
		Help:        "Latency of match commands in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 25, 50},
		ConstLabels: labels,
	}, []string{"command"})

	m.persistQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("persist_queue_size"),
		Help:        "Current number of snapshots waiting to be persisted",
		ConstLabels: labels,
	})

	m.persistQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("persist_queue_capacity"),
		Help:        "Capacity of the persistence queue",
		ConstLabels: labels,
	})

	m.persistWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("persist_writes_total"),
		Help:        "Total number of snapshots written to the store",
		ConstLabels: labels,
	})

	m.persistCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("persist_coalesced_total"),
		Help:        "Total number of snapshots superseded before being written",
		ConstLabels: labels,
	})

	m.persistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("persist_errors_total"),
		Help:        "Total number of failed snapshot writes",
		ConstLabels: labels,
	})

	m.persistLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("persist_latency_milliseconds"),
		Help:        "Snapshot write latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.persistWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("persist_workers"),
		Help:        "Number of persistence workers",
		ConstLabels: labels,
	})

	m.storedMatches = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("stored_matches"),
		Help:        "Number of matches held by the snapshot store",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_component_total"),
		Help:        "Total number of errors by component",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Total number of errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Total number of errors by HTTP endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("error_latency_milliseconds"),
		Help:        "Latency of failed operations in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_bytes"),
		Help:        "Allocated heap memory in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordPoint counts a committed point.
func RecordPoint(sport, pointType string) {
	globalManager.pointsRecorded.WithLabelValues(sport, pointType).Inc()
}

// RecordTapRejected counts a rejected tap.
func RecordTapRejected(sport, reason string) {
	globalManager.tapsRejected.WithLabelValues(sport, reason).Inc()
}

// RecordUndo counts an undo that changed a match.
func RecordUndo(sport string) {
	globalManager.undos.WithLabelValues(sport).Inc()
}

// RecordSetCompleted counts a closed period.
func RecordSetCompleted(sport string) {
	globalManager.setsCompleted.WithLabelValues(sport).Inc()
}

// RecordMatchFinished counts a finished match.
func RecordMatchFinished(sport string) {
	globalManager.matchesFinished.WithLabelValues(sport).Inc()
}

// UpdateActiveMatches sets the number of live matches.
func UpdateActiveMatches(count int) {
	globalManager.activeMatches.Set(float64(count))
}

// RecordCommandDuplicate increments the duplicate commands counter.
func RecordCommandDuplicate() {
	globalManager.commandsDuplicate.Inc()
}

// RecordCommandLatency records the latency of a match command in milliseconds.
func RecordCommandLatency(command string, latencyMs float64) {
	globalManager.commandLatency.WithLabelValues(command).Observe(latencyMs)
}

// UpdatePersistQueueSize sets the current persistence queue size.
func UpdatePersistQueueSize(size int) {
	globalManager.persistQueueSize.Set(float64(size))
}

// UpdatePersistQueueCapacity sets the persistence queue capacity.
func UpdatePersistQueueCapacity(capacity int) {
	globalManager.persistQueueCapacity.Set(float64(capacity))
}

// RecordPersistWrite counts a written snapshot.
func RecordPersistWrite() {
	globalManager.persistWrites.Inc()
}

// RecordPersistCoalesced counts a snapshot superseded by a newer one.
func RecordPersistCoalesced() {
	globalManager.persistCoalesced.Inc()
}

// RecordPersistError counts a failed snapshot write.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// RecordPersistLatency records snapshot write latency in milliseconds.
func RecordPersistLatency(latencyMs float64) {
	globalManager.persistLatency.Observe(latencyMs)
}

// UpdatePersistWorkers sets the number of persistence workers.
func UpdatePersistWorkers(count int) {
	globalManager.persistWorkers.Set(float64(count))
}

// UpdateStoredMatches sets the number of stored matches.
func UpdateStoredMatches(count int) {
	globalManager.storedMatches.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType increments the error counter for a type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments the error counter for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
