package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for crossgen generation runs.
// A nil *Metrics is a valid no-op collector, so callers never need to
// guard call sites.
type Metrics struct {
	config MetricsConfig

	// Run metrics
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runDuration   prometheus.Histogram

	// Tree metrics
	dimensionsExpanded *prometheus.CounterVec
	variantsProduced   *prometheus.CounterVec
	leavesVisited      prometheus.Counter

	// Provider metrics
	providerCalls  *prometheus.CounterVec
	providerErrors *prometheus.CounterVec

	// Artifact metrics
	artifactsWritten prometheus.Counter
	artifactBytes    prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// A no-op metrics instance
		return nil, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Total number of generation runs started",
		}),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of generation runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of generation runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		dimensionsExpanded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dimensions_expanded_total",
				Help:      "Total number of dimension expansions",
			},
			[]string{"provider"},
		),
		variantsProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "variants_produced_total",
				Help:      "Total number of variants produced by providers",
			},
			[]string{"provider"},
		),
		leavesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaves_visited_total",
			Help:      "Total number of combination-tree leaves visited",
		}),

		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of provider invocations",
			},
			[]string{"provider"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of provider failures",
			},
			[]string{"provider"},
		),

		artifactsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Total number of artifacts written",
		}),
		artifactBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_bytes_total",
			Help:      "Total bytes of artifact content written",
		}),
	}

	collectors := []prometheus.Collector{
		m.runsStarted, m.runsCompleted, m.runDuration,
		m.dimensionsExpanded, m.variantsProduced, m.leavesVisited,
		m.providerCalls, m.providerErrors,
		m.artifactsWritten, m.artifactBytes,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

// RunStarted records the start of a generation run.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.runsStarted.Inc()
}

// RunCompleted records the completion of a generation run.
func (m *Metrics) RunCompleted(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// DimensionExpanded records one expansion of a dimension into n variants.
func (m *Metrics) DimensionExpanded(provider string, variants int) {
	if m == nil {
		return
	}
	m.dimensionsExpanded.WithLabelValues(provider).Inc()
	m.variantsProduced.WithLabelValues(provider).Add(float64(variants))
}

// LeafVisited records one consumer invocation.
func (m *Metrics) LeafVisited() {
	if m == nil {
		return
	}
	m.leavesVisited.Inc()
}

// ProviderCall records one provider invocation and its outcome.
func (m *Metrics) ProviderCall(provider string, err error) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider).Inc()
	if err != nil {
		m.providerErrors.WithLabelValues(provider).Inc()
	}
}

// ArtifactWritten records one written artifact and its size.
func (m *Metrics) ArtifactWritten(bytes int) {
	if m == nil {
		return
	}
	m.artifactsWritten.Inc()
	m.artifactBytes.Add(float64(bytes))
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts the metrics HTTP listener if one is configured. It returns
// immediately; the listener runs until the process exits.
func (m *Metrics) Serve() error {
	if m == nil || m.config.ListenAddress == "" {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	go func() {
		// One-shot tool; errors here only matter while the run is alive.
		_ = http.ListenAndServe(m.config.ListenAddress, mux)
	}()

	return nil
}
