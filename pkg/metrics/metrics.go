// Package metrics provides a Prometheus recorder for engine instrumentation:
// renders scheduled and aborted, units of work processed, work-loop yields,
// commit effect counts and durations, and effect-hook invocations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "loom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "engine").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// WithBuckets sets the commit-duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "loom",
		Subsystem: "engine",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder implements the engine's Metrics interface on Prometheus
// collectors.
type Recorder struct {
	rendersTotal   prometheus.Counter
	rendersAborted prometheus.Counter
	unitsTotal     prometheus.Counter
	yieldsTotal    prometheus.Counter
	commitsTotal   prometheus.Counter
	commitDuration prometheus.Histogram
	commitOps      *prometheus.CounterVec
	effectsTotal   prometheus.Counter
}

// NewRecorder creates a recorder registered against the configured registry.
// Register a given registry at most once; collectors are not deduplicated.
func NewRecorder(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of render passes scheduled",
			ConstLabels: config.ConstLabels,
		}),
		rendersAborted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_aborted_total",
			Help:        "Total number of renders aborted by host adapter failures",
			ConstLabels: config.ConstLabels,
		}),
		unitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "work_units_total",
			Help:        "Total units of reconciliation work processed",
			ConstLabels: config.ConstLabels,
		}),
		yieldsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "yields_total",
			Help:        "Times the work loop yielded to the host between units",
			ConstLabels: config.ConstLabels,
		}),
		commitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total commit phases completed",
			ConstLabels: config.ConstLabels,
		}),
		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		commitOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_ops_total",
			Help:        "Host mutations applied during commit, by effect kind",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
		effectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_hooks_total",
			Help:        "Effect hook callbacks invoked during commit",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RenderScheduled implements fiber.Metrics.
func (r *Recorder) RenderScheduled() { r.rendersTotal.Inc() }

// RenderAborted implements fiber.Metrics.
func (r *Recorder) RenderAborted() { r.rendersAborted.Inc() }

// UnitProcessed implements fiber.Metrics.
func (r *Recorder) UnitProcessed() { r.unitsTotal.Inc() }

// Yielded implements fiber.Metrics.
func (r *Recorder) Yielded() { r.yieldsTotal.Inc() }

// Committed implements fiber.Metrics.
func (r *Recorder) Committed(elapsed time.Duration, placements, updates, deletions int) {
	r.commitsTotal.Inc()
	r.commitDuration.Observe(elapsed.Seconds())
	r.commitOps.WithLabelValues("placement").Add(float64(placements))
	r.commitOps.WithLabelValues("update").Add(float64(updates))
	r.commitOps.WithLabelValues("deletion").Add(float64(deletions))
}

// EffectsRun implements fiber.Metrics.
func (r *Recorder) EffectsRun(count int) { r.effectsTotal.Add(float64(count)) }
