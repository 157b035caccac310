// Package metrics exports processing outcomes to Prometheus. Collector
// implements processor.Observer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-widgetschema/pkg/processor"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// Outcome label values.
const (
	OutcomeValid    = "valid"
	OutcomeDegraded = "degraded"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "widgetschema").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "widgetschema",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector counts processed schemas, fallback strategies and issues.
type Collector struct {
	processed *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	issues    *prometheus.CounterVec
}

// New registers the collector's metrics. Registering twice against the same
// registry panics, as with promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "processed_total",
			Help:        "Total number of widget schemas processed",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "outcome"}),

		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fallback_total",
			Help:        "Total number of fallback resolutions by strategy",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy"}),

		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "validation_issues_total",
			Help:        "Total number of validation issues by severity",
			ConstLabels: config.ConstLabels,
		}, []string{"severity"}),
	}
}

// ObserveProcessing implements processor.Observer. The type label is the
// processed type, which is always a registered one, keeping cardinality
// bounded by the registry.
func (c *Collector) ObserveProcessing(result processor.Result) {
	if c == nil {
		return
	}
	outcome := OutcomeValid
	if result.FallbackUsed {
		outcome = OutcomeDegraded
		c.fallbacks.WithLabelValues(result.Strategy).Inc()
	}
	c.processed.WithLabelValues(result.ProcessedSchema.Type, outcome).Inc()

	if n := len(result.Validation.Errors); n > 0 {
		c.issues.WithLabelValues(string(schema.SeverityError)).Add(float64(n))
	}
	if n := len(result.Validation.Warnings); n > 0 {
		c.issues.WithLabelValues(string(schema.SeverityWarning)).Add(float64(n))
	}
}
