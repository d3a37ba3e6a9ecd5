// Package metrics exports tracker activity as Prometheus metrics.
//
// A Collector is a tracker.Observer:
//
//	reg := prometheus.NewRegistry()
//	t := tracker.New(tracker.WithObserver(metrics.New(metrics.WithRegistry(reg))))
//
// Metrics collected:
//   - eventmanager_tracked_listeners: Gauge of records currently tracked
//   - eventmanager_registrations_total: Counter of successful adds by event type
//   - eventmanager_removals_total: Counter of removed records by operation
//   - eventmanager_registration_errors_total: Counter of failures by operation and kind
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/eventmanager/pkg/tracker"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "eventmanager").
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
		Namespace: "eventmanager",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records tracker activity.
type Collector struct {
	tracked       prometheus.Gauge
	registrations *prometheus.CounterVec
	removals      *prometheus.CounterVec
	errors        *prometheus.CounterVec
}

var _ tracker.Observer = (*Collector)(nil)

// New creates a Collector and registers its metrics. Registering twice on
// the same registry panics, as with promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		tracked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tracked_listeners",
			Help:        "Number of listener registrations currently tracked",
			ConstLabels: config.ConstLabels,
		}),

		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "registrations_total",
			Help:        "Total number of tracked listener registrations",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		removals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "removals_total",
			Help:        "Total number of tracked listener records removed",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "registration_errors_total",
			Help:        "Total number of failed tracker operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "kind"}),
	}
}

// Added implements tracker.Observer.
func (c *Collector) Added(r tracker.Registration) {
	c.tracked.Inc()
	c.registrations.WithLabelValues(r.EventType).Inc()
}

// Removed implements tracker.Observer.
func (c *Collector) Removed(_ tracker.Registration, op tracker.Op) {
	c.tracked.Dec()
	c.removals.WithLabelValues(string(op)).Inc()
}

// Failed implements tracker.Observer.
func (c *Collector) Failed(op tracker.Op, err error) {
	c.errors.WithLabelValues(string(op), errorKind(err)).Inc()
}

// errorKind keeps the kind label low-cardinality.
func errorKind(err error) string {
	switch {
	case tracker.IsValidation(err):
		return "validation"
	case tracker.IsRegistration(err):
		return "platform"
	default:
		return "unknown"
	}
}
