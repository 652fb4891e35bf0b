// Package metrics provides Prometheus metrics for the airdrop calculator.
package metrics

import (
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager. Empty values keep the default.
type Option func(*Manager)

// WithNamespace replaces the "ytairdrop" metric name prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "calculator" name segment.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the millisecond buckets of every latency
// histogram. They must be strictly increasing.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = slices.Clone(buckets)
		}
	}
}

// WithCustomLabels attaches constant labels, such as the scenario name, to
// every series.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithPrometheusRegistry registers the collectors with registry instead of
// the default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
