package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// namespace prefixes every Talon metric name.
const namespace = "talon"

// Collector owns the Prometheus registry and the metric families Talon
// publishes. Pass nil to New for a fresh private registry.
type Collector struct {
	registry *prometheus.Registry

	Compile    *CompileMetrics
	Evaluation *EvaluationMetrics
}

// NewCollector creates a collector, registers every Talon metric family
// with the registry, and adds the standard Go runtime and process
// collectors.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:   registry,
		Compile:    NewCompileMetrics(registry),
		Evaluation: NewEvaluationMetrics(registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
