package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CompileMetrics tracks metrics for policy compilation runs.
//
// Metrics:
//   - talon_compile_runs_total: Compile runs by outcome ("success", "error")
//   - talon_compile_duration_seconds: End-to-end compile duration
//   - talon_compile_destinations: Destinations covered by the last compile
//   - talon_compile_applicable_rules: Applicable-rule count per destination
type CompileMetrics struct {
	runsTotal       *prometheus.CounterVec
	duration        prometheus.Histogram
	destinations    prometheus.Gauge
	applicableRules prometheus.Histogram
}

// NewCompileMetrics creates and registers compile metrics with the
// provided registry.
func NewCompileMetrics(registry *prometheus.Registry) *CompileMetrics {
	cm := &CompileMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compile_runs_total",
				Help:      "Total number of policy compile runs",
			},
			[]string{"status"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_duration_seconds",
				Help:      "Duration of a full policy compile in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to 8s
			},
		),

		destinations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "compile_destinations",
				Help:      "Destinations covered by the most recent compile",
			},
		),

		applicableRules: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_applicable_rules",
				Help:      "Applicable rules per destination after filtering",
				Buckets:   prometheus.LinearBuckets(0, 5, 10), // 0 to 45 rules
			},
		),
	}

	registry.MustRegister(
		cm.runsTotal,
		cm.duration,
		cm.destinations,
		cm.applicableRules,
	)

	return cm
}

// RecordRun records one compile run and its outcome.
func (cm *CompileMetrics) RecordRun(err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	cm.runsTotal.WithLabelValues(status).Inc()
	cm.duration.Observe(duration.Seconds())
}

// RecordDestinations records the destination count of the latest compile.
func (cm *CompileMetrics) RecordDestinations(n int) {
	cm.destinations.Set(float64(n))
}

// RecordApplicableRules records how many rules survived the destination
// filter for one destination.
func (cm *CompileMetrics) RecordApplicableRules(n int) {
	cm.applicableRules.Observe(float64(n))
}
