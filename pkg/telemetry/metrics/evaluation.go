package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks metrics for direct policy evaluation (the
// slow path).
//
// Metrics:
//   - talon_evaluations_total: Evaluations by resulting effect
//   - talon_evaluation_errors_total: Evaluation errors by error type
//   - talon_evaluation_duration_seconds: Evaluation duration
type EvaluationMetrics struct {
	evaluationsTotal *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	duration         prometheus.Histogram
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of policy evaluations by effect",
			},
			[]string{"effect"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_errors_total",
				Help:      "Total number of evaluation errors by type",
			},
			[]string{"type"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of a single policy evaluation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.errorsTotal,
		em.duration,
	)

	return em
}

// RecordEvaluation records one policy evaluation and the effect it
// produced ("allow" or "deny").
func (em *EvaluationMetrics) RecordEvaluation(effect string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(effect).Inc()
	em.duration.Observe(duration.Seconds())
}

// RecordError records one evaluation error by taxonomy name, e.g.
// "type_mismatch" or "missing_attribute".
func (em *EvaluationMetrics) RecordError(errType string) {
	em.errorsTotal.WithLabelValues(errType).Inc()
}
