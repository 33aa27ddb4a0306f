// Package middleware provides cross-cutting concerns for the scoring engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-tally/internal/ports"
)

// DefaultNamespace prefixes every metric when no namespace is configured.
const DefaultNamespace = "tally"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It exposes evaluation throughput and latency, the distribution of option
// totals, and the per-unit execution profile of the scoring pipeline.
type PrometheusMetrics struct {
	evaluationDuration prometheus.Histogram
	evaluations        *prometheus.CounterVec
	optionTotals       prometheus.Histogram
	unratedPairs       *prometheus.GaugeVec
	unitLatency        *prometheus.HistogramVec
	unitOperations     *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics on reg. An empty namespace selects DefaultNamespace.
// Registering twice on the same registerer panics, as with promauto.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		evaluationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Time taken to score one decision snapshot.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of snapshot evaluations by outcome.",
			},
			[]string{"status"},
		),
		optionTotals: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "option_total_score",
				Help:      "Distribution of normalized option totals.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		unratedPairs: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "unrated_pairs",
				Help:      "Option and criterion pairs without any rating in the latest evaluation.",
			},
			[]string{"decision_id"},
		),

		// Unit-level metrics fed by MetricsUnit.
		unitLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "unit_execution_duration_seconds",
				Help:      "Execution time of individual pipeline units.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "unit"},
		),
		unitOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unit_operations_total",
				Help:      "Total number of operations performed by pipeline units.",
			},
			[]string{"operation", "status", "unit"},
		),
	}
}

// labelOr returns labels[key], or fallback when the label is absent or empty.
func labelOr(labels map[string]string, key, fallback string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return fallback
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	if operation == ports.MetricEvaluation {
		pm.evaluationDuration.Observe(duration.Seconds())
		return
	}
	pm.unitLatency.WithLabelValues(operation, labelOr(labels, "unit", "unknown")).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	status := labelOr(labels, "status", "success")

	switch metric {
	case ports.MetricEvaluationsTotal:
		pm.evaluations.WithLabelValues(status).Add(value)
	default:
		pm.unitOperations.WithLabelValues(metric, status, labelOr(labels, "unit", "unknown")).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting the
// unrated pairs gauge of a decision. Other gauges are ignored.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	if metric != ports.MetricUnratedPairs {
		return
	}
	pm.unratedPairs.WithLabelValues(labelOr(labels, "decision_id", "unknown")).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by observing an
// option total. Other histograms are ignored.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, _ map[string]string,
) {
	if metric != ports.MetricOptionTotalScore {
		return
	}
	pm.optionTotals.Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
