package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-tally/internal/domain"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like evaluations and failures.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like option totals.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// SnapshotSource supplies consistent decision snapshots to the engine.
// The aggregate and its ratings must be read together so that the engine
// sees a single point-in-time view.
type SnapshotSource interface {
	// Load returns the decision configuration and every rating of the
	// decision identified by ref.
	Load(ctx context.Context, ref string) (domain.DecisionAggregate, []domain.Rating, error)
}

// Metric names understood by MetricsCollector implementations.
const (
	// MetricEvaluation labels the latency of a whole snapshot evaluation.
	MetricEvaluation = "evaluation"

	// MetricEvaluationsTotal counts evaluations by their "status" label.
	MetricEvaluationsTotal = "evaluations_total"

	// MetricOptionTotalScore observes every option total of a report.
	MetricOptionTotalScore = "option_total_score"

	// MetricUnratedPairs reports the unrated (option, criterion) pairs of
	// the most recent evaluation of a decision.
	MetricUnratedPairs = "unrated_pairs"

	// MetricUnitExecutionsTotal counts unit executions by "unit" and
	// "status" labels.
	MetricUnitExecutionsTotal = "unit_executions_total"
)
