package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Unit = (*MetricsUnit)(nil)

// MetricsUnit decorates a ports.Unit with latency and outcome metrics.
// The wrapped unit's name, validation, and state transformation are passed
// through untouched.
type MetricsUnit struct {
	next    ports.Unit
	metrics ports.MetricsCollector
}

// NewMetricsUnit wraps next so that every Execute call is reported to
// metrics. A nil collector returns next unchanged.
func NewMetricsUnit(next ports.Unit, metrics ports.MetricsCollector) ports.Unit {
	if metrics == nil {
		return next
	}
	return &MetricsUnit{next: next, metrics: metrics}
}

// Name returns the wrapped unit's name.
func (m *MetricsUnit) Name() string { return m.next.Name() }

// Validate delegates to the wrapped unit.
func (m *MetricsUnit) Validate() error { return m.next.Validate() }

// Unwrap returns the decorated unit.
func (m *MetricsUnit) Unwrap() ports.Unit { return m.next }

// Execute runs the wrapped unit and records its latency together with a
// success, failure, or canceled counter.
func (m *MetricsUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	start := time.Now()
	out, err := m.next.Execute(ctx, state)

	labels := map[string]string{"unit": m.next.Name(), "status": executionStatus(err)}
	m.metrics.RecordLatency("unit_execute", time.Since(start), labels)
	m.metrics.RecordCounter(ports.MetricUnitExecutionsTotal, 1, labels)

	return out, err
}

func executionStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "failure"
	}
}
