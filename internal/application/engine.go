package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/logger"
	"github.com/ahrav/go-tally/internal/ports"
)

// defaultPipelineID names the pipeline built from Config.Pipeline.
const defaultPipelineID = "scoring"

// Result is the outcome of evaluating one snapshot.
type Result struct {
	// Ref echoes the evaluated snapshot's reference.
	Ref string
	// ExecutionID uniquely identifies this evaluation in logs and traces.
	ExecutionID string
	// Report is the score report, or nil when the pipeline has no scoring
	// unit.
	Report *domain.ScoreReport
	// Shares holds the criterion weight shares, or nil when the pipeline
	// has no weight_share unit.
	Shares []domain.WeightShare
	// Duration is the wall time spent in the pipeline.
	Duration time.Duration
}

// Engine evaluates decision snapshots through the configured unit pipeline.
// An Engine holds no per-evaluation state and is safe for concurrent use.
type Engine struct {
	pipeline    *Pipeline
	logger      *zap.Logger
	metrics     ports.MetricsCollector
	wrap        func(ports.Unit) ports.Unit
	concurrency int
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger. The default discards all output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the collector that receives evaluation metrics.
func WithMetrics(m ports.MetricsCollector) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithUnitWrapper decorates every unit as the pipeline is built, for
// example with middleware.NewMetricsUnit.
func WithUnitWrapper(wrap func(ports.Unit) ports.Unit) EngineOption {
	return func(e *Engine) { e.wrap = wrap }
}

// NewEngine builds the pipeline described by cfg using registry.
func NewEngine(cfg Config, registry ports.UnitRegistry, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: unit registry is required", domain.ErrInvalidConfiguration)
	}

	e := &Engine{
		logger:      zap.NewNop(),
		concurrency: cfg.Scoring.Concurrency,
	}
	for _, opt := range opts {
		opt(e)
	}

	pipeline := NewPipeline(defaultPipelineID)
	for _, uc := range cfg.Pipeline {
		unit, err := registry.CreateUnit(uc.Type, uc.ID, uc.Parameters)
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		if err := unit.Validate(); err != nil {
			return nil, fmt.Errorf("build pipeline: unit %s: %w", uc.ID, err)
		}
		if e.wrap != nil {
			unit = e.wrap(unit)
		}
		if err := pipeline.Add(NewUnitAdapter(unit, uc.ID)); err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
	}
	e.pipeline = pipeline

	return e, nil
}

// Pipeline returns the engine's unit pipeline.
func (e *Engine) Pipeline() *Pipeline { return e.pipeline }

// Evaluate runs the pipeline over one snapshot. Score precondition
// failures are returned wrapped, so errors.Is matches
// domain.ErrMissingOptions and its siblings.
func (e *Engine) Evaluate(ctx context.Context, snap Snapshot) (Result, error) {
	executionID := uuid.New().String()
	ctx = logger.WithExecutionID(ctx, executionID)
	log := logger.FromContext(ctx, e.logger).With(
		zap.String("decision_id", snap.Decision.DecisionID),
		zap.String("ref", snap.Ref),
	)

	state := domain.NewState()
	state = domain.With(state, domain.KeyDecision, snap.Decision)
	state = domain.With(state, domain.KeyRatings, snap.Ratings)
	state = state.WithExecutionContext(domain.ExecutionContext{
		PipelineID:  e.pipeline.ID(),
		DecisionID:  snap.Decision.DecisionID,
		ExecutionID: executionID,
	})

	log.Debug("evaluation started",
		zap.Int("options", len(snap.Decision.Options)),
		zap.Int("criteria", len(snap.Decision.Criteria)),
		zap.Int("ratings", len(snap.Ratings)),
	)

	start := time.Now()
	out, err := e.pipeline.Execute(ctx, state)
	duration := time.Since(start)
	e.recordLatency(duration)

	if err != nil {
		e.recordOutcome("failure")
		log.Warn("evaluation failed", zap.Duration("duration", duration), zap.Error(err))
		return Result{}, fmt.Errorf("evaluate %s: %w", snap.Ref, err)
	}

	result := Result{
		Ref:         snap.Ref,
		ExecutionID: executionID,
		Duration:    duration,
	}
	if report, ok := domain.Get(out, domain.KeyScoreReport); ok {
		result.Report = report
	}
	if shares, ok := domain.Get(out, domain.KeyWeightShares); ok {
		result.Shares = shares
	}

	e.recordOutcome("success")
	e.recordReport(result.Report)

	fields := []zap.Field{zap.Duration("duration", duration)}
	if result.Report != nil {
		fields = append(fields, zap.Int("unrated_pairs", result.Report.UnratedPairs()))
	}
	log.Info("evaluation completed", fields...)

	return result, nil
}

// EvaluateAll evaluates snapshots concurrently, at most
// Config.Scoring.Concurrency at a time. Results are returned in input order.
// The first failure cancels the remaining evaluations and is returned.
func (e *Engine) EvaluateAll(ctx context.Context, snaps []Snapshot) ([]Result, error) {
	results := make([]Result, len(snaps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, snap := range snaps {
		i, snap := i, snap
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Evaluate(gctx, snap)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EvaluateRefs loads each ref from source and evaluates it, with the same
// ordering and concurrency guarantees as EvaluateAll.
func (e *Engine) EvaluateRefs(ctx context.Context, source ports.SnapshotSource, refs []string) ([]Result, error) {
	results := make([]Result, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			decision, ratings, err := source.Load(gctx, ref)
			if err != nil {
				return err
			}
			res, err := e.Evaluate(gctx, Snapshot{Ref: ref, Decision: decision, Ratings: ratings})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) recordLatency(d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordLatency(ports.MetricEvaluation, d, nil)
}

func (e *Engine) recordOutcome(status string) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordCounter(ports.MetricEvaluationsTotal, 1, map[string]string{"status": status})
}

func (e *Engine) recordReport(report *domain.ScoreReport) {
	if e.metrics == nil || report == nil {
		return
	}
	for _, t := range report.Totals {
		e.metrics.RecordHistogram(ports.MetricOptionTotalScore, t.Total.InexactFloat64(), nil)
	}
	e.metrics.RecordGauge(ports.MetricUnratedPairs, float64(report.UnratedPairs()), map[string]string{
		"decision_id": report.DecisionID,
	})
}
