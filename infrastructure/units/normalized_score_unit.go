package units

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var (
	_ ports.Unit             = (*NormalizedScoreUnit)(nil)
	_ domain.ScoreAggregator = (*NormalizedScoreUnit)(nil)
)

// scorePrecision is the number of fractional digits kept when averaging a
// pair's ratings and when normalizing an option total.
const scorePrecision = 2

// zeroTotal is the total of an option that was not rated on any criterion.
var zeroTotal = decimal.New(0, -scorePrecision)

// NormalizedScoreUnit turns a decision's criteria, options, and participant
// ratings into one comparative total per option.
//
// Algorithm: for every (option, criterion) pair the ratings are averaged and
// rounded half-up to two places, then multiplied by the criterion weight.
// An option's weighted sum is rescaled by the ratio of the total configured
// weight to the weight that actually received ratings, so a participant
// skipping a criterion never lowers the option's standing. An option rated
// on no criterion scores 0.00.
//
// Precision: all arithmetic uses exact decimals. Rounding happens only at
// the per-pair average and the final per-option total.
//
// Concurrency: stateless and safe for concurrent use.
type NormalizedScoreUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// config contains the validated configuration parameters.
	config NormalizedScoreConfig
	// tracer emits one span per Execute call.
	tracer trace.Tracer
}

// NormalizedScoreConfig controls which ratings take part in aggregation.
type NormalizedScoreConfig struct {
	// MatchDecision restricts aggregation to ratings whose DecisionID equals
	// the aggregate's. When false, ratings are matched on option and
	// criterion identity only.
	MatchDecision bool `yaml:"match_decision" json:"match_decision"`
}

// DefaultNormalizedScoreConfig returns the default configuration, matching
// ratings on option and criterion identity alone.
func DefaultNormalizedScoreConfig() NormalizedScoreConfig {
	return NormalizedScoreConfig{MatchDecision: false}
}

// NewNormalizedScoreUnit creates a new NormalizedScoreUnit.
// Returns ErrEmptyUnitName if name is empty, or a configuration validation
// error if config violates its constraints.
func NewNormalizedScoreUnit(name string, config NormalizedScoreConfig) (*NormalizedScoreUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &NormalizedScoreUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("normalized-score-unit"),
	}, nil
}

// CreateNormalizedScoreUnit creates a NormalizedScoreUnit from a
// configuration map. This is the boundary adapter used by the unit registry.
func CreateNormalizedScoreUnit(id string, config map[string]any) (ports.Unit, error) {
	cfg := DefaultNormalizedScoreConfig()
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewNormalizedScoreUnit(id, cfg)
}

// Name returns the unique identifier for this unit instance.
func (u *NormalizedScoreUnit) Name() string { return u.name }

// Validate verifies the unit is properly configured.
func (u *NormalizedScoreUnit) Validate() error {
	if u.name == "" {
		return ErrEmptyUnitName
	}
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Execute computes the score report for the decision held in state.
//
// State requirements:
//   - domain.KeyDecision: the decision aggregate
//   - domain.KeyRatings: every rating of the decision
//
// Returns a new state containing domain.KeyScoreReport. On error the input
// state is returned unchanged.
func (u *NormalizedScoreUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "NormalizedScoreUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeNormalizedScore),
			attribute.String("unit.id", u.name),
			attribute.Bool("config.match_decision", u.config.MatchDecision),
		),
	)
	defer span.End()
	span.SetAttributes(executionAttributes(state)...)

	aggregate, err := domain.Require(state, domain.KeyDecision)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return state, err
	}
	ratings, err := domain.Require(state, domain.KeyRatings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return state, err
	}

	span.SetAttributes(
		attribute.String("decision.id", aggregate.DecisionID),
		attribute.Int("decision.options", len(aggregate.Options)),
		attribute.Int("decision.criteria", len(aggregate.Criteria)),
		attribute.Int("decision.ratings", len(ratings)),
	)

	report, err := u.ComputeScores(aggregate, ratings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return state, err
	}

	span.SetAttributes(attribute.Int("report.unrated_pairs", report.UnratedPairs()))

	return domain.With(state, domain.KeyScoreReport, &report), nil
}

// pairKey identifies one (option, criterion) cell of the decision matrix.
type pairKey struct {
	optionID    string
	criterionID string
}

// tally accumulates the ratings of one pair.
type tally struct {
	sum   int64
	count int64
}

// ComputeScores implements domain.ScoreAggregator.
//
// Preconditions are checked before any computation, in this order: options,
// criteria, ratings. Each failure returns a *domain.ValidationError wrapping
// domain.ErrMissingOptions, domain.ErrMissingCriteria, or
// domain.ErrMissingScores, and a zero report.
//
// Ratings that reference an option or criterion outside the aggregate are
// ignored.
func (u *NormalizedScoreUnit) ComputeScores(
	aggregate domain.DecisionAggregate,
	ratings []domain.Rating,
) (domain.ScoreReport, error) {
	switch {
	case len(aggregate.Options) == 0:
		return domain.ScoreReport{}, domain.NewPreconditionError("decision", domain.ErrMissingOptions)
	case len(aggregate.Criteria) == 0:
		return domain.ScoreReport{}, domain.NewPreconditionError("decision", domain.ErrMissingCriteria)
	case len(ratings) == 0:
		return domain.ScoreReport{}, domain.NewPreconditionError("decision", domain.ErrMissingScores)
	}

	totalPossibleWeight := decimal.NewFromInt(int64(aggregate.TotalWeight()))
	tallies := u.tallyRatings(aggregate.DecisionID, ratings)

	report := domain.ScoreReport{
		DecisionID: aggregate.DecisionID,
		Scores:     make([]domain.WeightedScore, 0, len(aggregate.Options)*len(aggregate.Criteria)),
		Totals:     make([]domain.OptionTotal, 0, len(aggregate.Options)),
	}

	for _, option := range aggregate.Options {
		weightedSum := decimal.Zero
		weightScored := int64(0)

		for _, criterion := range aggregate.Criteria {
			t, rated := tallies[pairKey{optionID: option.ID, criterionID: criterion.ID}]
			if !rated {
				report.Scores = append(report.Scores, domain.WeightedScore{
					Criterion: criterion,
					Option:    option,
					Value:     decimal.Zero,
				})
				continue
			}

			average := decimal.NewFromInt(t.sum).DivRound(decimal.NewFromInt(t.count), scorePrecision)
			weighted := average.Mul(decimal.NewFromInt(int64(criterion.Weight)))

			report.Scores = append(report.Scores, domain.WeightedScore{
				Criterion: criterion,
				Option:    option,
				Value:     weighted,
				Raters:    int(t.count),
			})
			weightedSum = weightedSum.Add(weighted)
			weightScored += int64(criterion.Weight)
		}

		report.Totals = append(report.Totals, domain.OptionTotal{
			Option: option,
			Total:  normalize(weightedSum, weightScored, totalPossibleWeight),
		})
	}

	return report, nil
}

// normalize rescales weightedSum from the weight that was rated to the total
// configured weight. The product is taken before the division so the only
// rounding is the final one.
func normalize(weightedSum decimal.Decimal, weightScored int64, totalPossibleWeight decimal.Decimal) decimal.Decimal {
	if weightScored == 0 {
		return zeroTotal
	}
	return weightedSum.Mul(totalPossibleWeight).DivRound(decimal.NewFromInt(weightScored), scorePrecision)
}

// tallyRatings groups ratings by (option, criterion) in a single pass.
func (u *NormalizedScoreUnit) tallyRatings(decisionID string, ratings []domain.Rating) map[pairKey]tally {
	tallies := make(map[pairKey]tally)
	for _, r := range ratings {
		if u.config.MatchDecision && r.DecisionID != decisionID {
			continue
		}
		key := pairKey{optionID: r.OptionID, criterionID: r.CriterionID}
		t := tallies[key]
		t.sum += int64(r.Value)
		t.count++
		tallies[key] = t
	}
	return tallies
}
