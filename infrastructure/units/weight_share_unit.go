package units

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Unit = (*WeightShareUnit)(nil)

// WeightShareUnit computes the display share of every criterion's weight.
// It is independent of score aggregation and can run before or after it.
type WeightShareUnit struct {
	name   string
	tracer trace.Tracer
}

// NewWeightShareUnit creates a new WeightShareUnit.
// Returns ErrEmptyUnitName if name is empty.
func NewWeightShareUnit(name string) (*WeightShareUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &WeightShareUnit{
		name:   name,
		tracer: otel.Tracer("weight-share-unit"),
	}, nil
}

// CreateWeightShareUnit creates a WeightShareUnit from a configuration map.
// The unit takes no parameters; the map is accepted for registry symmetry.
func CreateWeightShareUnit(id string, _ map[string]any) (ports.Unit, error) {
	return NewWeightShareUnit(id)
}

// Name returns the unique identifier for this unit instance.
func (u *WeightShareUnit) Name() string { return u.name }

// Validate verifies the unit is properly configured.
func (u *WeightShareUnit) Validate() error {
	if u.name == "" {
		return ErrEmptyUnitName
	}
	return nil
}

// Execute reads domain.KeyDecision and writes one domain.WeightShare per
// criterion, in criteria order, to domain.KeyWeightShares.
func (u *WeightShareUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "WeightShareUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeWeightShare),
			attribute.String("unit.id", u.name),
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

	shares := domain.WeightShares(aggregate.Criteria)
	span.SetAttributes(attribute.Int("decision.criteria", len(shares)))

	return domain.With(state, domain.KeyWeightShares, shares), nil
}
