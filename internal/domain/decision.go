package domain

import (
	"fmt"
	"time"
)

// Criterion is a named, weighted dimension used to judge the options of a
// decision. Weights are non-negative integers; a weight of zero keeps the
// criterion visible without letting it influence totals.
type Criterion struct {
	// ID uniquely identifies the criterion within its decision.
	ID string `json:"id"`

	// DecisionID identifies the decision that owns this criterion.
	DecisionID string `json:"decision_id"`

	// Name is the display name shown to participants.
	Name string `json:"name"`

	// Weight is the relative importance of the criterion.
	Weight int `json:"weight"`
}

// Option is a candidate choice being compared within a decision.
type Option struct {
	// ID uniquely identifies the option within its decision.
	ID string `json:"id"`

	// DecisionID identifies the decision that owns this option.
	DecisionID string `json:"decision_id"`

	// Name is the display name of the option.
	Name string `json:"name"`

	// Notes carries free-form text. It plays no part in aggregation.
	Notes string `json:"notes,omitempty"`
}

// Rating is one participant's integer score for one (option, criterion)
// pair. Several raters may rate the same pair; no rating is privileged.
type Rating struct {
	ID          string    `json:"id"`
	DecisionID  string    `json:"decision_id"`
	OptionID    string    `json:"option_id"`
	CriterionID string    `json:"criterion_id"`
	RaterID     string    `json:"rater_id"`
	Value       int       `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
}

// DecisionAggregate is a read-only snapshot of a decision's configuration:
// its identity plus its criteria and options in display order. Every
// criterion and option in the aggregate belongs to DecisionID.
type DecisionAggregate struct {
	DecisionID string      `json:"decision_id"`
	Criteria   []Criterion `json:"criteria"`
	Options    []Option    `json:"options"`
}

// NewDecisionAggregate builds an aggregate and checks its membership
// invariant. Empty criteria or options are accepted here; the aggregator
// reports those conditions with its own errors.
func NewDecisionAggregate(decisionID string, criteria []Criterion, options []Option) (DecisionAggregate, error) {
	verr := NewValidationError("DecisionAggregate")
	if decisionID == "" {
		verr.AddError("decision id is required")
	}
	for _, c := range criteria {
		if c.DecisionID != decisionID {
			verr.AddError(fmt.Sprintf("criterion %s belongs to decision %q", c.ID, c.DecisionID))
		}
		if c.Weight < 0 {
			verr.AddError(fmt.Sprintf("criterion %s has negative weight %d", c.ID, c.Weight))
		}
	}
	for _, o := range options {
		if o.DecisionID != decisionID {
			verr.AddError(fmt.Sprintf("option %s belongs to decision %q", o.ID, o.DecisionID))
		}
	}
	if verr.HasErrors() {
		return DecisionAggregate{}, verr
	}

	return DecisionAggregate{
		DecisionID: decisionID,
		Criteria:   criteria,
		Options:    options,
	}, nil
}

// TotalWeight returns the sum of all criterion weights.
func (a DecisionAggregate) TotalWeight() int {
	total := 0
	for _, c := range a.Criteria {
		total += c.Weight
	}
	return total
}
