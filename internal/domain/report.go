package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// WeightedScore is the contribution of one criterion to one option: the
// criterion's average rating for the option multiplied by its weight. Pairs
// nobody rated carry a zero value.
type WeightedScore struct {
	Criterion Criterion       `json:"criterion"`
	Option    Option          `json:"option"`
	Value     decimal.Decimal `json:"value"`

	// Raters is the number of ratings averaged into Value.
	Raters int `json:"raters"`
}

// OptionTotal is the normalized total score of a single option.
type OptionTotal struct {
	Option Option          `json:"option"`
	Total  decimal.Decimal `json:"total"`
}

// ScoreReport is the immutable output of a score computation.
//
// Scores lists every (criterion, option) pair in option-major,
// criterion-minor order. Totals is the ordered option-to-total mapping:
// it holds exactly one entry per option of the aggregate, in the
// aggregate's option order, including options nobody rated.
type ScoreReport struct {
	// DecisionID identifies the decision the report was computed for.
	DecisionID string `json:"decision_id"`

	// Scores holds the per-pair weighted scores.
	Scores []WeightedScore `json:"scores"`

	// Totals holds the per-option normalized totals.
	Totals []OptionTotal `json:"totals"`
}

// Total returns the total for the option with the given ID.
func (r ScoreReport) Total(optionID string) (decimal.Decimal, bool) {
	for _, t := range r.Totals {
		if t.Option.ID == optionID {
			return t.Total, true
		}
	}
	return decimal.Zero, false
}

// ScoresFor returns the weighted scores of one option in criterion order.
func (r ScoreReport) ScoresFor(optionID string) []WeightedScore {
	var out []WeightedScore
	for _, s := range r.Scores {
		if s.Option.ID == optionID {
			out = append(out, s)
		}
	}
	return out
}

// UnratedPairs counts the (criterion, option) pairs that received no rating.
func (r ScoreReport) UnratedPairs() int {
	n := 0
	for _, s := range r.Scores {
		if s.Raters == 0 {
			n++
		}
	}
	return n
}

// Ranked returns a copy of Totals ordered from highest to lowest total.
// Ties keep their aggregate order. Totals itself is never reordered.
func (r ScoreReport) Ranked() []OptionTotal {
	ranked := slices.Clone(r.Totals)
	slices.SortStableFunc(ranked, func(a, b OptionTotal) int {
		return b.Total.Cmp(a.Total)
	})
	return ranked
}
