package domain

// ScoreAggregator defines the interface for turning a decision's criteria,
// options, and participant ratings into a comparative score per option.
// Implementations must be pure: identical inputs produce identical reports
// regardless of rating order, and inputs are never mutated.
type ScoreAggregator interface {
	// ComputeScores computes the full score report for aggregate.
	//
	// Returns a *ValidationError wrapping ErrMissingOptions,
	// ErrMissingCriteria, or ErrMissingScores (checked in that order) when
	// the corresponding input is empty. No partial report is returned on
	// error.
	//
	// Example:
	//
	//	report, err := aggregator.ComputeScores(aggregate, ratings)
	//	if errors.Is(err, domain.ErrMissingScores) {
	//	    // nothing has been rated yet
	//	}
	ComputeScores(aggregate DecisionAggregate, ratings []Rating) (ScoreReport, error)
}
