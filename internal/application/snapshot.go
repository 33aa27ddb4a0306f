package application

import (
	"time"

	"github.com/ahrav/go-tally/internal/domain"
)

// Snapshot is one consistent point-in-time view of a decision: its
// configuration and every rating submitted for it.
type Snapshot struct {
	// Ref identifies where the snapshot came from, typically a file path.
	Ref string

	// Decision is the decision's criteria and options.
	Decision domain.DecisionAggregate

	// Ratings holds every participant rating of the decision.
	Ratings []domain.Rating
}

// SnapshotDocument is the YAML form of a decision snapshot.
type SnapshotDocument struct {
	Decision DecisionDocument    `yaml:"decision" validate:"required"`
	Criteria []CriterionDocument `yaml:"criteria" validate:"dive"`
	Options  []OptionDocument    `yaml:"options" validate:"dive"`
	Ratings  []RatingDocument    `yaml:"ratings" validate:"dive"`
}

// DecisionDocument identifies the decision being scored.
type DecisionDocument struct {
	ID   string `yaml:"id" validate:"required,max=100"`
	Name string `yaml:"name" validate:"max=255"`
}

// CriterionDocument declares a weighted criterion.
type CriterionDocument struct {
	ID     string `yaml:"id" validate:"required,max=100"`
	Name   string `yaml:"name" validate:"max=255"`
	Weight int    `yaml:"weight" validate:"min=0"`
}

// OptionDocument declares an option under consideration.
type OptionDocument struct {
	ID    string `yaml:"id" validate:"required,max=100"`
	Name  string `yaml:"name" validate:"max=255"`
	Notes string `yaml:"notes" validate:"max=2000"`
}

// RatingDocument is one participant's score for an option on a criterion.
type RatingDocument struct {
	// ID is optional; a UUID is assigned when it is empty.
	ID          string `yaml:"id,omitempty" validate:"max=100"`
	OptionID    string `yaml:"option" validate:"required"`
	CriterionID string `yaml:"criterion" validate:"required"`
	RaterID     string `yaml:"rater" validate:"required"`
	Value       int    `yaml:"value"`
	// Decision defaults to the snapshot's decision ID.
	Decision  string    `yaml:"decision,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}
