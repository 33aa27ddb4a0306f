// Package units provides the scoring units that implement the ports.Unit
// interface for the tally pipeline.
package units

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
)

// Unit type names understood by the registry.
const (
	TypeNormalizedScore = "normalized_score"
	TypeWeightShare     = "weight_share"
)

// Common errors returned by scoring units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// decodeConfig overlays a loosely typed parameter map onto cfg, which must
// be a pointer to a struct already holding the defaults. The map is routed
// through YAML so the same field tags serve files and programmatic callers.
func decodeConfig(params map[string]any, cfg any) error {
	if len(params) == 0 {
		return nil
	}

	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// executionAttributes returns span attributes for the execution context
// carried by state, or nil when the state has none.
func executionAttributes(state domain.State) []attribute.KeyValue {
	ec, ok := state.GetExecutionContext()
	if !ok {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String("execution.id", ec.ExecutionID),
		attribute.String("pipeline.id", ec.PipelineID),
	}
}
