package application

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-tally/infrastructure/units"
)

// metricNamePattern matches a valid Prometheus metric name component.
var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateUnitParameters validates the parameters for a specific unit type,
// rejecting unknown keys and values of the wrong type.
func ValidateUnitParameters(unitType string, params map[string]any) error {
	switch unitType {
	case units.TypeNormalizedScore:
		return validateNormalizedScoreParams(params)
	case units.TypeWeightShare:
		return validateNoParams(unitType, params)
	default:
		return fmt.Errorf("unknown unit type: %s", unitType)
	}
}

// validateNormalizedScoreParams accepts an optional boolean match_decision.
func validateNormalizedScoreParams(params map[string]any) error {
	allowed := []string{"match_decision"}
	for key, value := range params {
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("normalized_score does not accept parameter %q", key)
		}
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s must be a boolean", key)
		}
	}
	return nil
}

func validateNoParams(unitType string, params map[string]any) error {
	for key := range params {
		return fmt.Errorf("%s does not accept parameter %q", unitType, key)
	}
	return nil
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("metricname", validateMetricName); err != nil {
		return fmt.Errorf("failed to register metricname validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(value, "%d.%d.%d%s", &major, &minor, &patch, &rest)
	return n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateMetricName validates a Prometheus namespace such as "tally".
func validateMetricName(fl validator.FieldLevel) bool {
	return metricNamePattern.MatchString(fl.Field().String())
}
