// Package application wires the scoring units into a runnable engine: it
// loads configuration and decision snapshots, builds the unit pipeline, and
// evaluates snapshots.
package application

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/infrastructure/units"
	"github.com/ahrav/go-tally/internal/ports"
)

// Config is the complete engine configuration and the primary entry point
// for the CLI. Defaults from DefaultConfig are applied before decoding, so
// a file only needs to name the values it changes.
type Config struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`
	// Scoring bounds rating values and evaluation fan-out.
	Scoring ScoringConfig `yaml:"scoring"`
	// Output selects how results are rendered.
	Output OutputConfig `yaml:"output"`
	// Metrics toggles Prometheus collection.
	Metrics MetricsConfig `yaml:"metrics"`
	// Pipeline lists the units to run, in order, for every snapshot.
	Pipeline []UnitConfig `yaml:"pipeline" validate:"required,min=1,dive"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Environment string `yaml:"environment" validate:"required,max=50"`
	ServiceName string `yaml:"service_name" validate:"required,max=100"`
}

// ScoringConfig bounds accepted rating values and evaluation concurrency.
type ScoringConfig struct {
	// MinScore is the lowest rating value a snapshot may contain.
	MinScore int `yaml:"min_score"`
	// MaxScore is the highest rating value a snapshot may contain.
	MaxScore int `yaml:"max_score" validate:"gtfield=MinScore"`
	// Concurrency caps how many snapshots EvaluateAll scores at once.
	Concurrency int `yaml:"concurrency" validate:"min=1,max=256"`
}

// OutputConfig selects the result renderer.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=table csv json"`
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"omitempty,metricname,max=64"`
}

// UnitConfig declares a single pipeline unit.
type UnitConfig struct {
	// ID is the unique identifier for this unit within the pipeline.
	ID string `yaml:"id" validate:"required,alphanum,min=1,max=100"`
	// Type names the unit implementation registered in the UnitRegistry.
	Type string `yaml:"type" validate:"required,oneof=normalized_score weight_share"`
	// Parameters holds type-specific settings.
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// configValidator is shared by every config load; validator.Validate is
// safe for concurrent use once its validations are registered.
var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		panic(fmt.Sprintf("register config validators: %v", err))
	}
	return v
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Version: "1.0.0",
		Logging: LoggingConfig{
			Level:       "info",
			Environment: "production",
			ServiceName: "tally",
		},
		Scoring: ScoringConfig{
			MinScore:    0,
			MaxScore:    10,
			Concurrency: 4,
		},
		Output:  OutputConfig{Format: "table"},
		Metrics: MetricsConfig{Enabled: false, Namespace: "tally"},
		Pipeline: []UnitConfig{
			{ID: "shares", Type: units.TypeWeightShare},
			{ID: "scores", Type: units.TypeNormalizedScore},
		},
	}
}

// LoadConfig reads and validates the configuration file at path.
// A missing file is reported as a *ports.ConfigError wrapping
// ports.ErrConfigNotFound.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, ports.NewConfigError(path, fmt.Errorf("%w: %v", ports.ErrConfigNotFound, err))
		}
		return Config{}, ports.NewConfigError(path, fmt.Errorf("failed to read file: %w", err))
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
// Unknown fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, ports.NewConfigError("yaml", fmt.Errorf("YAML decode failed: %w", err))
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and the rules that span fields.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ports.NewConfigError(verrs[0].Namespace(), fmt.Errorf("%w: %v", ports.ErrInvalidConfig, err))
		}
		return ports.NewConfigError("config", fmt.Errorf("%w: %v", ports.ErrInvalidConfig, err))
	}

	seen := make(map[string]struct{}, len(c.Pipeline))
	for i, unit := range c.Pipeline {
		if _, dup := seen[unit.ID]; dup {
			return ports.NewConfigError(fmt.Sprintf("pipeline[%d].id", i),
				fmt.Errorf("%w: duplicate unit ID %q", ports.ErrInvalidConfig, unit.ID))
		}
		seen[unit.ID] = struct{}{}

		if err := ValidateUnitParameters(unit.Type, unit.Parameters); err != nil {
			return ports.NewConfigError(fmt.Sprintf("pipeline[%d].parameters", i),
				fmt.Errorf("%w: unit %s: %v", ports.ErrInvalidConfig, unit.ID, err))
		}
	}

	return nil
}
