// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-tally/internal/domain"
)

// Unit represents the fundamental building block of a scoring pipeline.
// Each Unit performs a specific transformation on the scoring State,
// such as computing option totals or criterion weight shares.
// Units should be stateless and thread-safe for concurrent execution.
type Unit interface {
	// Name returns a unique identifier for this unit.
	// The name is used for logging, debugging, and configuration.
	Name() string

	// Execute performs the unit's transformation on the provided State.
	// It returns a new State containing the results of the transformation.
	// The original State should not be modified (immutability principle).
	// Any errors during execution should be returned rather than panicking.
	//
	// Example:
	//
	//	newState, err := unit.Execute(ctx, state)
	//	if err != nil {
	//	    return state, fmt.Errorf("unit %s failed: %w", unit.Name(), err)
	//	}
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks if the unit is properly configured and ready for execution.
	// It is typically called during pipeline construction.
	Validate() error
}

// UnitFactory builds a Unit from its identifier and a decoded parameter map.
type UnitFactory func(id string, config map[string]any) (Unit, error)

// UnitRegistry creates units by type name.
type UnitRegistry interface {
	// CreateUnit instantiates a unit of unitType named id.
	CreateUnit(unitType string, id string, config map[string]any) (Unit, error)

	// Register adds or replaces the factory for unitType.
	Register(unitType string, factory UnitFactory) error

	// SupportedTypes lists the registered unit types in sorted order.
	SupportedTypes() []string
}
