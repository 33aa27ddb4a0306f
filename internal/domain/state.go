// Package domain contains the pure domain models of the scoring engine:
// decisions, criteria, options, ratings, score reports, and the State that
// carries them through a pipeline. Its only dependency is an exact decimal
// type.
package domain

import (
	"maps"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Key represents a type-safe generic key for accessing values in State.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating the need for runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
// This function is provided for creating keys outside of the domain package.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Predefined state keys used throughout a scoring run.
// Each key is strongly typed to ensure type safety at compile time.
var (
	// KeyDecision stores the decision snapshot being scored.
	KeyDecision = Key[DecisionAggregate]{"decision"}

	// KeyRatings stores every participant rating of the decision.
	KeyRatings = Key[[]Rating]{"ratings"}

	// KeyScoreReport stores the report produced by the score aggregator.
	KeyScoreReport = Key[*ScoreReport]{"score_report"}

	// KeyWeightShares stores the display share of each criterion's weight.
	KeyWeightShares = Key[[]WeightShare]{"weight_shares"}

	// Execution context keys for tracking metadata across a pipeline run.

	// KeyPipelineID stores the identifier of the pipeline being executed.
	KeyPipelineID = Key[string]{"execution.pipeline_id"}

	// KeyDecisionID stores the identifier of the decision being scored,
	// duplicated here so observability does not need the full snapshot.
	KeyDecisionID = Key[string]{"execution.decision_id"}

	// KeyExecutionID stores a unique identifier for this specific execution
	// instance, useful for tracing and correlation.
	KeyExecutionID = Key[string]{"execution.execution_id"}
)

// deepCopyValue creates a deep copy of a value to ensure true immutability.
// It handles slices, maps, and other reference types that would otherwise
// allow external modification of State data.
func deepCopyValue(value any) any {
	if value == nil {
		return nil
	}

	// time.Time is immutable and can be returned directly.
	if val, ok := value.(time.Time); ok {
		return val
	}

	// decimal.Decimal has unexported fields and value semantics.
	if val, ok := value.(decimal.Decimal); ok {
		return val
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice:
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(reflect.ValueOf(deepCopyValue(v.Index(i).Interface())))
		}
		return newSlice.Interface()

	case reflect.Map:
		newMap := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			copiedKey := deepCopyValue(key.Interface())
			copiedValue := deepCopyValue(v.MapIndex(key).Interface())
			newMap.SetMapIndex(reflect.ValueOf(copiedKey), reflect.ValueOf(copiedValue))
		}
		return newMap.Interface()

	case reflect.Ptr:
		if v.IsNil() {
			return v.Interface()
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(reflect.ValueOf(deepCopyValue(v.Elem().Interface())))
		return newPtr.Interface()

	case reflect.Struct:
		// This performs a shallow copy for unexported fields but deep copies
		// exported fields.
		newStruct := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if newStruct.Field(i).CanSet() {
				newStruct.Field(i).Set(reflect.ValueOf(deepCopyValue(v.Field(i).Interface())))
			}
		}
		return newStruct.Interface()

	default:
		// Primitive types are returned as-is since they are copied by value.
		return value
	}
}

// State represents an immutable collection of evaluation data that flows
// through the pipeline. It uses copy-on-write semantics to ensure
// thread-safety and prevent unintended mutations. State is the primary
// data structure for passing information between Units.
type State struct {
	// data holds the key-value pairs that make up the state.
	// It is unexported to maintain immutability guarantees.
	data map[string]any
}

// NewState creates a new empty State.
// The returned State is ready to use and can be safely shared across
// goroutines.
func NewState() State {
	return State{
		data: make(map[string]any),
	}
}

// Get retrieves a value from the State with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and contains a value of the correct type. The returned value is a deep
// copy to maintain immutability.
//
// Example:
//
//	ratings, ok := Get(state, KeyRatings)
//	if !ok {
//	    // handle missing value
//	}
//	// ratings is typed as []Rating, no type assertion needed
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}

	copied := deepCopyValue(value)
	val, ok := copied.(T)
	return val, ok
}

// With creates a new State with the specified key-value pair added or
// updated. It implements copy-on-write semantics, returning a new State
// instance while leaving the original unchanged. This function is the
// primary way to add or update data in a State.
//
// Example:
//
//	newState := With(state, KeyRatings, ratings)
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	newData[key.name] = deepCopyValue(value)
	return State{data: newData}
}

// WithMultiple creates a new State with multiple key-value pairs added
// or updated. It is more efficient than chaining multiple With calls as
// it performs a single clone operation. The updates map uses string keys
// for flexibility when updating multiple values at once.
//
// Example:
//
//	updates := map[string]any{
//	    KeyDecisionID.name: "d1",
//	    KeyRatings.name:    []Rating{{ID: "r1", Value: 5}},
//	}
//	newState := state.WithMultiple(updates)
func (s State) WithMultiple(updates map[string]any) State {
	newData := maps.Clone(s.data)
	for k, v := range updates {
		newData[k] = deepCopyValue(v)
	}
	return State{data: newData}
}

// ExecutionContext contains metadata about the current scoring run that
// flows through the State. It provides consistent access to execution
// metadata for middleware and observability.
type ExecutionContext struct {
	// PipelineID is the identifier of the pipeline being executed.
	PipelineID string

	// DecisionID is the identifier of the decision being scored.
	DecisionID string

	// ExecutionID is a unique identifier for this specific execution instance.
	ExecutionID string
}

// WithExecutionContext creates a new State with execution context metadata
// included. It should be called before a pipeline starts.
func (s State) WithExecutionContext(ctx ExecutionContext) State {
	updates := map[string]any{
		KeyPipelineID.name:  ctx.PipelineID,
		KeyDecisionID.name:  ctx.DecisionID,
		KeyExecutionID.name: ctx.ExecutionID,
	}
	return s.WithMultiple(updates)
}

// GetExecutionContext extracts execution context metadata from the State.
// It returns the execution context and a boolean indicating whether all
// required context fields are present.
func (s State) GetExecutionContext() (ExecutionContext, bool) {
	pipelineID, ok1 := Get(s, KeyPipelineID)
	decisionID, ok2 := Get(s, KeyDecisionID)
	executionID, ok3 := Get(s, KeyExecutionID)

	if !ok1 || !ok2 || !ok3 {
		return ExecutionContext{}, false
	}

	return ExecutionContext{
		PipelineID:  pipelineID,
		DecisionID:  decisionID,
		ExecutionID: executionID,
	}, true
}

// Require retrieves a value like Get, but reports a *StateError wrapping
// ErrKeyNotFound when the key is absent.
func Require[T any](s State, key Key[T]) (T, error) {
	value, ok := Get(s, key)
	if !ok {
		var zero T
		if _, exists := s.data[key.name]; exists {
			return zero, NewStateError(key.name, "Get", ErrTypeMismatch)
		}
		return zero, NewStateError(key.name, "Get", ErrKeyNotFound)
	}
	return value, nil
}

// Name returns the key's name as stored in the State.
func (k Key[T]) Name() string { return k.name }
