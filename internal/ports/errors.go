package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while loading inputs or
// publishing results.
var (
	// ErrSnapshotNotFound indicates that a requested decision snapshot does
	// not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrUnsupportedFormat indicates that an output format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidConfig indicates that configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSnapshot indicates that a snapshot failed validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// SnapshotError represents an error from loading a decision snapshot.
// It includes the snapshot reference and the operation that failed.
type SnapshotError struct {
	// Ref identifies the snapshot, typically a file path.
	Ref string

	// Operation is the name of the loading step that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for SnapshotError.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot error: operation=%s, ref=%s, err=%v", e.Operation, e.Ref, e.Err)
}

// Unwrap returns the underlying error.
func (e *SnapshotError) Unwrap() error { return e.Err }

// NewSnapshotError creates a new SnapshotError with the given details.
func NewSnapshotError(ref, operation string, err error) *SnapshotError {
	return &SnapshotError{
		Ref:       ref,
		Operation: operation,
		Err:       err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
