package errors

import (
	"errors"
	"fmt"
)

// Generic error types

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrExternal indicates a failure reported by an external service
	ErrExternal = errors.New("external service error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")
)

// Pipeline error taxonomy

var (
	// ErrSchemaValidation indicates a stage agent's raw output could not be
	// parsed into the expected structure after exhausting retries
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrCapabilityUnavailable indicates the reasoning capability errored,
	// timed out, or hit a quota limit
	ErrCapabilityUnavailable = errors.New("reasoning capability unavailable")

	// ErrDataUnavailable indicates the market data feed is down or the
	// symbol is unknown
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrUpstreamMissing indicates a required upstream stage output is
	// absent or invalid
	ErrUpstreamMissing = errors.New("upstream stage output missing")

	// ErrExecutionRejected indicates the execution gateway rejected an order
	ErrExecutionRejected = errors.New("order rejected by execution gateway")

	// ErrRunTimedOut indicates the run deadline expired before a symbol's
	// pipeline finished
	ErrRunTimedOut = errors.New("run timed out")

	// ErrRateLimitExceeded indicates an API rate limit was exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// StageError wraps an error with the pipeline stage it occurred in
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new stage error
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
