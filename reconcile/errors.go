package reconcile

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is; the typed errors below unwrap
// to the specific sentinel and also match their category.
var (
	// ErrConfiguration is the category of every caller-side mistake:
	// unknown method names, missing residuals, bad parameters.
	ErrConfiguration = errors.New("reconcile: configuration error")

	// ErrUnknownMethod indicates a method name the reconciler does not know.
	ErrUnknownMethod = errors.New("reconcile: unknown method")

	// ErrResidualsRequired indicates a residual-based method was invoked without residuals.
	ErrResidualsRequired = errors.New("reconcile: residuals required")

	// ErrNotImplemented marks a recognised but unimplemented method.
	ErrNotImplemented = errors.New("reconcile: not implemented")

	// ErrNumerical is the category of numerical-validity failures.
	ErrNumerical = errors.New("reconcile: numerical error")

	// ErrNotPositiveDefinite indicates a weight matrix with an eigenvalue below threshold.
	ErrNotPositiveDefinite = errors.New("reconcile: weight matrix must be positive definite")

	// ErrSingular indicates a matrix that could not be inverted.
	ErrSingular = errors.New("reconcile: singular matrix")

	// ErrNonFiniteProportion indicates a top-down proportion that is NaN or Inf,
	// usually caused by a zero historical top-level value.
	ErrNonFiniteProportion = errors.New("reconcile: non-finite proportion")

	// ErrDimensionMismatch indicates inputs whose shapes do not agree with S.
	ErrDimensionMismatch = errors.New("reconcile: dimension mismatch")
)

// ConfigError is returned when a method is invoked with an invalid configuration.
type ConfigError struct {
	Method  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Method, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap returns the specific sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError creates a ConfigError wrapping err.
func NewConfigError(method string, err error, format string, args ...any) *ConfigError {
	return &ConfigError{Method: method, Message: fmt.Sprintf(format, args...), Err: err}
}

// NumericalError is returned when a computation cannot produce a valid result.
type NumericalError struct {
	Method  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical error in %s: %s", e.Method, e.Message)
}

// Unwrap returns the specific sentinel.
func (e *NumericalError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *NumericalError) Is(target error) bool {
	return target == ErrNumerical
}

// NewNumericalError creates a NumericalError wrapping err.
func NewNumericalError(method string, err error, format string, args ...any) *NumericalError {
	return &NumericalError{Method: method, Message: fmt.Sprintf(format, args...), Err: err}
}
