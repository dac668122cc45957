package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrShape indicates mismatched dimensions between matrices and vectors.
	ErrShape = errors.New("dynamo: shape mismatch")

	// ErrDomain indicates a value outside the mathematical domain of an
	// operation, such as a non-positive mass used as a divisor.
	ErrDomain = errors.New("dynamo: value outside domain")

	// ErrConfig indicates invalid integrator bounds or forcing parameters.
	ErrConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// ShapeError reports a dimension mismatch detected by Op.
type ShapeError struct {
	Op  string
	Msg string
}

func (e *ShapeError) Error() string { return fmt.Sprintf("%s: %s: %s", ErrShape, e.Op, e.Msg) }
func (e *ShapeError) Unwrap() error { return ErrShape }

// DomainError reports an out-of-domain value detected by Op.
type DomainError struct {
	Op  string
	Msg string
}

func (e *DomainError) Error() string { return fmt.Sprintf("%s: %s: %s", ErrDomain, e.Op, e.Msg) }
func (e *DomainError) Unwrap() error { return ErrDomain }

// ConfigError reports an invalid parameter detected by Op.
type ConfigError struct {
	Op  string
	Msg string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("%s: %s: %s", ErrConfig, e.Op, e.Msg) }
func (e *ConfigError) Unwrap() error { return ErrConfig }

func Shapef(op, format string, args ...any) error {
	return &ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Domainf(op, format string, args ...any) error {
	return &DomainError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Configf(op, format string, args ...any) error {
	return &ConfigError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
