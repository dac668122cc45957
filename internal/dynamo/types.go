package dynamo

import (
	"math"
	"math/cmplx"
)

// Scalar is the set of element types a State may carry. Complex state lets
// derivative functions produce values such as fractional powers of negative
// numbers without aborting an integration.
type Scalar interface {
	float64 | complex128
}

// FromReal converts a real value into the scalar type T.
func FromReal[T Scalar](x float64) T {
	return Compose[T](x, 0)
}

// Compose builds a T from its parts; im is dropped for real scalars.
func Compose[T Scalar](re, im float64) T {
	var z T
	switch p := any(&z).(type) {
	case *float64:
		*p = re
	case *complex128:
		*p = complex(re, im)
	}
	return z
}

// RealPart returns the real component of v.
func RealPart[T Scalar](v T) float64 {
	switch x := any(v).(type) {
	case float64:
		return x
	case complex128:
		return real(x)
	}
	return 0
}

// ImagPart returns the imaginary component of v, zero for real scalars.
func ImagPart[T Scalar](v T) float64 {
	if x, ok := any(v).(complex128); ok {
		return imag(x)
	}
	return 0
}

func isFinite[T Scalar](v T) bool {
	switch x := any(v).(type) {
	case float64:
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	case complex128:
		return !cmplx.IsNaN(x) && !cmplx.IsInf(x)
	}
	return false
}

// State is a mass (or generic ODE) vector.
type State[T Scalar] []T

func (s State[T]) Clone() State[T] {
	c := make(State[T], len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State[T]) IsValid() bool {
	for _, v := range s {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func (s State[T]) Add(other State[T]) State[T] {
	result := make(State[T], len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State[T]) Scale(factor float64) State[T] {
	f := FromReal[T](factor)
	result := make(State[T], len(s))
	for i := range s {
		result[i] = s[i] * f
	}
	return result
}

func (s State[T]) Real() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = RealPart(v)
	}
	return out
}

func (s State[T]) Imag() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = ImagPart(v)
	}
	return out
}

// Sum adds every component.
func (s State[T]) Sum() T {
	var total T
	for _, v := range s {
		total += v
	}
	return total
}

// FromReals lifts a real vector into State[T].
func FromReals[T Scalar](xs []float64) State[T] {
	out := make(State[T], len(xs))
	for i, x := range xs {
		out[i] = FromReal[T](x)
	}
	return out
}

// Func is the right-hand side f(t, y) of dy/dt = f(t, y). Implementations must
// not modify y and must return a freshly allocated vector.
type Func[T Scalar] func(t float64, y State[T]) (State[T], error)

// Stepper advances y by one fixed step h.
type Stepper[T Scalar] interface {
	Name() string
	Stages() int
	Step(f Func[T], t float64, y State[T], h float64) (State[T], error)
}

// Metric observes a trajectory one sample at a time.
type Metric interface {
	Name() string
	Observe(t float64, re, im []float64)
	Value() float64
	Reset()
}

// Trajectory is the full output of a fixed-step run.
type Trajectory[T Scalar] struct {
	Times  []float64
	States []State[T]
}

// Real drops imaginary parts, returning one real vector per sample.
func (tr *Trajectory[T]) Real() [][]float64 {
	out := make([][]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = s.Real()
	}
	return out
}

// Final returns the last sample.
func (tr *Trajectory[T]) Final() State[T] {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Series extracts the real part of one component over time.
func (tr *Trajectory[T]) Series(idx int) []float64 {
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		if idx < len(s) {
			out[i] = RealPart(s[idx])
		}
	}
	return out
}

// IsValid reports whether every sample is finite.
func (tr *Trajectory[T]) IsValid() bool {
	for _, s := range tr.States {
		if !s.IsValid() {
			return false
		}
	}
	return true
}
