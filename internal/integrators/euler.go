package integrators

import "github.com/san-kum/carbonbox/internal/dynamo"

// Euler is the explicit first-order method, kept for step-size studies
// against RK4.
type Euler[T dynamo.Scalar] struct{}

func NewEuler[T dynamo.Scalar]() *Euler[T] {
	return &Euler[T]{}
}

func (e *Euler[T]) Name() string { return "euler" }
func (e *Euler[T]) Stages() int  { return 1 }

func (e *Euler[T]) Step(f dynamo.Func[T], t float64, x dynamo.State[T], h float64) (dynamo.State[T], error) {
	dx, err := f(t, x)
	if err != nil {
		return nil, err
	}
	if len(dx) != len(x) {
		return nil, dynamo.Shapef("euler", "derivative has length %d, state has %d", len(dx), len(x))
	}
	hT := dynamo.FromReal[T](h)
	result := make(dynamo.State[T], len(x))
	for i := range x {
		result[i] = x[i] + hT*dx[i]
	}
	return result, nil
}
