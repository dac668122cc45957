package integrators

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// MinSteps is the smallest step count a run uses. Smaller requests are raised
// to it rather than rejected.
const MinSteps = 2

// Integrate marches y0 from t0 to tf in steps equal steps of h = (tf-t0)/steps
// and returns all steps+1 samples. Sample times accumulate t+h so each step
// starts at exactly the time the previous step's last stage used. The context is checked between steps only.
// No partial trajectory is returned on failure.
func Integrate[T dynamo.Scalar](ctx context.Context, s dynamo.Stepper[T], f dynamo.Func[T], t0, tf float64, y0 dynamo.State[T], steps int) (*dynamo.Trajectory[T], error) {
	if err := validate(t0, tf, len(y0)); err != nil {
		return nil, err
	}
	if steps < MinSteps {
		steps = MinSteps
	}

	h := (tf - t0) / float64(steps)
	tr := &dynamo.Trajectory[T]{
		Times:  make([]float64, steps+1),
		States: make([]dynamo.State[T], steps+1),
	}

	y := y0.Clone()
	tr.Times[0] = t0
	tr.States[0] = y.Clone()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		t := tr.Times[i]
		next, err := s.Step(f, t, y, h)
		if err != nil {
			return nil, &dynamo.SimulationError{Step: i, Time: t, Wrapped: err}
		}

		y = next
		tr.Times[i+1] = t + h
		tr.States[i+1] = y.Clone()
	}

	return tr, nil
}

func validate(t0, tf float64, dim int) error {
	if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsNaN(tf) || math.IsInf(tf, 0) {
		return dynamo.Configf("integrate", "bounds must be finite, got [%g, %g]", t0, tf)
	}
	if tf == t0 {
		return dynamo.Configf("integrate", "zero-length interval at t=%g", t0)
	}
	if dim == 0 {
		return dynamo.Configf("integrate", "initial state is empty")
	}
	return nil
}

var registry = map[string]bool{"rk4": true, "euler": true}

// New returns the stepper registered under name.
func New[T dynamo.Scalar](name string) (dynamo.Stepper[T], error) {
	switch name {
	case "rk4":
		return NewRK4[T](), nil
	case "euler":
		return NewEuler[T](), nil
	}
	return nil, dynamo.Configf("integrators", "unknown integrator: %s", name)
}

// Names lists registered integrators in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
