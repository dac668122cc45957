package integrators

import "github.com/san-kum/carbonbox/internal/dynamo"

// RK4 is the classic four-stage Runge-Kutta method. Stage buffers are reused
// across steps; the returned state is always freshly allocated.
type RK4[T dynamo.Scalar] struct {
	k1, k2, k3, k4 dynamo.State[T]
	scratch        dynamo.State[T]
}

func NewRK4[T dynamo.Scalar]() *RK4[T] {
	return &RK4[T]{}
}

func (r *RK4[T]) Name() string { return "rk4" }
func (r *RK4[T]) Stages() int  { return 4 }

func (r *RK4[T]) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State[T], n)
		r.k2 = make(dynamo.State[T], n)
		r.k3 = make(dynamo.State[T], n)
		r.k4 = make(dynamo.State[T], n)
		r.scratch = make(dynamo.State[T], n)
	}
}

func (r *RK4[T]) Step(f dynamo.Func[T], t float64, x dynamo.State[T], h float64) (dynamo.State[T], error) {
	n := len(x)
	r.ensureScratch(n)

	hT := dynamo.FromReal[T](h)
	half := dynamo.FromReal[T](0.5)

	if err := stage(f, t, x, n, r.k1, hT); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + r.k1[i]*half
	}
	if err := stage(f, t+h*0.5, r.scratch, n, r.k2, hT); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + r.k2[i]*half
	}
	if err := stage(f, t+h*0.5, r.scratch, n, r.k3, hT); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + r.k3[i]
	}
	if err := stage(f, t+h, r.scratch, n, r.k4, hT); err != nil {
		return nil, err
	}

	result := make(dynamo.State[T], n)
	two := dynamo.FromReal[T](2)
	sixth := dynamo.FromReal[T](1.0 / 6.0)
	for i := 0; i < n; i++ {
		result[i] = x[i] + (r.k1[i]+two*r.k2[i]+two*r.k3[i]+r.k4[i])*sixth
	}

	return result, nil
}

// stage evaluates k = h·f(t, y) into dst.
func stage[T dynamo.Scalar](f dynamo.Func[T], t float64, y dynamo.State[T], n int, dst dynamo.State[T], h T) error {
	dy, err := f(t, y)
	if err != nil {
		return err
	}
	if len(dy) != n {
		return dynamo.Shapef("rk4", "derivative has length %d, state has %d", len(dy), n)
	}
	for i := 0; i < n; i++ {
		dst[i] = h * dy[i]
	}
	return nil
}
