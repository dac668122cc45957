package carbon

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/forcing"
)

// FluxODE is dM/dt = K·M plus a forcing term. K and the forcing spec are
// fixed at construction and only read afterwards.
type FluxODE struct {
	k       *mat.Dense
	n       int
	forcing forcing.Spec
}

// NewFluxODE copies k; spec.Target must address one of its boxes.
func NewFluxODE(k mat.Matrix, spec forcing.Spec) (*FluxODE, error) {
	r, c := k.Dims()
	if r != c {
		return nil, dynamo.Shapef("flux ode", "rate matrix is %dx%d, want square", r, c)
	}
	if err := spec.Validate(r); err != nil {
		return nil, err
	}
	return &FluxODE{k: mat.DenseCopyOf(k), n: r, forcing: spec}, nil
}

// ForTopology builds the ODE from the topology's cached rate coefficients.
func ForTopology(t *Topology, spec forcing.Spec) (*FluxODE, error) {
	return NewFluxODE(t.k, spec)
}

func (o *FluxODE) Dim() int              { return o.n }
func (o *FluxODE) Forcing() forcing.Spec { return o.forcing }

// Derivative evaluates dM/dt at (t, m) into a new vector; m is not modified.
// Complex masses are handled as K·Re(m) + i·K·Im(m) since K is real.
func Derivative[T dynamo.Scalar](o *FluxODE, t float64, m dynamo.State[T]) (dynamo.State[T], error) {
	if len(m) != o.n {
		return nil, dynamo.Shapef("flux ode", "rate matrix is %dx%d, mass vector has %d", o.n, o.n, len(m))
	}

	spec := o.forcing
	value := spec.Scenario.Value(t)

	re := m.Real()
	if spec.Mode == forcing.AddToMass {
		re[spec.Target] += value
	}
	dre := mat.NewVecDense(o.n, nil)
	dre.MulVec(o.k, mat.NewVecDense(o.n, re))

	im := m.Imag()
	var dim *mat.VecDense
	if hasImag(im) {
		dim = mat.NewVecDense(o.n, nil)
		dim.MulVec(o.k, mat.NewVecDense(o.n, im))
	}

	out := make(dynamo.State[T], o.n)
	for i := range out {
		imPart := 0.0
		if dim != nil {
			imPart = dim.AtVec(i)
		}
		out[i] = dynamo.Compose[T](dre.AtVec(i), imPart)
	}
	if spec.Mode == forcing.AddToDerivative {
		out[spec.Target] += dynamo.FromReal[T](value)
	}
	return out, nil
}

// System adapts o to the integrator interface.
func System[T dynamo.Scalar](o *FluxODE) dynamo.Func[T] {
	return func(t float64, m dynamo.State[T]) (dynamo.State[T], error) {
		return Derivative(o, t, m)
	}
}

func hasImag(im []float64) bool {
	for _, v := range im {
		if v != 0 {
			return true
		}
	}
	return false
}
