package experiment

import (
	"context"

	"github.com/san-kum/carbonbox/internal/carbon"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/integrators"
	"github.com/san-kum/carbonbox/internal/metrics"
)

// PowerLawRun describes a run of the nonlinear power-law system.
type PowerLawRun struct {
	System     carbon.PowerLaw
	Integrator string
	Y0         []float64
	T0, Tf     float64
	Steps      int
}

// PowerLawResult holds real and imaginary parts per sample.
type PowerLawResult struct {
	Times   []float64
	Real    [][]float64
	Imag    [][]float64
	MaxImag float64
}

// RunPowerLaw integrates the system on complex state.
func RunPowerLaw(ctx context.Context, p PowerLawRun) (*PowerLawResult, error) {
	if len(p.Y0) != p.System.Dim() {
		return nil, dynamo.Shapef("power law", "initial state has %d components, want %d", len(p.Y0), p.System.Dim())
	}
	stepper, err := integrators.New[complex128](p.Integrator)
	if err != nil {
		return nil, err
	}
	tr, err := integrators.Integrate(ctx, stepper, p.System.Derive, p.T0, p.Tf, dynamo.FromReals[complex128](p.Y0), p.Steps)
	if err != nil {
		return nil, err
	}

	res := &PowerLawResult{Times: tr.Times, Real: tr.Real(), Imag: make([][]float64, len(tr.States))}
	for i, s := range tr.States {
		res.Imag[i] = s.Imag()
	}
	res.MaxImag = metrics.Collect(tr, []dynamo.Metric{metrics.NewMaxImag()})["max_imag"]
	return res, nil
}
