package carbon

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/forcing"
	"github.com/san-kum/carbonbox/internal/integrators"
)

func TestDeriveRatesColumnSums(t *testing.T) {
	for _, topo := range []*Topology{FourBox(), NineBox()} {
		k, err := DeriveRates(topo.FluxIn(), topo.M0())
		require.NoError(t, err)
		for j, s := range ColumnSums(k) {
			assert.InDelta(t, 0, s, 1e-9, "%s column %d", topo.Name(), j)
		}
	}
}

func TestDeriveRatesValues(t *testing.T) {
	topo := FourBox()
	k := topo.Rates()

	assert.InDelta(t, 90.0/725, k.At(0, 1), 1e-15)
	assert.InDelta(t, 110.0/725, k.At(2, 0), 1e-15)
	assert.InDelta(t, -200.0/725, k.At(0, 0), 1e-15)
	assert.InDelta(t, -110.0/110, k.At(2, 2), 1e-15)
	assert.InDelta(t, -55.0/60, k.At(3, 3), 1e-15)
}

func TestDeriveRatesIdempotent(t *testing.T) {
	topo := NineBox()
	a, err := DeriveRates(topo.FluxIn(), topo.M0())
	require.NoError(t, err)
	b, err := DeriveRates(topo.FluxIn(), topo.M0())
	require.NoError(t, err)

	assert.True(t, mat.Equal(a, b))
	assert.Equal(t, a.RawMatrix().Data, b.RawMatrix().Data)
}

func TestDeriveRatesErrors(t *testing.T) {
	square := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	tests := []struct {
		name   string
		flux   mat.Matrix
		m0     []float64
		target error
	}{
		{"non-square", mat.NewDense(2, 3, nil), []float64{1, 1}, dynamo.ErrShape},
		{"length mismatch", square, []float64{1, 1, 1}, dynamo.ErrShape},
		{"self flux", mat.NewDense(2, 2, []float64{1, 1, 1, 0}), []float64{1, 1}, dynamo.ErrShape},
		{"zero mass", square, []float64{1, 0}, dynamo.ErrDomain},
		{"negative mass", square, []float64{-1, 1}, dynamo.ErrDomain},
		{"nan mass", square, []float64{math.NaN(), 1}, dynamo.ErrDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := DeriveRates(tt.flux, tt.m0)
			assert.Nil(t, k)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestTopologyValidation(t *testing.T) {
	_, err := NewTopology("leaky", []string{"a", "b"}, [][]float64{{0, 1}, {2, 0}}, []float64{1, 1})
	assert.ErrorIs(t, err, dynamo.ErrConfig)

	_, err = NewTopology("negative", []string{"a", "b"}, [][]float64{{0, -1}, {-1, 0}}, []float64{1, 1})
	assert.ErrorIs(t, err, dynamo.ErrDomain)

	_, err = NewTopology("names", []string{"a"}, [][]float64{{0, 1}, {1, 0}}, []float64{1, 1})
	assert.ErrorIs(t, err, dynamo.ErrShape)

	_, err = NewTopology("ragged", []string{"a", "b"}, [][]float64{{0, 1}, {1}}, []float64{1, 1})
	assert.ErrorIs(t, err, dynamo.ErrShape)

	_, err = NewTopology("massless", []string{"a", "b"}, [][]float64{{0, 1}, {1, 0}}, []float64{1, 0})
	assert.ErrorIs(t, err, dynamo.ErrDomain)
}

func TestReferenceTopologies(t *testing.T) {
	four := FourBox()
	assert.Equal(t, 4, four.Len())
	assert.Equal(t, 1620.0, four.TotalMass())
	for _, v := range four.NetFlux() {
		assert.Zero(t, v)
	}

	nine := NineBox()
	assert.Equal(t, 9, nine.Len())
	idx, ok := nine.Box("deep_water")
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
	for _, v := range nine.NetFlux() {
		assert.Zero(t, v)
	}

	assert.True(t, mat.Equal(four.FluxOut(), four.FluxIn().T()))
	assert.Equal(t, []string{"4box", "9box"}, TopologyNames())

	_, err := LookupTopology("12box")
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}

func TestStiffness(t *testing.T) {
	assert.InDelta(t, 1.0, FourBox().Stiffness(), 1e-15)
	assert.InDelta(t, 40.0/3, NineBox().Stiffness(), 1e-12)
}

func TestTopologyAccessorsCopy(t *testing.T) {
	topo := FourBox()
	m0 := topo.M0()
	m0[0] = -1
	k := topo.Rates()
	k.Set(0, 0, 42)

	assert.Equal(t, 725.0, topo.M0()[0])
	assert.NotEqual(t, 42.0, topo.Rates().At(0, 0))
}

func TestTopologyDefRoundTrip(t *testing.T) {
	topo := NineBox()
	again, err := topo.Def().Build()
	require.NoError(t, err)
	assert.True(t, mat.Equal(topo.Rates(), again.Rates()))
}

func TestSteadyStateDerivative(t *testing.T) {
	topo := NineBox()
	ode, err := ForTopology(topo, forcing.Unforced())
	require.NoError(t, err)

	dm, err := Derivative(ode, 0, dynamo.FromReals[float64](topo.M0()))
	require.NoError(t, err)
	for i, v := range dm {
		assert.InDelta(t, 0, v, 1e-12, "box %d", i)
	}
}

type constant float64

func (c constant) Name() string            { return "constant" }
func (c constant) Value(t float64) float64 { return float64(c) }

func TestInjectionModes(t *testing.T) {
	topo := FourBox()
	m0 := dynamo.FromReals[float64](topo.M0())
	k := topo.Rates()

	deriv, err := ForTopology(topo, forcing.Spec{Scenario: constant(10), Target: 0, Mode: forcing.AddToDerivative})
	require.NoError(t, err)
	dm, err := Derivative(deriv, 2000, m0)
	require.NoError(t, err)
	assert.InDelta(t, 10, dm[0], 1e-12)
	for i := 1; i < 4; i++ {
		assert.InDelta(t, 0, dm[i], 1e-12)
	}

	mass, err := ForTopology(topo, forcing.Spec{Scenario: constant(10), Target: 0, Mode: forcing.AddToMass})
	require.NoError(t, err)
	dm, err = Derivative(mass, 2000, m0)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 10*k.At(i, 0), dm[i], 1e-12, "box %d", i)
	}

	assert.Equal(t, dynamo.FromReals[float64](topo.M0()), m0)
}

func TestInjectionModesDiverge(t *testing.T) {
	topo := FourBox()
	run := func(mode forcing.Injection) dynamo.State[float64] {
		ode, err := ForTopology(topo, forcing.Spec{Scenario: constant(5), Target: 0, Mode: mode})
		require.NoError(t, err)
		tr, err := integrators.Integrate(context.Background(), integrators.NewRK4[float64](), System[float64](ode), 0, 50, dynamo.FromReals[float64](topo.M0()), 50)
		require.NoError(t, err)
		return tr.Final()
	}

	a, b := run(forcing.AddToDerivative), run(forcing.AddToMass)
	assert.Greater(t, math.Abs(a[0]-b[0]), 1.0)
	// adding to mass never changes the total, adding to dM/dt does
	assert.InDelta(t, topo.TotalMass(), b.Sum(), 1e-8)
	assert.InDelta(t, topo.TotalMass()+250, a.Sum(), 1e-8)
}

func TestDerivativeShapeMismatch(t *testing.T) {
	ode, err := ForTopology(FourBox(), forcing.Unforced())
	require.NoError(t, err)
	_, err = Derivative(ode, 0, dynamo.State[float64]{1, 2, 3})
	assert.ErrorIs(t, err, dynamo.ErrShape)
}

func TestNewFluxODEErrors(t *testing.T) {
	_, err := NewFluxODE(mat.NewDense(2, 3, nil), forcing.Unforced())
	assert.ErrorIs(t, err, dynamo.ErrShape)

	_, err = NewFluxODE(FourBox().Rates(), forcing.Spec{Scenario: forcing.None{}, Target: 7})
	assert.ErrorIs(t, err, dynamo.ErrShape)
}

func TestDerivativeComplex(t *testing.T) {
	topo := FourBox()
	ode, err := ForTopology(topo, forcing.Unforced())
	require.NoError(t, err)

	m := dynamo.State[complex128]{725 + 1i, 725, 110, 60}
	dm, err := Derivative(ode, 0, m)
	require.NoError(t, err)

	k := topo.Rates()
	for i := range dm {
		assert.InDelta(t, 0, real(dm[i]), 1e-12)
		assert.InDelta(t, k.At(i, 0), imag(dm[i]), 1e-15)
	}
}

func TestMassConservationFourBox(t *testing.T) {
	topo := FourBox()
	ode, err := ForTopology(topo, forcing.Unforced())
	require.NoError(t, err)

	y0 := dynamo.FromReals[complex128]([]float64{725, 725, 110, 60})
	tr, err := integrators.Integrate(context.Background(), integrators.NewRK4[complex128](), System[complex128](ode), 0, 100, y0, 100)
	require.NoError(t, err)

	start, end := tr.States[0].Sum(), tr.Final().Sum()
	assert.Less(t, math.Abs(real(end)-real(start)), 1e-6)
}

func TestMassConservationPerturbed(t *testing.T) {
	topo := NineBox()
	ode, err := ForTopology(topo, forcing.Unforced())
	require.NoError(t, err)

	y0 := dynamo.FromReals[float64](topo.M0())
	y0[0] += 500
	tr, err := integrators.Integrate(context.Background(), integrators.NewRK4[float64](), System[float64](ode), 0, 200, y0, 2000)
	require.NoError(t, err)

	assert.InDelta(t, y0.Sum(), tr.Final().Sum(), 1e-6)
	assert.Less(t, tr.Final()[0], y0[0])
}

func TestA2Scenario(t *testing.T) {
	topo := FourBox()
	a2, err := forcing.LookupTable("A2")
	require.NoError(t, err)
	ode, err := ForTopology(topo, forcing.Spec{Scenario: a2, Target: 0})
	require.NoError(t, err)

	tr, err := integrators.Integrate(context.Background(), integrators.NewRK4[complex128](), System[complex128](ode), 1850, 2100, dynamo.FromReals[complex128](topo.M0()), 250)
	require.NoError(t, err)
	require.Len(t, tr.States, 251)
	assert.True(t, tr.IsValid())

	atm := tr.Series(0)
	for i := 200; i < len(atm); i++ {
		assert.Greater(t, atm[i], atm[i-1], "year %g", tr.Times[i])
	}

	// total mass grows by the integral of the emission table
	added := real(tr.Final().Sum()) - topo.TotalMass()
	assert.InDelta(t, 2344.375, added, 1e-6)
	for _, s := range tr.States {
		for _, v := range s {
			assert.Zero(t, imag(v))
		}
	}
}

func TestPowerLawComplex(t *testing.T) {
	p := PowerLaw{A: -1, B: 0.8, Coupled: true}
	tr, err := integrators.Integrate(context.Background(), integrators.NewRK4[complex128](), p.Derive, -10, 0, dynamo.State[complex128]{100, 100}, 1000)
	require.NoError(t, err)
	assert.True(t, tr.IsValid())

	single := PowerLaw{A: -1, B: 1}
	tr, err = integrators.Integrate(context.Background(), integrators.NewRK4[complex128](), single.Derive, 0, 1, dynamo.State[complex128]{1}, 1000)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-1), real(tr.Final()[0]), 1e-6)

	_, err = p.Derive(0, dynamo.State[complex128]{1})
	assert.ErrorIs(t, err, dynamo.ErrShape)
}
