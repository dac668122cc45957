package forcing

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// Scenario is a time-dependent source term. Value must be pure: no I/O and
// no state carried between calls.
type Scenario interface {
	Name() string
	Value(t float64) float64
}

// None returns zero for all t.
type None struct{}

func (None) Name() string            { return "none" }
func (None) Value(t float64) float64 { return 0 }

// Wave selects the periodic function of a Periodic scenario.
type Wave int

const (
	Sine Wave = iota
	Cosine
)

func (w Wave) String() string {
	if w == Cosine {
		return "cosine"
	}
	return "sine"
}

// ParseWave accepts "sine"/"sin" and "cosine"/"cos".
func ParseWave(s string) (Wave, error) {
	switch strings.ToLower(s) {
	case "", "sine", "sin":
		return Sine, nil
	case "cosine", "cos":
		return Cosine, nil
	}
	return Sine, dynamo.Configf("periodic", "unknown wave kind %q", s)
}

// Periodic is amplitude*wave(2π/period*(t-ref)), optionally on top of a
// baseline scenario.
type Periodic struct {
	wave      Wave
	amplitude float64
	period    float64
	ref       float64
	baseline  Scenario
}

// NewPeriodic validates amplitude and period; baseline may be nil.
func NewPeriodic(wave Wave, amplitude, period, referenceYear float64, baseline Scenario) (*Periodic, error) {
	if !(amplitude > 0) {
		return nil, dynamo.Configf("periodic", "amplitude must be positive, got %g", amplitude)
	}
	if !(period > 0) {
		return nil, dynamo.Configf("periodic", "period must be positive, got %g", period)
	}
	return &Periodic{wave: wave, amplitude: amplitude, period: period, ref: referenceYear, baseline: baseline}, nil
}

func (p *Periodic) Name() string {
	name := fmt.Sprintf("%s(A=%g,P=%g)", p.wave, p.amplitude, p.period)
	if p.baseline != nil {
		name += "+" + p.baseline.Name()
	}
	return name
}

func (p *Periodic) Value(t float64) float64 {
	arg := 2 * math.Pi / p.period * (t - p.ref)
	v := p.amplitude * math.Sin(arg)
	if p.wave == Cosine {
		v = p.amplitude * math.Cos(arg)
	}
	if p.baseline != nil {
		v += p.baseline.Value(t)
	}
	return v
}

// DampedExponential is amplitude*exp(-(2π/(k*period))*(t-ref)). Positive k
// decays after ref, negative k grows.
type DampedExponential struct {
	amplitude float64
	period    float64
	ref       float64
	k         float64
	baseline  Scenario
}

func NewDampedExponential(amplitude, period, referenceYear, k float64, baseline Scenario) (*DampedExponential, error) {
	if !(amplitude > 0) {
		return nil, dynamo.Configf("exponential", "amplitude must be positive, got %g", amplitude)
	}
	if !(period > 0) {
		return nil, dynamo.Configf("exponential", "period must be positive, got %g", period)
	}
	if k == 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, dynamo.Configf("exponential", "rate multiplier must be finite and non-zero, got %g", k)
	}
	return &DampedExponential{amplitude: amplitude, period: period, ref: referenceYear, k: k, baseline: baseline}, nil
}

func (d *DampedExponential) Name() string {
	name := fmt.Sprintf("exp(A=%g,P=%g,k=%g)", d.amplitude, d.period, d.k)
	if d.baseline != nil {
		name += "+" + d.baseline.Name()
	}
	return name
}

func (d *DampedExponential) Value(t float64) float64 {
	v := d.amplitude * math.Exp(-(2*math.Pi/(d.k*d.period))*(t-d.ref))
	if d.baseline != nil {
		v += d.baseline.Value(t)
	}
	return v
}
