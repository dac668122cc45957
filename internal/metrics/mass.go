package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MassDrift is the largest |ΣM(t) - ΣM(t0)| seen over a run. For an unforced
// conservative topology it measures integrator round-off.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(t float64, re, im []float64) {
	total := floats.Sum(re)
	if m.samples == 0 {
		m.initial = total
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Abs(total-m.initial))
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// MassAdded is ΣM at the last sample minus ΣM at the first.
type MassAdded struct {
	name           string
	initial, final float64
	samples        int
}

func NewMassAdded() *MassAdded {
	return &MassAdded{name: "mass_added"}
}

func (m *MassAdded) Name() string { return m.name }

func (m *MassAdded) Observe(t float64, re, im []float64) {
	total := floats.Sum(re)
	if m.samples == 0 {
		m.initial = total
	}
	m.final = total
	m.samples++
}

func (m *MassAdded) Value() float64 { return m.final - m.initial }

func (m *MassAdded) Reset() {
	m.initial, m.final = 0, 0
	m.samples = 0
}

// Negativity is the fraction of samples in which some box holds negative
// mass.
type Negativity struct {
	name       string
	violations int
	samples    int
}

func NewNegativity() *Negativity {
	return &Negativity{name: "negativity"}
}

func (n *Negativity) Name() string { return n.name }

func (n *Negativity) Observe(t float64, re, im []float64) {
	n.samples++
	for _, v := range re {
		if v < 0 {
			n.violations++
			break
		}
	}
}

func (n *Negativity) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return float64(n.violations) / float64(n.samples)
}

func (n *Negativity) Reset() {
	n.violations = 0
	n.samples = 0
}
