package metrics

import (
	"fmt"
	"math"
)

// PeakMass tracks the largest mass held by one box.
type PeakMass struct {
	name string
	box  int
	peak float64
	seen bool
}

func NewPeakMass(box int, label string) *PeakMass {
	return &PeakMass{name: fmt.Sprintf("peak_%s", label), box: box}
}

func (p *PeakMass) Name() string { return p.name }

func (p *PeakMass) Observe(t float64, re, im []float64) {
	if p.box >= len(re) {
		return
	}
	if !p.seen || re[p.box] > p.peak {
		p.peak = re[p.box]
	}
	p.seen = true
}

func (p *PeakMass) Value() float64 { return p.peak }

func (p *PeakMass) Reset() {
	p.peak = 0
	p.seen = false
}

// FinalMass is the mass of one box at the last sample.
type FinalMass struct {
	name  string
	box   int
	value float64
}

func NewFinalMass(box int, label string) *FinalMass {
	return &FinalMass{name: fmt.Sprintf("final_%s", label), box: box}
}

func (f *FinalMass) Name() string { return f.name }

func (f *FinalMass) Observe(t float64, re, im []float64) {
	if f.box < len(re) {
		f.value = re[f.box]
	}
}

func (f *FinalMass) Value() float64 { return f.value }
func (f *FinalMass) Reset()         { f.value = 0 }

// MaxImag is the largest |imaginary part| of any component over a run.
type MaxImag struct {
	name string
	max  float64
}

func NewMaxImag() *MaxImag {
	return &MaxImag{name: "max_imag"}
}

func (m *MaxImag) Name() string { return m.name }

func (m *MaxImag) Observe(t float64, re, im []float64) {
	for _, v := range im {
		m.max = math.Max(m.max, math.Abs(v))
	}
}

func (m *MaxImag) Value() float64 { return m.max }
func (m *MaxImag) Reset()         { m.max = 0 }
