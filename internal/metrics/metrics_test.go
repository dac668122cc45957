package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

func TestMassDrift(t *testing.T) {
	m := NewMassDrift()

	m.Observe(0, []float64{1, 2, 3}, nil)
	m.Observe(1, []float64{2, 2, 3}, nil)
	m.Observe(2, []float64{1, 1, 3}, nil)

	if math.Abs(m.Value()-1.0) > 1e-12 {
		t.Errorf("expected drift 1, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestMassAdded(t *testing.T) {
	m := NewMassAdded()
	m.Observe(0, []float64{10, 10}, nil)
	m.Observe(1, []float64{15, 12}, nil)

	if m.Value() != 7 {
		t.Errorf("expected 7, got %f", m.Value())
	}
}

func TestNegativity(t *testing.T) {
	n := NewNegativity()
	if n.Value() != 0 {
		t.Error("expected zero before observations")
	}

	n.Observe(0, []float64{1, 1}, nil)
	n.Observe(1, []float64{1, -1}, nil)
	if n.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", n.Value())
	}
}

func TestPeakAndFinal(t *testing.T) {
	peak := NewPeakMass(1, "ocean")
	final := NewFinalMass(1, "ocean")

	for i, v := range []float64{-3, -1, -2} {
		x := []float64{0, v}
		peak.Observe(float64(i), x, nil)
		final.Observe(float64(i), x, nil)
	}

	if peak.Name() != "peak_ocean" {
		t.Errorf("unexpected name %s", peak.Name())
	}
	if peak.Value() != -1 {
		t.Errorf("expected peak -1, got %f", peak.Value())
	}
	if final.Value() != -2 {
		t.Errorf("expected final -2, got %f", final.Value())
	}
}

func TestCollect(t *testing.T) {
	tr := &dynamo.Trajectory[complex128]{
		Times:  []float64{0, 1},
		States: []dynamo.State[complex128]{{1, 2}, {1 + 0.5i, 3 - 2i}},
	}

	drift := NewMassDrift()
	drift.Observe(0, []float64{100}, nil)

	got := Collect(tr, []dynamo.Metric{drift, NewMaxImag(), NewFinalMass(1, "b")})

	if got["mass_drift"] != 1 {
		t.Errorf("expected drift 1 after reset, got %f", got["mass_drift"])
	}
	if got["max_imag"] != 2 {
		t.Errorf("expected max imag 2, got %f", got["max_imag"])
	}
	if got["final_b"] != 3 {
		t.Errorf("expected final 3, got %f", got["final_b"])
	}
}
