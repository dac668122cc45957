package carbon

import (
	"math/cmplx"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// PowerLaw is the nonlinear test system dy/dt = A·y^B. With Coupled set it
// is the two-box exchange dy0/dt = A·y1^B, dy1/dt = -A·y0^B. For B off the
// integers a box that overshoots below zero yields complex rates, which is
// why it only runs on complex state.
type PowerLaw struct {
	A, B    float64
	Coupled bool
}

func (p PowerLaw) Dim() int {
	if p.Coupled {
		return 2
	}
	return 1
}

func (p PowerLaw) Derive(t float64, y dynamo.State[complex128]) (dynamo.State[complex128], error) {
	if len(y) != p.Dim() {
		return nil, dynamo.Shapef("power law", "state has %d components, want %d", len(y), p.Dim())
	}
	a, b := complex(p.A, 0), complex(p.B, 0)
	if p.Coupled {
		return dynamo.State[complex128]{
			a * cmplx.Pow(y[1], b),
			-a * cmplx.Pow(y[0], b),
		}, nil
	}
	return dynamo.State[complex128]{a * cmplx.Pow(y[0], b)}, nil
}
