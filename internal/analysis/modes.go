package analysis

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// ZeroTol is the largest |λ| treated as the conserved mode.
const ZeroTol = 1e-10

// Mode is one eigenvalue of the rate matrix. Timescale is -1/Re(λ) in
// years, +Inf for a conserved mode.
type Mode struct {
	Eigenvalue complex128
	Timescale  float64
}

// Conserved reports whether the mode neither grows nor decays.
func (m Mode) Conserved() bool { return cmplx.Abs(m.Eigenvalue) < ZeroTol }

// Modes returns the eigenvalues of k, slowest first.
func Modes(k mat.Matrix) ([]Mode, error) {
	r, c := k.Dims()
	if r != c {
		return nil, dynamo.Shapef("modes", "rate matrix is %dx%d, want square", r, c)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(k, mat.EigenNone); !ok {
		return nil, dynamo.Domainf("modes", "eigen decomposition did not converge")
	}

	vals := eig.Values(nil)
	modes := make([]Mode, len(vals))
	for i, v := range vals {
		ts := math.Inf(1)
		if cmplx.Abs(v) >= ZeroTol {
			ts = -1 / real(v)
		}
		modes[i] = Mode{Eigenvalue: v, Timescale: ts}
	}

	sort.SliceStable(modes, func(i, j int) bool {
		return math.Abs(real(modes[i].Eigenvalue)) < math.Abs(real(modes[j].Eigenvalue))
	})
	return modes, nil
}
