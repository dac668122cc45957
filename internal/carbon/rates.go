package carbon

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// DeriveRates converts an inflow matrix (fluxIn[i][j] is the flow from box j
// into box i) and reference masses into first-order rate coefficients:
//
//	K[i][j] = fluxIn[i][j] / m0[j]         i != j
//	K[j][j] = -sum_i fluxIn[i][j] / m0[j]
//
// Each column of K sums to zero, so K·M conserves total mass.
func DeriveRates(fluxIn mat.Matrix, m0 []float64) (*mat.Dense, error) {
	r, c := fluxIn.Dims()
	if r != c {
		return nil, dynamo.Shapef("derive", "flux matrix is %dx%d, want square", r, c)
	}
	if r != len(m0) {
		return nil, dynamo.Shapef("derive", "flux matrix is %dx%d but %d masses given", r, c, len(m0))
	}
	for i, m := range m0 {
		if !(m > 0) || math.IsInf(m, 0) {
			return nil, dynamo.Domainf("derive", "mass of box %d must be positive and finite, got %g", i, m)
		}
	}
	for i := 0; i < r; i++ {
		if fluxIn.At(i, i) != 0 {
			return nil, dynamo.Shapef("derive", "self-flux %g on diagonal at box %d", fluxIn.At(i, i), i)
		}
	}

	n := r
	k := mat.NewDense(n, n, nil)
	col := make([]float64, n)
	for j := 0; j < n; j++ {
		mat.Col(col, j, fluxIn)
		for i := 0; i < n; i++ {
			if i != j {
				k.Set(i, j, col[i]/m0[j])
			}
		}
		k.Set(j, j, -floats.Sum(col)/m0[j])
	}
	return k, nil
}

// ColumnSums returns the per-column sums of m.
func ColumnSums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	sums := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		sums[j] = floats.Sum(col)
	}
	return sums
}
