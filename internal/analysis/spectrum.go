package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// Spectrum removes the least-squares linear trend from series, sampled
// every h time units, and returns the one-sided amplitude spectrum. freqs
// are in cycles per time unit.
func Spectrum(series []float64, h float64) (freqs, amps []float64, err error) {
	n := len(series)
	if n < 4 {
		return nil, nil, dynamo.Shapef("spectrum", "need at least 4 samples, got %d", n)
	}
	if !(h > 0) {
		return nil, nil, dynamo.Configf("spectrum", "sample spacing must be positive, got %g", h)
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(x, series, nil, false)
	detrended := make([]float64, n)
	for i, v := range series {
		detrended[i] = v - (alpha + beta*x[i])
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, detrended)

	freqs = make([]float64, len(coeff))
	amps = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / h
		amps[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return freqs, amps, nil
}

// DominantPeriod returns the period and amplitude of the strongest
// non-constant component of series.
func DominantPeriod(series []float64, h float64) (period, amplitude float64, err error) {
	freqs, amps, err := Spectrum(series, h)
	if err != nil {
		return 0, 0, err
	}
	best := 1
	for i := 2; i < len(amps); i++ {
		if amps[i] > amps[best] {
			best = i
		}
	}
	return 1 / freqs[best], amps[best], nil
}
