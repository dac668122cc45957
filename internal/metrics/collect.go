package metrics

import "github.com/san-kum/carbonbox/internal/dynamo"

// Collect resets each metric, feeds it every sample of tr and returns the
// values by name.
func Collect[T dynamo.Scalar](tr *dynamo.Trajectory[T], ms []dynamo.Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i, s := range tr.States {
		re, im := s.Real(), s.Imag()
		for _, m := range ms {
			m.Observe(tr.Times[i], re, im)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
