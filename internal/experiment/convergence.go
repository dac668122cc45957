package experiment

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/dynamo"
)

// ConvergencePoint is the final-state error of one integrator at one step
// count, measured against a reference RK4 run.
type ConvergencePoint struct {
	Integrator string
	Steps      int
	Final      []float64
	MaxError   float64
}

// ReferenceFactor scales the finest requested step count to get the
// reference run.
const ReferenceFactor = 4

// Convergence runs cfg with every integrator at every step count. Points
// are ordered by integrator then step count.
func Convergence(ctx context.Context, cfg *config.Config, names []string, steps []int, registry *Registry, log logrus.FieldLogger) ([]ConvergencePoint, error) {
	if len(names) == 0 || len(steps) == 0 {
		return nil, dynamo.Configf("convergence", "need at least one integrator and one step count")
	}
	steps = append([]int(nil), steps...)
	sort.Ints(steps)

	ref := cfg.Clone()
	ref.Integrator = "rk4"
	ref.Steps = steps[len(steps)-1] * ReferenceFactor
	refRes, err := New(ref, registry, log).Run(ctx)
	if err != nil {
		return nil, err
	}
	want := refRes.Final()

	points := make([]ConvergencePoint, 0, len(names)*len(steps))
	for _, name := range names {
		for _, n := range steps {
			c := cfg.Clone()
			c.Integrator = name
			c.Steps = n
			res, err := New(c, registry, log).Run(ctx)
			if err != nil {
				return nil, err
			}
			got := res.Final()
			points = append(points, ConvergencePoint{
				Integrator: name,
				Steps:      n,
				Final:      got,
				MaxError:   maxAbsDiff(got, want),
			})
		}
	}
	return points, nil
}

func maxAbsDiff(a, b []float64) float64 {
	var m float64
	for i := range a {
		if i < len(b) {
			m = math.Max(m, math.Abs(a[i]-b[i]))
		}
	}
	return m
}
