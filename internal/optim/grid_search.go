package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/experiment"
)

// Objective scores a run; lower is better.
type Objective func(*experiment.Result) (float64, error)

// Minimize scores a run by one of its metrics.
func Minimize(metric string) Objective {
	return func(r *experiment.Result) (float64, error) { return lookup(r, metric) }
}

// Maximize prefers runs with a larger metric.
func Maximize(metric string) Objective {
	return func(r *experiment.Result) (float64, error) {
		v, err := lookup(r, metric)
		return -v, err
	}
}

// Match scores a run by the distance of a metric from want.
func Match(metric string, want float64) Objective {
	return func(r *experiment.Result) (float64, error) {
		v, err := lookup(r, metric)
		return math.Abs(v - want), err
	}
}

func lookup(r *experiment.Result, metric string) (float64, error) {
	v, ok := r.Metrics[metric]
	if !ok {
		return 0, dynamo.Configf("objective", "run has no metric %q", metric)
	}
	return v, nil
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, dynamo.Configf("grid search", "%d parameters for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, dynamo.Configf("grid search", "parameter %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points enumerates the grid, last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.enumerate(depth+1, newParams, out)
	}
}

// Search runs base with every grid point applied and returns the best
// point and all points in grid order. Points whose run fails keep their
// error and never win.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective, log logrus.FieldLogger) (Point, []Point, error) {
	grid := g.Points()
	points := make([]Point, len(grid))
	registry := experiment.NewRegistry()

	dynamo.ParallelFor(len(grid), 1, func(start, end int) {
		for i := start; i < end; i++ {
			points[i] = g.evaluate(ctx, base, grid[i], objective, registry, log)
		}
	})

	if err := ctx.Err(); err != nil {
		return Point{}, nil, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
	}

	best := -1
	for i, p := range points {
		if p.Err != nil {
			continue
		}
		if best < 0 || p.Score < points[best].Score {
			best = i
		}
	}
	if best < 0 {
		return Point{}, points, fmt.Errorf("grid search: all %d points failed, first: %w", len(points), points[0].Err)
	}
	return points[best], points, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, objective Objective, registry *experiment.Registry, log logrus.FieldLogger) Point {
	p := Point{Params: params}
	cfg := base.Clone()
	for _, name := range sortedKeys(params) {
		if err := cfg.Set(name, params[name]); err != nil {
			p.Err = err
			return p
		}
	}

	var plog logrus.FieldLogger
	if log != nil {
		plog = log.WithFields(logrus.Fields(toFields(params)))
	}
	res, err := experiment.New(cfg, registry, plog).Run(ctx)
	if err != nil {
		p.Err = err
		return p
	}
	p.Score, p.Err = objective(res)
	return p
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toFields(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
