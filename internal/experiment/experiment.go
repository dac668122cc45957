package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/carbonbox/internal/carbon"
	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/forcing"
	"github.com/san-kum/carbonbox/internal/integrators"
	"github.com/san-kum/carbonbox/internal/metrics"
)

// Result is one finished run. States hold real parts; Imag is nil for runs
// on real state.
type Result struct {
	Topology   *carbon.Topology
	Forcing    forcing.Spec
	Integrator string
	Complex    bool
	Times      []float64
	States     [][]float64
	Imag       [][]float64
	Metrics    map[string]float64
	Elapsed    time.Duration
}

// Atmosphere returns the atmospheric box series, or box 0 when the
// topology has no box of that name.
func (r *Result) Atmosphere() []float64 {
	idx, ok := r.Topology.Box("atmosphere")
	if !ok {
		idx = 0
	}
	return column(r.States, idx)
}

// Final returns the last real state.
func (r *Result) Final() []float64 {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

func column(states [][]float64, idx int) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		if idx < len(s) {
			out[i] = s[idx]
		}
	}
	return out
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      logrus.FieldLogger

	topology *carbon.Topology
	ode      *carbon.FluxODE
}

// New copies cfg. A nil log discards output.
func New(cfg *config.Config, registry *Registry, log logrus.FieldLogger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Experiment{cfg: cfg.Clone(), registry: registry, log: log}
}

// Setup resolves topology, forcing and integrator; Run calls it when needed.
func (e *Experiment) Setup() error {
	topo, err := e.resolveTopology()
	if err != nil {
		return err
	}
	spec, err := forcing.Build(e.cfg.Forcing)
	if err != nil {
		return fmt.Errorf("forcing: %w", err)
	}
	ode, err := carbon.ForTopology(topo, spec)
	if err != nil {
		return err
	}
	if _, err := integrators.New[float64](e.cfg.Integrator); err != nil {
		return err
	}
	e.topology, e.ode = topo, ode
	return nil
}

func (e *Experiment) resolveTopology() (*carbon.Topology, error) {
	if e.cfg.TopologyFile != "" {
		return carbon.LoadTopology(e.cfg.TopologyFile)
	}
	return e.registry.GetTopology(e.cfg.Topology)
}

func (e *Experiment) Topology() *carbon.Topology { return e.topology }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.ode == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}

	log := e.log.WithFields(logrus.Fields{
		"topology":   e.topology.Name(),
		"scenario":   e.ode.Forcing().Name(),
		"mode":       e.ode.Forcing().Mode.String(),
		"integrator": e.cfg.Integrator,
		"steps":      e.cfg.Steps,
		"complex":    e.cfg.Complex,
	})
	log.Debug("run started")
	if limit, ok := stabilityLimit[e.cfg.Integrator]; ok {
		if hk := stepSize(e.cfg) * e.topology.Stiffness(); hk > limit {
			log.WithField("h_k", hk).Warn("step size exceeds the stability limit of the integrator")
		}
	}

	start := time.Now()
	var (
		res *Result
		err error
	)
	if e.cfg.Complex {
		res, err = run[complex128](ctx, e.cfg, e.ode, e.topology, e.registry.DefaultMetrics(e.topology))
	} else {
		res, err = run[float64](ctx, e.cfg, e.ode, e.topology, e.registry.DefaultMetrics(e.topology))
	}
	if err != nil {
		log.WithError(err).Warn("run failed")
		return nil, err
	}
	res.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"mass_drift": res.Metrics["mass_drift"],
		"mass_added": res.Metrics["mass_added"],
		"elapsed":    res.Elapsed,
	}).Info("run finished")
	return res, nil
}

// stabilityLimit is the largest |h·λ| on the negative real axis for which
// each stepper stays bounded.
var stabilityLimit = map[string]float64{
	"euler": 2,
	"rk4":   2.785,
}

func stepSize(cfg *config.Config) float64 {
	steps := max(cfg.Steps, integrators.MinSteps)
	return math.Abs(cfg.Tf-cfg.T0) / float64(steps)
}

func run[T dynamo.Scalar](ctx context.Context, cfg *config.Config, ode *carbon.FluxODE, topo *carbon.Topology, ms []dynamo.Metric) (*Result, error) {
	stepper, err := integrators.New[T](cfg.Integrator)
	if err != nil {
		return nil, err
	}
	y0 := dynamo.FromReals[T](topo.M0())
	tr, err := integrators.Integrate(ctx, stepper, carbon.System[T](ode), cfg.T0, cfg.Tf, y0, cfg.Steps)
	if err != nil {
		return nil, err
	}
	if !cfg.AllowInvalid && !tr.IsValid() {
		return nil, fmt.Errorf("%w: non-finite mass in trajectory", dynamo.ErrInvalidState)
	}

	res := &Result{
		Topology:   topo,
		Forcing:    ode.Forcing(),
		Integrator: stepper.Name(),
		Complex:    cfg.Complex,
		Times:      tr.Times,
		States:     tr.Real(),
		Metrics:    metrics.Collect(tr, ms),
	}
	if cfg.Complex {
		res.Imag = make([][]float64, len(tr.States))
		for i, s := range tr.States {
			res.Imag[i] = s.Imag()
		}
	}
	return res, nil
}
