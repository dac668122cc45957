package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/experiment"
	"github.com/san-kum/carbonbox/internal/storage"
)

// Batch is a scripted sequence of runs.
type Batch struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Runs        []BatchRun `yaml:"runs"`
}

// BatchRun starts from a preset (or the defaults) and overlays Config,
// which may name any subset of the config fields.
type BatchRun struct {
	Name     string    `yaml:"name"`
	Topology string    `yaml:"topology"`
	Preset   string    `yaml:"preset"`
	Config   yaml.Node `yaml:"config"`
}

// Resolve builds the configuration of one run.
func (r BatchRun) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	topo := r.Topology
	if topo == "" {
		topo = cfg.Topology
	}
	if r.Preset != "" {
		cfg = config.GetPreset(topo, r.Preset)
		if cfg == nil {
			return nil, dynamo.Configf("batch", "unknown preset %s for %s (available: %v)", r.Preset, topo, config.ListPresets(topo))
		}
	}
	cfg.Topology = topo
	if !r.Config.IsZero() {
		if err := r.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("batch run %s: %w", r.Name, err)
		}
	}
	return cfg, nil
}

// LoadBatch loads a batch from a YAML file
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

type BatchResult struct {
	Name   string
	RunID  string
	Result *experiment.Result
}

// RunBatch executes the runs in order and stores each one when st is not
// nil. It stops at the first failure and returns the runs completed so far.
func RunBatch(ctx context.Context, batch *Batch, st *storage.Store, log logrus.FieldLogger) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(batch.Runs))
	registry := experiment.NewRegistry()

	for i, run := range batch.Runs {
		cfg, err := run.Resolve()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		var rlog logrus.FieldLogger
		if log != nil {
			rlog = log.WithFields(logrus.Fields{"batch": batch.Name, "run": run.Name, "index": i + 1})
		}
		res, err := experiment.New(cfg, registry, rlog).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, run.Name, err)
		}

		br := BatchResult{Name: run.Name, Result: res}
		if st != nil {
			id, err := experiment.Save(st, cfg, res)
			if err != nil {
				return results, fmt.Errorf("run %d (%s) save: %w", i+1, run.Name, err)
			}
			br.RunID = id
		}
		results = append(results, br)
	}

	return results, nil
}

// ParameterSweep runs one configuration across evenly spaced values of a
// single parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Final      []float64
}

// Values returns the parameter values of the sweep.
func (s *ParameterSweep) Values() ([]float64, error) {
	if s.NumSteps < 1 {
		return nil, dynamo.Configf("sweep", "need at least one value, got %d", s.NumSteps)
	}
	if s.NumSteps == 1 {
		return []float64{s.ParamMin}, nil
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	vals := make([]float64, s.NumSteps)
	for i := range vals {
		vals[i] = s.ParamMin + float64(i)*step
	}
	return vals, nil
}

// RunSweep evaluates every value concurrently and returns results in
// value order.
func RunSweep(ctx context.Context, sweep *ParameterSweep, log logrus.FieldLogger) ([]SweepResult, error) {
	vals, err := sweep.Values()
	if err != nil {
		return nil, err
	}

	variants := make([]experiment.Variant, len(vals))
	for i, v := range vals {
		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.ParamName, v); err != nil {
			return nil, err
		}
		variants[i] = experiment.Variant{Name: fmt.Sprintf("%s=%g", sweep.ParamName, v), Config: cfg}
	}

	runs, err := experiment.Compare(ctx, variants, nil, log)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, res := range runs {
		results[i] = SweepResult{ParamValue: vals[i], Metrics: res.Metrics, Final: res.Final()}
	}
	return results, nil
}
