package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/forcing"
	"github.com/san-kum/carbonbox/internal/storage"
)

const batchYAML = `name: injection
description: both injection modes then a short 9-box run
runs:
  - name: derivative
    preset: a2
  - name: mass
    preset: a2
    config:
      forcing:
        scenario: table
        table: A2
        mode: mass
  - name: nine
    topology: 9box
    preset: steady
    config:
      tf: 20
      steps: 200
`

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAndResolve(t *testing.T) {
	batch, err := LoadBatch(writeBatch(t, batchYAML))
	require.NoError(t, err)
	assert.Equal(t, "injection", batch.Name)
	require.Len(t, batch.Runs, 3)

	cfg, err := batch.Runs[1].Resolve()
	require.NoError(t, err)
	assert.Equal(t, "mass", cfg.Forcing.Mode)
	assert.Equal(t, 250, cfg.Steps)

	cfg, err = batch.Runs[2].Resolve()
	require.NoError(t, err)
	assert.Equal(t, "9box", cfg.Topology)
	assert.Equal(t, 20.0, cfg.Tf)
	assert.Equal(t, 200, cfg.Steps)
	assert.Equal(t, 0.0, cfg.T0)
}

func TestResolveUnknownPreset(t *testing.T) {
	_, err := BatchRun{Name: "x", Preset: "nope"}.Resolve()
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}

func TestRunBatchStores(t *testing.T) {
	batch, err := LoadBatch(writeBatch(t, batchYAML))
	require.NoError(t, err)

	st := storage.New(t.TempDir())
	require.NoError(t, st.Init())

	results, err := RunBatch(context.Background(), batch, st, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.NotEmpty(t, r.RunID)
	}
	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	assert.Greater(t, results[0].Result.Metrics["mass_added"], 1000.0)
	assert.Less(t, results[1].Result.Metrics["mass_drift"], 1e-6)
}

func TestRunBatchStopsOnFailure(t *testing.T) {
	batch := &Batch{Name: "bad", Runs: []BatchRun{
		{Name: "ok", Preset: "steady"},
		{Name: "broken", Topology: "12box"},
		{Name: "never", Preset: "steady"},
	}}
	results, err := RunBatch(context.Background(), batch, nil, nil)
	assert.ErrorIs(t, err, dynamo.ErrConfig)
	assert.Len(t, results, 1)
}

func TestSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.T0, base.Tf, base.Steps = 0, 40, 80
	base.Forcing = forcing.Params{Scenario: forcing.KindPeriodic, Amplitude: 1, Period: 20}

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base: base, ParamName: "amplitude", ParamMin: 1, ParamMax: 4, NumSteps: 4,
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, float64(i+1), r.ParamValue)
		if i > 0 {
			assert.Greater(t, r.Metrics["peak_atmosphere"], results[i-1].Metrics["peak_atmosphere"])
		}
	}
}

func TestSweepValues(t *testing.T) {
	s := &ParameterSweep{ParamMin: 2, ParamMax: 3, NumSteps: 1}
	vals, err := s.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, vals)

	s.NumSteps = 0
	_, err = s.Values()
	assert.ErrorIs(t, err, dynamo.ErrConfig)

	_, err = RunSweep(context.Background(), &ParameterSweep{Base: config.DefaultConfig(), ParamName: "gravity", NumSteps: 2}, nil)
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}
