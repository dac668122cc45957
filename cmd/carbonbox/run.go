package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/carbonbox/internal/carbon"
	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/experiment"
	"github.com/san-kum/carbonbox/internal/storage"
	"github.com/san-kum/carbonbox/internal/viz"
)

// buildConfig layers defaults, then a preset, then a config file, then the
// flags that were set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	topo := cfg.Topology
	if len(args) > 0 {
		topo = args[0]
	}

	if preset != "" {
		p := config.GetPreset(topo, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(topo))
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	if len(args) > 0 {
		cfg.Topology = args[0]
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("topology-file") {
		cfg.TopologyFile = topologyFile
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("t0") {
		cfg.T0 = t0
	}
	if f.Changed("tf") {
		cfg.Tf = tf
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("complex") {
		cfg.Complex = complexState
	}
	if f.Changed("no-validate") {
		cfg.AllowInvalid = noValidate
	}

	p := &cfg.Forcing
	if f.Changed("scenario") {
		p.Scenario = scenario
	}
	if f.Changed("table") {
		p.Table = table
	}
	if f.Changed("table-file") {
		p.TableFile = tableFile
	}
	if f.Changed("wave") {
		p.Wave = wave
	}
	if f.Changed("amplitude") {
		p.Amplitude = amplitude
	}
	if f.Changed("period") {
		p.Period = period
	}
	if f.Changed("ref-year") {
		p.ReferenceYear = referenceYear
	}
	if f.Changed("rate") {
		p.Rate = rate
	}
	if f.Changed("baseline") {
		p.Baseline = baseline
	}
	if f.Changed("mode") {
		p.Mode = mode
	}
	if f.Changed("target") {
		idx, err := targetIndex(cfg, target)
		if err != nil {
			return err
		}
		p.Target = idx
	}
	return nil
}

func resolveTopology(cfg *config.Config) (*carbon.Topology, error) {
	if cfg.TopologyFile != "" {
		return carbon.LoadTopology(cfg.TopologyFile)
	}
	return experiment.NewRegistry().GetTopology(cfg.Topology)
}

// targetIndex accepts a box index or a box name of cfg's topology.
func targetIndex(cfg *config.Config, s string) (int, error) {
	if idx, err := strconv.Atoi(s); err == nil {
		return idx, nil
	}
	topo, err := resolveTopology(cfg)
	if err != nil {
		return 0, err
	}
	idx, ok := topo.Box(s)
	if !ok {
		return 0, dynamo.Configf("target", "topology %s has no box %q (boxes: %v)", topo.Name(), s, topo.Boxes())
	}
	return idx, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-24s %14.6f\n", name, m[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s from %g to %g (%d steps, %s)...\n", cfg.Topology, cfg.T0, cfg.Tf, cfg.Steps, cfg.Integrator)
	res, err := experiment.New(cfg, nil, logger).Run(ctx)
	if err != nil {
		return err
	}

	runID, err := experiment.Save(st, cfg, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("scenario: %s (%s)\n", res.Forcing.Name(), res.Forcing.Mode)
	fmt.Printf("samples: %d\n", len(res.States))
	fmt.Println("\nmetrics:")
	printMetrics(res.Metrics)

	if showPlot {
		fmt.Println()
		fmt.Println(viz.Chart(res.Atmosphere(), 0, 0, "atmosphere (GtC)"))
	}
	return nil
}

func compareRuns(cmd *cobra.Command, args []string) error {
	topo, presets := args[0], args[1:]

	var variants []experiment.Variant
	if len(presets) == 0 {
		base, err := buildConfig(cmd, args[:1])
		if err != nil {
			return err
		}
		for _, m := range []string{"derivative", "mass"} {
			c := base.Clone()
			c.Forcing.Mode = m
			variants = append(variants, experiment.Variant{Name: m, Config: c})
		}
	} else {
		for _, name := range presets {
			c := config.GetPreset(topo, name)
			if c == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(topo))
			}
			if err := applyFlags(cmd, c); err != nil {
				return err
			}
			variants = append(variants, experiment.Variant{Name: name, Config: c})
		}
	}

	ctx, stop := signalContext()
	defer stop()

	results, err := experiment.Compare(ctx, variants, nil, logger)
	if err != nil {
		return err
	}

	fmt.Printf("comparing %d runs on %s\n\n", len(results), topo)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCENARIO\tMODE\tFINAL ATM\tPEAK ATM\tMASS ADDED\tDRIFT\tTIME")
	series := make([][]float64, len(results))
	for i, res := range results {
		atm := res.Atmosphere()
		series[i] = atm
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t%.2e\t%v\n",
			variants[i].Name,
			res.Forcing.Name(),
			res.Forcing.Mode,
			atm[len(atm)-1],
			res.Metrics["peak_atmosphere"],
			res.Metrics["mass_added"],
			res.Metrics["mass_drift"],
			res.Elapsed,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Overlay(series, 0, 12, "atmosphere (GtC)"))
	for i, v := range variants {
		fmt.Printf("  %-8s %s\n", viz.ColorName(i), v.Name)
	}
	return nil
}

func convergence(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	points, err := experiment.Convergence(ctx, cfg, integratorNames, stepCounts, nil, logger)
	if err != nil {
		return err
	}

	fmt.Printf("convergence on %s from %g to %g (reference: rk4 x%d)\n\n", cfg.Topology, cfg.T0, cfg.Tf, experiment.ReferenceFactor)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tSTEPS\tH\tMAX ERROR\tORDER")
	for i, p := range points {
		order := "-"
		if i > 0 && points[i-1].Integrator == p.Integrator && points[i-1].MaxError > 0 && p.MaxError > 0 {
			o := math.Log(points[i-1].MaxError/p.MaxError) / math.Log(float64(p.Steps)/float64(points[i-1].Steps))
			order = strconv.FormatFloat(o, 'f', 2, 64)
		}
		h := math.Abs(cfg.Tf-cfg.T0) / float64(p.Steps)
		fmt.Fprintf(w, "%s\t%d\t%.4g\t%.3e\t%s\n", p.Integrator, p.Steps, h, p.MaxError, order)
	}
	return w.Flush()
}

func runNonlinear(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	sys := carbon.PowerLaw{A: powerA, B: powerB, Coupled: coupled}
	res, err := experiment.RunPowerLaw(ctx, experiment.PowerLawRun{
		System:     sys,
		Integrator: integrator,
		Y0:         y0,
		T0:         nlT0,
		Tf:         nlTf,
		Steps:      nlSteps,
	})
	if err != nil {
		return err
	}

	fmt.Printf("power law a=%g b=%g coupled=%v, t=[%g, %g], %d steps\n\n", powerA, powerB, coupled, nlT0, nlTf, nlSteps)
	final := len(res.Real) - 1
	for i := range res.Real[final] {
		fmt.Printf("  y%d = %.6f %+.6fi\n", i, res.Real[final][i], res.Imag[final][i])
	}
	fmt.Printf("  max |imag| = %.6g\n\n", res.MaxImag)

	series := make([][]float64, len(y0))
	for i := range series {
		series[i] = make([]float64, len(res.Real))
		for j, s := range res.Real {
			series[i][j] = s[i]
		}
	}
	labels := make([]string, len(series))
	for i := range labels {
		labels[i] = fmt.Sprintf("%s=y%d", viz.ColorName(i), i)
	}
	fmt.Println(viz.Overlay(series, 0, 0, "Re y ("+strings.Join(labels, ", ")+")"))
	return nil
}
