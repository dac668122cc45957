package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/carbonbox/internal/analysis"
	"github.com/san-kum/carbonbox/internal/automation"
	"github.com/san-kum/carbonbox/internal/export"
	"github.com/san-kum/carbonbox/internal/optim"
	"github.com/san-kum/carbonbox/internal/storage"
)

func loadSeries(st *storage.Store, runID string) (*storage.RunMetadata, []float64, [][]float64, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, times, states, nil
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

func boxIndex(meta *storage.RunMetadata, name string) (int, error) {
	for i, b := range meta.Boxes {
		if b == name {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(meta.Boxes) {
		return i, nil
	}
	return 0, fmt.Errorf("run %s has no box %q (boxes: %v)", meta.ID, name, meta.Boxes)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, times, states, err := loadSeries(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("run %s has too few samples to analyze", meta.ID)
	}
	h := times[1] - times[0]

	fmt.Printf("run: %s (%s, %s)\n\n", meta.ID, meta.Topology, meta.Scenario)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BOX\tMIN\tMAX\tFINAL\tCHANGE\tPERIOD (yr)\tAMPLITUDE")
	for i := range meta.Boxes {
		s := column(states, i)
		period, amp := "-", "-"
		if p, a, err := analysis.DominantPeriod(s, h); err == nil {
			period, amp = fmt.Sprintf("%.2f", p), fmt.Sprintf("%.3f", a)
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%+.3f\t%s\t%s\n",
			meta.Boxes[i], floats.Min(s), floats.Max(s), s[len(s)-1], s[len(s)-1]-s[0], period, amp)
	}
	return w.Flush()
}

func phaseRun(cmd *cobra.Command, args []string) error {
	meta, _, states, err := loadSeries(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	xi, err := boxIndex(meta, phaseX)
	if err != nil {
		return err
	}
	yi, err := boxIndex(meta, phaseY)
	if err != nil {
		return err
	}

	fmt.Printf("%s (y) against %s (x), o start, x end\n\n", meta.Boxes[yi], meta.Boxes[xi])
	fmt.Print(analysis.PhasePortrait(column(states, xi), column(states, yi), 60, 20))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, times, states, err := loadSeries(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}

	var (
		series [][]float64
		labels []string
	)
	for i, name := range meta.Boxes {
		if box != "" && box != name {
			continue
		}
		series = append(series, column(states, i))
		labels = append(labels, name)
	}
	if len(series) == 0 {
		return fmt.Errorf("run %s has no box %q (boxes: %v)", meta.ID, box, meta.Boxes)
	}

	svg, err := export.SeriesToSVG(times, series, labels, svgWidth, svgHeight)
	if err != nil {
		return err
	}
	if outputFile == "" || outputFile == "-" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outputFile)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("batch %s: %d runs\n", batch.Name, len(batch.Runs))
	results, err := automation.RunBatch(ctx, batch, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tID\tMASS ADDED\tMASS DRIFT\tELAPSED")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.2e\t%v\n", r.Name, r.RunID, r.Result.Metrics["mass_added"], r.Result.Metrics["mass_drift"], r.Result.Elapsed)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
	}
	results, err := automation.RunSweep(ctx, sweep, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(sweepParam), strings.ToUpper(sweepMetric))
	for _, r := range results {
		v, ok := r.Metrics[sweepMetric]
		if !ok {
			return fmt.Errorf("unknown metric %q", sweepMetric)
		}
		fmt.Fprintf(w, "%g\t%.4f\n", r.ParamValue, v)
	}
	return w.Flush()
}

// parseGrid reads name=v1,v2,... pairs.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	var (
		names  []string
		ranges [][]float64
	)
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad --param %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridParams)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	objective := optim.Minimize(sweepMetric)
	switch {
	case cmd.Flags().Changed("match"):
		objective = optim.Match(sweepMetric, matchValue)
	case maximize:
		objective = optim.Maximize(sweepMetric)
	}

	ctx, stop := signalContext()
	defer stop()

	best, points, err := grid.Search(ctx, cfg, objective, logger)
	if err != nil {
		return err
	}

	failed := 0
	for _, p := range points {
		if p.Err != nil {
			failed++
		}
	}
	fmt.Printf("evaluated %d points (%d failed)\n", len(points), failed)
	fmt.Println("best:")
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best.Params[name])
	}
	fmt.Printf("  score = %.6g\n", best.Score)
	return nil
}
