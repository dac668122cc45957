package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   *logrus.Logger

	// run
	configFile   string
	preset       string
	topologyFile string
	integrator   string
	t0           float64
	tf           float64
	steps        int
	complexState bool
	noValidate   bool
	showPlot     bool

	// forcing
	scenario      string
	table         string
	tableFile     string
	wave          string
	amplitude     float64
	period        float64
	referenceYear float64
	rate          float64
	baseline      string
	target        string
	mode          string

	// plot / export
	box        string
	outputFile string

	// convergence
	stepCounts      []int
	integratorNames []string

	// nonlinear
	powerA  float64
	powerB  float64
	coupled bool
	y0      []float64
	nlT0    float64
	nlTf    float64
	nlSteps int

	// study
	phaseX      string
	phaseY      string
	svgWidth    int
	svgHeight   int
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepN      int
	sweepMetric string
	gridParams  []string
	maximize    bool
	matchValue  float64
)

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
	return l, nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&topologyFile, "topology-file", "", "topology definition (yaml)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().Float64Var(&t0, "t0", 1850, "start year")
	cmd.Flags().Float64Var(&tf, "tf", 2100, "end year")
	cmd.Flags().IntVar(&steps, "steps", 250, "number of fixed steps")
	cmd.Flags().BoolVar(&complexState, "complex", false, "integrate on complex state")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "keep runs with non-finite masses")

	cmd.Flags().StringVar(&scenario, "scenario", "table", "forcing scenario (none, table, periodic, exponential)")
	cmd.Flags().StringVar(&table, "table", "A2", "emission table id")
	cmd.Flags().StringVar(&tableFile, "table-file", "", "emission table csv (year,rate)")
	cmd.Flags().StringVar(&wave, "wave", "sine", "periodic wave (sine, cosine)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 0, "forcing amplitude (GtC/yr)")
	cmd.Flags().Float64Var(&period, "period", 0, "forcing period (yr)")
	cmd.Flags().Float64Var(&referenceYear, "ref-year", 0, "forcing reference year")
	cmd.Flags().Float64Var(&rate, "rate", 0, "exponential rate multiplier")
	cmd.Flags().StringVar(&baseline, "baseline", "", "table added under periodic or exponential forcing")
	cmd.Flags().StringVar(&target, "target", "0", "forced box, by index or name")
	cmd.Flags().StringVar(&mode, "mode", "derivative", "injection mode (derivative, mass)")
}

// main registers the carbonbox commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "carbonbox",
		Short: "carbon cycle box model lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".carbonbox", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [topology]",
		Short: "run a forced box model and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the atmosphere after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot box masses of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&box, "box", "", "plot only this box")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run and trajectory as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	compareCmd := &cobra.Command{
		Use:   "compare [topology] [preset1] [preset2] ...",
		Short: "run presets side by side, or both injection modes when none are given",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareRuns,
	}
	addRunFlags(compareCmd)

	convergenceCmd := &cobra.Command{
		Use:   "convergence [topology]",
		Short: "final-state error against a fine rk4 reference",
		Args:  cobra.MaximumNArgs(1),
		RunE:  convergence,
	}
	addRunFlags(convergenceCmd)
	convergenceCmd.Flags().IntSliceVar(&stepCounts, "step-counts", []int{250, 500, 1000, 2000}, "step counts to try")
	convergenceCmd.Flags().StringSliceVar(&integratorNames, "integrators", []string{"euler", "rk4"}, "integrators to compare")

	nonlinearCmd := &cobra.Command{
		Use:   "nonlinear",
		Short: "integrate the power-law system dy/dt = a*y^b on complex state",
		Args:  cobra.NoArgs,
		RunE:  runNonlinear,
	}
	nonlinearCmd.Flags().Float64Var(&powerA, "a", -1, "coefficient a")
	nonlinearCmd.Flags().Float64Var(&powerB, "b", 0.8, "exponent b")
	nonlinearCmd.Flags().BoolVar(&coupled, "coupled", true, "two-box exchange form")
	nonlinearCmd.Flags().Float64SliceVar(&y0, "y0", []float64{100, 100}, "initial state")
	nonlinearCmd.Flags().Float64Var(&nlT0, "t0", -10, "start time")
	nonlinearCmd.Flags().Float64Var(&nlTf, "tf", 0, "end time")
	nonlinearCmd.Flags().IntVar(&nlSteps, "steps", 1000, "number of fixed steps")
	nonlinearCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")

	presetsCmd := &cobra.Command{
		Use:   "presets [topology]",
		Short: "list presets for a topology",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list forcing scenarios and emission tables",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	topologiesCmd := &cobra.Command{
		Use:   "topologies [name]",
		Short: "list topologies, or show the fluxes and rates of one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showTopologies,
	}
	topologiesCmd.Flags().StringVar(&topologyFile, "topology-file", "", "topology definition (yaml)")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "step through a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "range, net change and dominant period per box",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one box against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	phaseCmd.Flags().StringVar(&phaseX, "x", "atmosphere", "box on the horizontal axis")
	phaseCmd.Flags().StringVar(&phaseY, "y", "surface_water", "box on the vertical axis")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export box masses as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&box, "box", "", "draw only this box")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run and store every entry of a batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [topology]",
		Short: "vary one parameter over a range and report a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "amplitude", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 10, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "peak_atmosphere", "metric to report")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [topology]",
		Short: "grid search forcing parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOptimize,
	}
	addRunFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&gridParams, "param", nil, "grid axis as name=v1,v2,... (repeatable)")
	optimizeCmd.Flags().StringVar(&sweepMetric, "metric", "peak_atmosphere", "metric to score")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer larger metric values")
	optimizeCmd.Flags().Float64Var(&matchValue, "match", 0, "prefer metric values closest to this")
	if err := optimizeCmd.MarkFlagRequired("param"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		compareCmd, convergenceCmd, nonlinearCmd, presetsCmd, scenariosCmd, topologiesCmd, replayCmd,
		analyzeCmd, phaseCmd, batchCmd, sweepCmd, optimizeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
