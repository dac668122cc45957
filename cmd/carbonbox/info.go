package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/carbonbox/internal/analysis"
	"github.com/san-kum/carbonbox/internal/carbon"
	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/experiment"
	"github.com/san-kum/carbonbox/internal/forcing"
)

// rk4Limit is the RK4 stability bound on the negative real axis.
const rk4Limit = 2.785

func listPresets(cmd *cobra.Command, args []string) error {
	topo := args[0]
	names := config.ListPresets(topo)
	if len(names) == 0 {
		fmt.Printf("no presets for %s\n", topo)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSCENARIO\tMODE\tSPAN\tSTEPS\tCOMPLEX")
	for _, name := range names {
		cfg := config.GetPreset(topo, name)
		spec, err := forcing.Build(cfg.Forcing)
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g-%g\t%d\t%v\n", name, spec.Name(), spec.Mode, cfg.T0, cfg.Tf, cfg.Steps, cfg.Complex)
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	fmt.Printf("scenario kinds: %s\n", strings.Join(forcing.Kinds(), ", "))
	fmt.Printf("injection modes: %s, %s\n\n", forcing.AddToDerivative, forcing.AddToMass)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tKNOTS\tFROM\tTO\tPEAK RATE\t2100")
	for _, id := range forcing.TableIDs() {
		t, err := forcing.LookupTable(id)
		if err != nil {
			return err
		}
		knots := t.Knots()
		peak := 0.0
		for _, k := range knots {
			peak = max(peak, k.Rate)
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\n", id, len(knots), knots[0].Year, knots[len(knots)-1].Year, peak, t.Value(2100))
	}
	return w.Flush()
}

func showTopologies(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	if len(args) == 0 && topologyFile == "" {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tBOXES\tTOTAL MASS\tMAX |NET|\tMAX RK4 H")
		for _, name := range registry.ListTopologies() {
			topo, err := registry.GetTopology(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%g\t%.2e\t%.3f\n", name, topo.Len(), topo.TotalMass(), maxAbs(topo.NetFlux()), rk4Limit/topo.Stiffness())
		}
		return w.Flush()
	}

	var (
		topo *carbon.Topology
		err  error
	)
	if topologyFile != "" {
		topo, err = carbon.LoadTopology(topologyFile)
	} else {
		topo, err = registry.GetTopology(args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("topology: %s (%d boxes, %g GtC)\n\n", topo.Name(), topo.Len(), topo.TotalMass())

	in, net := topo.FluxIn(), topo.NetFlux()
	out := topo.FluxOut()
	k := topo.Rates()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tBOX\tM0\tINFLOW\tOUTFLOW\tNET\tTURNOVER (yr)")
	for i, name := range topo.Boxes() {
		turnover := 1 / -k.At(i, i)
		fmt.Fprintf(w, "%d\t%s\t%g\t%g\t%g\t%+.2e\t%.3f\n", i, name, topo.M0()[i], mat.Sum(in.RowView(i)), mat.Sum(out.RowView(i)), net[i], turnover)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nrate coefficients K (1/yr):\n%.4f\n", mat.Formatted(k, mat.Prefix(""), mat.Squeeze()))
	fmt.Printf("\nstiffness %.4f/yr, rk4 stable for h < %.4f yr\n", topo.Stiffness(), rk4Limit/topo.Stiffness())

	modes, err := analysis.Modes(k)
	if err != nil {
		return err
	}
	fmt.Println("\nrelaxation modes:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tEIGENVALUE\tTIMESCALE (yr)")
	for i, m := range modes {
		ts := "conserved"
		if !m.Conserved() {
			ts = fmt.Sprintf("%.3f", m.Timescale)
		}
		fmt.Fprintf(w, "%d\t%.5f\t%s\n", i, m.Eigenvalue, ts)
	}
	return w.Flush()
}

func maxAbs(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		if x < 0 {
			x = -x
		}
		m = max(m, x)
	}
	return m
}
