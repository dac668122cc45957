package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/carbonbox/internal/storage"
	"github.com/san-kum/carbonbox/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOPOLOGY\tSCENARIO\tMODE\tTIME\tSPAN\tSTEPS\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g-%g\t%d\t%s\n",
			run.ID,
			run.Topology,
			run.Scenario,
			run.Forcing.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0,
			run.Tf,
			run.Steps,
			run.Integrator,
		)
	}

	return w.Flush()
}

func boxName(meta *storage.RunMetadata, i int) string {
	if i < len(meta.Boxes) {
		return meta.Boxes[i]
	}
	return fmt.Sprintf("m%d", i)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("topology: %s\n", meta.Topology)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(states))

	found := false
	for idx := range states[0] {
		name := boxName(meta, idx)
		if box != "" && box != name {
			continue
		}
		found = true

		data := make([]float64, len(states))
		for i := range states {
			if idx < len(states[i]) {
				data[i] = states[i][idx]
			}
		}
		fmt.Println(viz.Chart(data, viz.ChartWidth, viz.ChartHeight, fmt.Sprintf("%s (GtC), %g to %g", name, meta.T0, meta.Tf)))
		fmt.Println()
	}
	if !found {
		return fmt.Errorf("run %s has no box %q (boxes: %v)", meta.ID, box, meta.Boxes)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, boxName(meta, i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(args[0], outputFile)
}

func replayRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	return viz.RunReplay(viz.Run{
		ID:     meta.ID,
		Title:  fmt.Sprintf("%s %s", meta.Topology, meta.Scenario),
		Boxes:  meta.Boxes,
		Times:  times,
		States: states,
	})
}
