package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a run with its full trajectory to path, or stdout when
// path is empty or "-".
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	if path == "" || path == "-" {
		return encode(os.Stdout, ExportData{RunMetadata: *meta, Times: times, States: states})
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return encode(file, ExportData{RunMetadata: *meta, Times: times, States: states})
}

func encode(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
