package experiment

import (
	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/storage"
)

// Metadata describes res, produced from cfg, for the run store.
func (r *Result) Metadata(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Topology:   r.Topology.Name(),
		Boxes:      r.Topology.Boxes(),
		Scenario:   r.Forcing.Name(),
		Forcing:    cfg.Forcing,
		Integrator: r.Integrator,
		Complex:    r.Complex,
		T0:         cfg.T0,
		Tf:         cfg.Tf,
		Steps:      len(r.Times) - 1,
		Metrics:    r.Metrics,
	}
}

// Save stores the real trajectory of res and returns the run id.
func Save(st *storage.Store, cfg *config.Config, res *Result) (string, error) {
	return st.Save(res.Metadata(cfg), res.Times, res.States)
}
