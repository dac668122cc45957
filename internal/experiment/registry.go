package experiment

import (
	"sort"

	"github.com/san-kum/carbonbox/internal/carbon"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/integrators"
	"github.com/san-kum/carbonbox/internal/metrics"
)

// Registry maps names to topologies. Integrators are resolved by
// integrators.New since their constructors depend on the scalar type.
type Registry struct {
	topologies map[string]func() *carbon.Topology
}

func NewRegistry() *Registry {
	r := &Registry{
		topologies: make(map[string]func() *carbon.Topology),
	}

	r.topologies["4box"] = carbon.FourBox
	r.topologies["9box"] = carbon.NineBox

	return r
}

// Register adds or replaces a named topology.
func (r *Registry) Register(name string, fn func() *carbon.Topology) {
	r.topologies[name] = fn
}

func (r *Registry) GetTopology(name string) (*carbon.Topology, error) {
	fn, ok := r.topologies[name]
	if !ok {
		return nil, dynamo.Configf("registry", "unknown topology %q (available: %v)", name, r.ListTopologies())
	}
	return fn(), nil
}

func (r *Registry) ListTopologies() []string {
	names := make([]string, 0, len(r.topologies))
	for name := range r.topologies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	return integrators.Names()
}

// DefaultMetrics returns fresh metrics for a run on topo.
func (r *Registry) DefaultMetrics(topo *carbon.Topology) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewMassDrift(),
		metrics.NewMassAdded(),
		metrics.NewNegativity(),
		metrics.NewMaxImag(),
	}
	for i, box := range topo.Boxes() {
		ms = append(ms, metrics.NewFinalMass(i, box))
	}
	if idx, ok := topo.Box("atmosphere"); ok {
		ms = append(ms, metrics.NewPeakMass(idx, "atmosphere"))
	}
	return ms
}
