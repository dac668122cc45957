package carbon

import (
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// ConservationTol bounds |inflow - outflow| per box, relative to the largest
// flux, for a topology to count as mass conserving.
const ConservationTol = 1e-9

// Topology is a fixed box layout: box names, the inflow matrix and the
// steady-state reference masses. It is immutable once built; K is derived
// once here and reused by every run.
type Topology struct {
	name  string
	boxes []string
	flux  *mat.Dense
	m0    []float64
	k     *mat.Dense
}

// NewTopology validates fluxIn (fluxIn[i][j] flows from box j into box i) and
// m0, then derives the rate coefficients.
func NewTopology(name string, boxes []string, fluxIn [][]float64, m0 []float64) (*Topology, error) {
	n := len(m0)
	if len(boxes) != n {
		return nil, dynamo.Shapef("topology", "%s: %d box names for %d masses", name, len(boxes), n)
	}
	if len(fluxIn) != n {
		return nil, dynamo.Shapef("topology", "%s: flux matrix has %d rows, want %d", name, len(fluxIn), n)
	}
	flux := mat.NewDense(n, n, nil)
	for i, row := range fluxIn {
		if len(row) != n {
			return nil, dynamo.Shapef("topology", "%s: flux row %d has %d columns, want %d", name, i, len(row), n)
		}
		for j, f := range row {
			if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, dynamo.Domainf("topology", "%s: flux %d->%d must be finite and non-negative, got %g", name, j, i, f)
			}
		}
		flux.SetRow(i, row)
	}

	k, err := DeriveRates(flux, m0)
	if err != nil {
		return nil, err
	}

	t := &Topology{
		name:  name,
		boxes: append([]string(nil), boxes...),
		flux:  flux,
		m0:    append([]float64(nil), m0...),
		k:     k,
	}

	net := t.NetFlux()
	scale := math.Max(mat.Max(flux), 1)
	for i, v := range net {
		if math.Abs(v) > ConservationTol*scale {
			return nil, dynamo.Configf("topology", "%s: box %d (%s) not in steady state, net flux %g", name, i, boxes[i], v)
		}
	}
	return t, nil
}

func (t *Topology) Name() string { return t.name }
func (t *Topology) Len() int     { return len(t.m0) }

func (t *Topology) Boxes() []string { return append([]string(nil), t.boxes...) }

// M0 returns a copy of the reference masses.
func (t *Topology) M0() []float64 { return append([]float64(nil), t.m0...) }

// FluxIn returns a copy of the inflow matrix.
func (t *Topology) FluxIn() *mat.Dense { return mat.DenseCopyOf(t.flux) }

// FluxOut returns the outflow matrix, the transpose of FluxIn.
func (t *Topology) FluxOut() *mat.Dense { return mat.DenseCopyOf(t.flux.T()) }

// Rates returns a copy of the cached rate coefficient matrix.
func (t *Topology) Rates() *mat.Dense { return mat.DenseCopyOf(t.k) }

// NetFlux returns inflow minus outflow for each box.
func (t *Topology) NetFlux() []float64 {
	var diff mat.Dense
	diff.Sub(t.flux, t.flux.T())
	sums := ColumnSums(&diff)
	floats.Scale(-1, sums)
	return sums
}

// TotalMass is the sum of the reference masses.
func (t *Topology) TotalMass() float64 { return floats.Sum(t.m0) }

// Stiffness is the fastest turnover rate max|K[j][j]| in 1/yr. Explicit
// steppers need h·Stiffness below their stability limit.
func (t *Topology) Stiffness() float64 {
	var s float64
	for j := range t.m0 {
		s = math.Max(s, math.Abs(t.k.At(j, j)))
	}
	return s
}

// Box returns the index of the named box.
func (t *Topology) Box(name string) (int, bool) {
	for i, b := range t.boxes {
		if b == name {
			return i, true
		}
	}
	return -1, false
}

// TopologyDef is the file form of a topology.
type TopologyDef struct {
	Name  string      `yaml:"name"`
	Boxes []string    `yaml:"boxes"`
	Flux  [][]float64 `yaml:"flux_in"`
	Mass  []float64   `yaml:"mass"`
}

func (d TopologyDef) Build() (*Topology, error) {
	return NewTopology(d.Name, d.Boxes, d.Flux, d.Mass)
}

// Def converts t back to its file form.
func (t *Topology) Def() TopologyDef {
	n := t.Len()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, t.flux)
	}
	return TopologyDef{Name: t.name, Boxes: t.Boxes(), Flux: rows, Mass: t.M0()}
}

// LoadTopology reads a yaml topology definition.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def TopologyDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = path
	}
	return def.Build()
}

var reference = map[string]func() TopologyDef{
	"4box": fourBox,
	"9box": nineBox,
}

// LookupTopology builds a reference topology by name.
func LookupTopology(name string) (*Topology, error) {
	fn, ok := reference[name]
	if !ok {
		return nil, dynamo.Configf("topology", "unknown topology: %s (available: %v)", name, TopologyNames())
	}
	return fn().Build()
}

func TopologyNames() []string {
	names := make([]string, 0, len(reference))
	for name := range reference {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
