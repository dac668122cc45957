package forcing

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// Knot is one (year, rate) control point of an emission table.
type Knot struct {
	Year float64 `csv:"year" yaml:"year"`
	Rate float64 `csv:"rate" yaml:"rate"`
}

// Table interpolates linearly between knots and clamps to the first and last
// knot outside its domain.
type Table struct {
	id    string
	knots []Knot
}

// NewTable copies knots; years must be strictly increasing.
func NewTable(id string, knots []Knot) (*Table, error) {
	if len(knots) == 0 {
		return nil, dynamo.Configf("table", "%s: no knots", id)
	}
	ks := make([]Knot, len(knots))
	copy(ks, knots)
	for i := 1; i < len(ks); i++ {
		if ks[i].Year <= ks[i-1].Year {
			return nil, dynamo.Configf("table", "%s: years not increasing at knot %d (%g after %g)", id, i, ks[i].Year, ks[i-1].Year)
		}
	}
	return &Table{id: id, knots: ks}, nil
}

func (t *Table) Name() string { return "table:" + t.id }
func (t *Table) ID() string   { return t.id }

// Knots returns a copy of the control points.
func (t *Table) Knots() []Knot {
	out := make([]Knot, len(t.knots))
	copy(out, t.knots)
	return out
}

func (t *Table) Value(year float64) float64 {
	ks := t.knots
	if math.IsNaN(year) {
		return math.NaN()
	}
	if year <= ks[0].Year {
		return ks[0].Rate
	}
	last := len(ks) - 1
	if year >= ks[last].Year {
		return ks[last].Rate
	}
	// first knot strictly after year
	j := sort.Search(len(ks), func(i int) bool { return ks[i].Year > year })
	a, b := ks[j-1], ks[j]
	frac := (year - a.Year) / (b.Year - a.Year)
	return a.Rate + frac*(b.Rate-a.Rate)
}

// a2Years are the control years of the extended IPCC A2 scenario: zero before
// 1850, the 1990-2100 projections, then a post-2100 tail.
var a2Years = []float64{0, 1850, 1990, 2000, 2010, 2020, 2030, 2040, 2050, 2060, 2070, 2080, 2090, 2100, 2110, 2120, 10000}

var a2Rates = []float64{0, 0, 6.875, 8.125, 9.375, 12.5, 14.375, 16.25, 17.5, 19.75, 21.25, 23.125, 26.25, 28.75}

func a2(tail float64) []Knot {
	ks := make([]Knot, len(a2Years))
	for i, y := range a2Years {
		rate := tail
		if i < len(a2Rates) {
			rate = a2Rates[i]
		}
		ks[i] = Knot{Year: y, Rate: rate}
	}
	return ks
}

// builtin tables in GtC/yr.
var builtin = map[string][]Knot{
	// A2 emissions falling back to the year-2000 rate after 2100.
	"A2": a2(8.125),
	// A2 with full cessation of emissions after 2100.
	"A2-cessation": a2(0),
}

// UnknownTableError is returned for a table id that is not registered. It
// matches both dynamo.ErrConfig and dynamo.ErrDomain.
type UnknownTableError struct {
	ID string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("%s: unknown table id %q", dynamo.ErrConfig, e.ID)
}

func (e *UnknownTableError) Is(target error) bool {
	return target == dynamo.ErrConfig || target == dynamo.ErrDomain
}

// LookupTable returns the built-in table registered under id.
func LookupTable(id string) (*Table, error) {
	ks, ok := builtin[id]
	if !ok {
		return nil, &UnknownTableError{ID: id}
	}
	return NewTable(id, ks)
}

// TableIDs lists built-in table ids in sorted order.
func TableIDs() []string {
	ids := make([]string, 0, len(builtin))
	for id := range builtin {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadTableCSV parses a year,rate CSV with a header row.
func ReadTableCSV(id string, r io.Reader) (*Table, error) {
	var rows []*Knot
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, dynamo.Configf("table", "%s: empty csv", id)
		}
		return nil, fmt.Errorf("table %s: %w", id, err)
	}
	knots := make([]Knot, 0, len(rows))
	for _, row := range rows {
		knots = append(knots, *row)
	}
	return NewTable(id, knots)
}

// LoadTableCSV reads a table file; the file path becomes the table id.
func LoadTableCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTableCSV(path, f)
}
