package forcing

import (
	"strings"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// Injection selects where a forcing value enters the box equations.
type Injection int

const (
	// AddToDerivative adds value(t) to dM/dt[target] after K·M.
	AddToDerivative Injection = iota
	// AddToMass adds value(t) to M[target] before K·M, so the forcing feeds
	// back through the rate coefficients in every stage evaluation.
	AddToMass
)

func (m Injection) String() string {
	if m == AddToMass {
		return "mass"
	}
	return "derivative"
}

func ParseInjection(s string) (Injection, error) {
	switch strings.ToLower(s) {
	case "", "derivative", "dmdt":
		return AddToDerivative, nil
	case "mass":
		return AddToMass, nil
	}
	return AddToDerivative, dynamo.Configf("forcing", "unknown injection mode %q", s)
}

// Spec is the immutable forcing configuration of one run.
type Spec struct {
	Scenario Scenario
	Target   int
	Mode     Injection
}

// Unforced is a Spec that never changes the system.
func Unforced() Spec {
	return Spec{Scenario: None{}}
}

// Validate checks the target box against a system of n boxes.
func (s Spec) Validate(n int) error {
	if s.Scenario == nil {
		return dynamo.Configf("forcing", "nil scenario")
	}
	if s.Target < 0 || s.Target >= n {
		return dynamo.Shapef("forcing", "target box %d outside [0, %d)", s.Target, n)
	}
	return nil
}

func (s Spec) Name() string {
	if s.Scenario == nil {
		return "none"
	}
	return s.Scenario.Name()
}

// Params is the serializable description of a Spec.
type Params struct {
	Scenario      string  `yaml:"scenario" json:"scenario"`
	Table         string  `yaml:"table,omitempty" json:"table,omitempty"`
	TableFile     string  `yaml:"table_file,omitempty" json:"table_file,omitempty"`
	Wave          string  `yaml:"wave,omitempty" json:"wave,omitempty"`
	Amplitude     float64 `yaml:"amplitude,omitempty" json:"amplitude,omitempty"`
	Period        float64 `yaml:"period,omitempty" json:"period,omitempty"`
	ReferenceYear float64 `yaml:"reference_year,omitempty" json:"reference_year,omitempty"`
	Rate          float64 `yaml:"rate,omitempty" json:"rate,omitempty"`
	Baseline      string  `yaml:"baseline,omitempty" json:"baseline,omitempty"`
	Target        int     `yaml:"target" json:"target"`
	Mode          string  `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Scenario kinds accepted by Build.
const (
	KindNone        = "none"
	KindTable       = "table"
	KindPeriodic    = "periodic"
	KindExponential = "exponential"
)

// Kinds lists the accepted scenario kinds.
func Kinds() []string {
	return []string{KindNone, KindTable, KindPeriodic, KindExponential}
}

// Build turns Params into a Spec.
func Build(p Params) (Spec, error) {
	mode, err := ParseInjection(p.Mode)
	if err != nil {
		return Spec{}, err
	}
	sc, err := buildScenario(p)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Scenario: sc, Target: p.Target, Mode: mode}, nil
}

func buildScenario(p Params) (Scenario, error) {
	switch strings.ToLower(p.Scenario) {
	case "", KindNone:
		return None{}, nil
	case KindTable:
		if p.TableFile != "" {
			return LoadTableCSV(p.TableFile)
		}
		return LookupTable(p.Table)
	case KindPeriodic:
		wave, err := ParseWave(p.Wave)
		if err != nil {
			return nil, err
		}
		base, err := baseline(p.Baseline)
		if err != nil {
			return nil, err
		}
		return NewPeriodic(wave, p.Amplitude, p.Period, p.ReferenceYear, base)
	case KindExponential:
		base, err := baseline(p.Baseline)
		if err != nil {
			return nil, err
		}
		return NewDampedExponential(p.Amplitude, p.Period, p.ReferenceYear, p.Rate, base)
	}
	return nil, dynamo.Configf("forcing", "unknown scenario %q (available: %v)", p.Scenario, Kinds())
}

func baseline(id string) (Scenario, error) {
	if id == "" {
		return nil, nil
	}
	return LookupTable(id)
}
