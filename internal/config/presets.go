package config

import (
	"sort"

	"github.com/san-kum/carbonbox/internal/forcing"
)

func a2(mode string) forcing.Params {
	return forcing.Params{Scenario: forcing.KindTable, Table: "A2", Mode: mode}
}

var Presets = map[string]map[string]*Config{
	"4box": {
		"steady": {
			Topology: "4box", Integrator: "rk4", T0: 0, Tf: 100, Steps: 100,
			Forcing: forcing.Params{Scenario: forcing.KindNone},
		},
		"a2": {
			Topology: "4box", Integrator: "rk4", T0: 1850, Tf: 2100, Steps: 250,
			Forcing: a2("derivative"),
		},
		"a2-mass": {
			Topology: "4box", Integrator: "rk4", T0: 1850, Tf: 2100, Steps: 250,
			Forcing: a2("mass"),
		},
		"cessation": {
			Topology: "4box", Integrator: "rk4", T0: 1850, Tf: 2300, Steps: 450,
			Forcing: forcing.Params{Scenario: forcing.KindTable, Table: "A2-cessation"},
		},
		"sine": {
			Topology: "4box", Integrator: "rk4", Complex: true, T0: 1850, Tf: 2100, Steps: 500,
			Forcing: forcing.Params{Scenario: forcing.KindPeriodic, Wave: "sine", Amplitude: 5, Period: 50, ReferenceYear: 1850},
		},
		"sine-a2": {
			Topology: "4box", Integrator: "rk4", Complex: true, T0: 1850, Tf: 2100, Steps: 500,
			Forcing: forcing.Params{Scenario: forcing.KindPeriodic, Wave: "sine", Amplitude: 2, Period: 11, ReferenceYear: 1850, Baseline: "A2"},
		},
		"pulse": {
			Topology: "4box", Integrator: "rk4", T0: 2000, Tf: 2200, Steps: 400,
			Forcing: forcing.Params{Scenario: forcing.KindExponential, Amplitude: 10, Period: 1, ReferenceYear: 2000, Rate: 0.05},
		},
	},
	"9box": {
		"steady": {
			Topology: "9box", Integrator: "rk4", T0: 0, Tf: 200, Steps: 2000,
			Forcing: forcing.Params{Scenario: forcing.KindNone},
		},
		"a2": {
			Topology: "9box", Integrator: "rk4", T0: 1850, Tf: 2100, Steps: 2500,
			Forcing: a2("derivative"),
		},
		"cessation": {
			Topology: "9box", Integrator: "rk4", T0: 1850, Tf: 2500, Steps: 6500,
			Forcing: forcing.Params{Scenario: forcing.KindTable, Table: "A2-cessation"},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(topology, preset string) *Config {
	topoPresets, ok := Presets[topology]
	if !ok {
		return nil
	}
	cfg, ok := topoPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names for topology in sorted order.
func ListPresets(topology string) []string {
	topoPresets, ok := Presets[topology]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(topoPresets))
	for name := range topoPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
