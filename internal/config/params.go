package config

import (
	"math"
	"sort"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

var tunable = map[string]func(*Config, float64){
	"amplitude":      func(c *Config, v float64) { c.Forcing.Amplitude = v },
	"period":         func(c *Config, v float64) { c.Forcing.Period = v },
	"reference_year": func(c *Config, v float64) { c.Forcing.ReferenceYear = v },
	"rate":           func(c *Config, v float64) { c.Forcing.Rate = v },
	"target":         func(c *Config, v float64) { c.Forcing.Target = int(v) },
	"t0":             func(c *Config, v float64) { c.T0 = v },
	"tf":             func(c *Config, v float64) { c.Tf = v },
	"steps":          func(c *Config, v float64) { c.Steps = int(math.Round(v)) },
}

// Set assigns a numeric parameter by its yaml name.
func (c *Config) Set(name string, v float64) error {
	fn, ok := tunable[name]
	if !ok {
		return dynamo.Configf("config", "unknown parameter %q (tunable: %v)", name, TunableNames())
	}
	fn(c, v)
	return nil
}

// TunableNames lists the parameters Set accepts.
func TunableNames() []string {
	names := make([]string, 0, len(tunable))
	for name := range tunable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
