package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/carbonbox/internal/forcing"
)

const (
	DefaultTopology   = "4box"
	DefaultIntegrator = "rk4"
	DefaultT0         = 1850.0
	DefaultTf         = 2100.0
	DefaultSteps      = 250
	DefaultTable      = "A2"
)

type Config struct {
	Topology     string         `yaml:"topology"`
	TopologyFile string         `yaml:"topology_file,omitempty"`
	Integrator   string         `yaml:"integrator"`
	Complex      bool           `yaml:"complex"`
	T0           float64        `yaml:"t0"`
	Tf           float64        `yaml:"tf"`
	Steps        int            `yaml:"steps"`
	AllowInvalid bool           `yaml:"allow_invalid"`
	Forcing      forcing.Params `yaml:"forcing"`
}

// DefaultConfig is the 4-box model driven by the A2 emission table from the
// start of the industrial era to 2100.
func DefaultConfig() *Config {
	return &Config{
		Topology:   DefaultTopology,
		Integrator: DefaultIntegrator,
		T0:         DefaultT0,
		Tf:         DefaultTf,
		Steps:      DefaultSteps,
		Forcing: forcing.Params{
			Scenario: forcing.KindTable,
			Table:    DefaultTable,
			Target:   0,
			Mode:     forcing.AddToDerivative.String(),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
