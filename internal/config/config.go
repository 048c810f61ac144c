package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/numeth/internal/dynamo"
)

const (
	DefaultX0      = 0.0
	DefaultY0      = 1.0
	DefaultH       = 0.1
	DefaultN       = 10
	DefaultODE     = "y - x**2 + 1"
	DefaultGuess   = 1.0
	DefaultTol     = 0.0001
	DefaultMaxIter = 10
	DefaultNewton  = "x**3 - x - 1"
	DefaultDeriv   = "3*x**2 - 1"
)

// Config is one run: the method plus both parameter blocks. Only the block
// matching Method is used.
type Config struct {
	Method dynamo.Method       `yaml:"method" json:"method"`
	ODE    dynamo.ODEParams    `yaml:"ode" json:"ode"`
	Newton dynamo.NewtonParams `yaml:"newton" json:"newton"`
}

func DefaultODEParams() dynamo.ODEParams {
	return dynamo.ODEParams{
		X0:      DefaultX0,
		Y0:      DefaultY0,
		H:       DefaultH,
		N:       DefaultN,
		Formula: DefaultODE,
	}
}

func DefaultNewtonParams() dynamo.NewtonParams {
	return dynamo.NewtonParams{
		X0:            DefaultGuess,
		Tolerance:     DefaultTol,
		MaxIterations: DefaultMaxIter,
		Formula:       DefaultNewton,
		Derivative:    DefaultDeriv,
	}
}

func DefaultConfig(m dynamo.Method) *Config {
	return &Config{
		Method: m,
		ODE:    DefaultODEParams(),
		Newton: DefaultNewtonParams(),
	}
}

// Validate checks the parameter block selected by Method.
func (c *Config) Validate() error {
	switch {
	case c.Method.IsODE():
		return c.ODE.Validate()
	case c.Method == dynamo.NewtonRaphson:
		return c.Newton.Validate()
	}
	return fmt.Errorf("%w: %q", dynamo.ErrUnknownMethod, c.Method)
}

// Params returns the active parameter block.
func (c *Config) Params() any {
	if c.Method == dynamo.NewtonRaphson {
		return c.Newton
	}
	return c.ODE
}

// Load reads a YAML run file over the defaults, so a file may set only the
// fields it cares about.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig(dynamo.RungeKutta4)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadInto overlays a YAML run file on an existing config.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
