package config

import (
	"sort"

	"github.com/san-kum/numeth/internal/dynamo"
)

var odePresets = map[string]dynamo.ODEParams{
	"textbook": DefaultODEParams(),
	"growth":   {X0: 0, Y0: 1, H: 0.1, N: 10, Formula: "y"},
	"decay":    {X0: 0, Y0: 1, H: 0.1, N: 20, Formula: "-2*y + x"},
	"logistic": {X0: 0, Y0: 0.1, H: 0.5, N: 20, Formula: "y*(1 - y)"},
	"trig":     {X0: 0, Y0: 0, H: 0.1, N: 31, Formula: "cos(x)"},
}

var newtonPresets = map[string]dynamo.NewtonParams{
	"cubic":       DefaultNewtonParams(),
	"sqrt2":       {X0: 1, Tolerance: 1e-10, MaxIterations: 20, Formula: "x**2 - 2", Derivative: "2*x"},
	"cosine":      {X0: 0.5, Tolerance: 1e-8, MaxIterations: 20, Formula: "cos(x) - x", Derivative: "-sin(x) - 1"},
	"numeric":     {X0: 1, Tolerance: 1e-8, MaxIterations: 20, Formula: "x**3 - x - 1"},
	"stationary":  {X0: 0, Tolerance: 1e-6, MaxIterations: 10, Formula: "x**2 + 1", Derivative: "2*x"},
	"oscillating": {X0: 0, Tolerance: 1e-6, MaxIterations: 10, Formula: "x**3 - 2*x + 2", Derivative: "3*x**2 - 2"},
}

// Presets maps a method to its named runs.
var Presets = buildPresets()

func buildPresets() map[dynamo.Method]map[string]*Config {
	out := make(map[dynamo.Method]map[string]*Config)
	for _, m := range []dynamo.Method{dynamo.ImprovedEuler, dynamo.RungeKutta4} {
		out[m] = make(map[string]*Config, len(odePresets))
		for name, p := range odePresets {
			cfg := DefaultConfig(m)
			cfg.ODE = p
			out[m][name] = cfg
		}
	}
	out[dynamo.NewtonRaphson] = make(map[string]*Config, len(newtonPresets))
	for name, p := range newtonPresets {
		cfg := DefaultConfig(dynamo.NewtonRaphson)
		cfg.Newton = p
		out[dynamo.NewtonRaphson][name] = cfg
	}
	return out
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(m dynamo.Method, preset string) *Config {
	methodPresets, ok := Presets[m]
	if !ok {
		return nil
	}
	cfg, ok := methodPresets[preset]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets(m dynamo.Method) []string {
	methodPresets, ok := Presets[m]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(methodPresets))
	for name := range methodPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
