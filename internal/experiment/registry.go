package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/expr"
	"github.com/san-kum/numeth/internal/integrators"
	"github.com/san-kum/numeth/internal/metrics"
	"github.com/san-kum/numeth/internal/roots"
)

type Registry struct {
	engines map[dynamo.Method]func(cfg *config.Config) (dynamo.Engine, error)
	aliases map[string]dynamo.Method
}

func NewRegistry() *Registry {
	r := &Registry{
		engines: make(map[dynamo.Method]func(*config.Config) (dynamo.Engine, error)),
		aliases: make(map[string]dynamo.Method),
	}

	r.engines[dynamo.ImprovedEuler] = func(cfg *config.Config) (dynamo.Engine, error) {
		f, err := parseODE(cfg.ODE.Formula)
		if err != nil {
			return nil, err
		}
		return integrators.NewImprovedEuler(f, cfg.ODE), nil
	}
	r.engines[dynamo.RungeKutta4] = func(cfg *config.Config) (dynamo.Engine, error) {
		f, err := parseODE(cfg.ODE.Formula)
		if err != nil {
			return nil, err
		}
		return integrators.NewRK4(f, cfg.ODE), nil
	}
	r.engines[dynamo.NewtonRaphson] = func(cfg *config.Config) (dynamo.Engine, error) {
		f, err := parseFunc("f", cfg.Newton.Formula)
		if err != nil {
			return nil, err
		}
		var fPrime dynamo.Func
		if strings.TrimSpace(cfg.Newton.Derivative) == "" {
			fPrime = expr.NumericDerivative(f)
		} else if fPrime, err = parseFunc("df", cfg.Newton.Derivative); err != nil {
			return nil, err
		}
		return roots.NewNewton(f, fPrime, cfg.Newton), nil
	}

	r.alias(dynamo.ImprovedEuler, "euler", "heun", "improved-euler", "improved euler", "euler mejorado")
	r.alias(dynamo.RungeKutta4, "rk4", "runge-kutta", "runge-kutta 4", "runge kutta 4")
	r.alias(dynamo.NewtonRaphson, "newton", "newton-raphson", "newton raphson")

	return r
}

func (r *Registry) alias(m dynamo.Method, names ...string) {
	for _, n := range names {
		r.aliases[normalize(n)] = m
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup resolves a method name, alias or display name, ignoring case.
func (r *Registry) Lookup(name string) (dynamo.Method, error) {
	n := normalize(name)
	if m, ok := r.aliases[n]; ok {
		return m, nil
	}
	for m := range r.engines {
		if normalize(m.DisplayName()) == n {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", dynamo.ErrUnknownMethod, name)
}

// Aliases lists the accepted names for m, sorted.
func (r *Registry) Aliases(m dynamo.Method) []string {
	var names []string
	for n, am := range r.aliases {
		if am == m {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Methods() []dynamo.Method {
	return dynamo.Methods()
}

// Build validates cfg, parses its formulas and constructs the engine. Each
// call parses afresh, so engines never share an evaluator.
func (r *Registry) Build(cfg *config.Config) (dynamo.Engine, error) {
	fn, ok := r.engines[cfg.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownMethod, cfg.Method)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return fn(cfg)
}

func (r *Registry) DefaultMetrics(m dynamo.Method) []dynamo.Metric {
	if m == dynamo.NewtonRaphson {
		return []dynamo.Metric{
			metrics.NewConvergenceOrder(),
			metrics.NewFinalError(),
			metrics.NewEvaluations(),
		}
	}
	return []dynamo.Metric{
		metrics.NewDrift(),
		metrics.NewStability(1e6),
		metrics.NewEvaluations(),
	}
}

func parseODE(formula string) (dynamo.ODEFunc, error) {
	e, err := expr.Parse(formula, "x", "y")
	if err != nil {
		return nil, &dynamo.ConfigError{Field: "f", Value: formula, Err: err}
	}
	return e.Func2("x", "y"), nil
}

func parseFunc(field, formula string) (dynamo.Func, error) {
	e, err := expr.Parse(formula, "x")
	if err != nil {
		return nil, &dynamo.ConfigError{Field: field, Value: formula, Err: err}
	}
	return e.Func1("x"), nil
}
