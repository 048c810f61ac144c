// Package automation runs scripted sequences of runs and one-parameter
// sweeps.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/metrics"
)

// Scenario is a named list of runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (optional) and overlays its own
// parameter blocks.
type ScenarioStep struct {
	Name   string               `yaml:"name"`
	Method string               `yaml:"method"`
	Preset string               `yaml:"preset"`
	ODE    *dynamo.ODEParams    `yaml:"ode"`
	Newton *dynamo.NewtonParams `yaml:"newton"`
}

// StepResult pairs a step with its outcome. Result may be nil when the step
// could not be set up.
type StepResult struct {
	Step   ScenarioStep
	Result *dynamo.Result
	Err    error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}

	return &scenario, nil
}

// Config resolves a step into a run configuration.
func (s ScenarioStep) Config(reg *experiment.Registry) (*config.Config, error) {
	m, err := reg.Lookup(s.Method)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig(m)
	if s.Preset != "" {
		p := config.GetPreset(m, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %v)", s.Preset, m, config.ListPresets(m))
		}
		cfg = p
	}
	if s.ODE != nil {
		cfg.ODE = *s.ODE
	}
	if s.Newton != nil {
		cfg.Newton = *s.Newton
	}
	return cfg, nil
}

// RunScenario executes every step concurrently and reports them in file
// order. A failing step does not stop the others.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, rec *metrics.Recorder) []StepResult {
	out := make([]StepResult, len(scenario.Steps))
	cfgs := make([]*config.Config, 0, len(scenario.Steps))
	idx := make([]int, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		out[i].Step = step
		cfg, err := step.Config(reg)
		if err != nil {
			out[i].Err = fmt.Errorf("step %d: %w", i+1, err)
			continue
		}
		cfgs = append(cfgs, cfg)
		idx = append(idx, i)
	}

	results, errs := experiment.NewBatch(reg, rec).Run(ctx, cfgs)
	for j, i := range idx {
		out[i].Result = results[j]
		if errs[j] != nil {
			out[i].Err = fmt.Errorf("step %d: %w", i+1, errs[j])
		}
	}
	return out
}

// ParameterSweep varies one numeric input field of a base configuration.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Status     dynamo.Status
	Iterations int
	// Final is the root for a converged Newton run, the last estimate for
	// other Newton runs and the final y for ODE runs.
	Final float64
	Err   error
}

// RunSweep runs the base configuration once per parameter value.
func RunSweep(ctx context.Context, sweep *ParameterSweep, reg *experiment.Registry, rec *metrics.Recorder) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	values := make([]float64, sweep.NumSteps)
	cfgs := make([]*config.Config, sweep.NumSteps)
	for i := range values {
		values[i] = sweep.ParamMin + float64(i)*paramStep
		cfg, err := experiment.WithField(sweep.Base, sweep.ParamName, values[i])
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", sweep.ParamName, values[i], err)
		}
		cfgs[i] = cfg
	}

	results, errs := experiment.NewBatch(reg, rec).Run(ctx, cfgs)

	out := make([]SweepResult, sweep.NumSteps)
	for i, res := range results {
		out[i] = SweepResult{ParamValue: values[i], Err: errs[i]}
		if res == nil {
			out[i].Status = dynamo.StatusFailed
			continue
		}
		out[i].Status = res.Status
		out[i].Iterations = len(res.Records)
		switch {
		case res.Status == dynamo.StatusConverged:
			out[i].Final = res.Root
		case res.Method.IsODE():
			out[i].Final = res.Y
		default:
			out[i].Final = res.X
		}
	}
	return out, nil
}
