package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/metrics"
)

type Experiment struct {
	cfg      config.Config
	engine   dynamo.Engine
	metrics  []dynamo.Metric
	recorder *metrics.Recorder
}

// New copies cfg; later changes to the caller's config do not affect the run.
func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: *cfg}
}

// WithRecorder reports the finished run to r.
func (e *Experiment) WithRecorder(r *metrics.Recorder) *Experiment {
	e.recorder = r
	return e
}

// Setup resolves the method, parses the formulas and builds the engine with
// the registry's default metrics.
func (e *Experiment) Setup(reg *Registry) error {
	m, err := reg.Lookup(string(e.cfg.Method))
	if err != nil {
		return err
	}
	e.cfg.Method = m

	eng, err := reg.Build(&e.cfg)
	if err != nil {
		return err
	}
	e.engine = eng
	e.metrics = reg.DefaultMetrics(m)
	return nil
}

// Config returns the resolved run configuration.
func (e *Experiment) Config() config.Config {
	return e.cfg
}

// Run executes the engine. The result is returned even when err is non-nil
// and carries every record completed before the failure.
func (e *Experiment) Run(ctx context.Context, obs ...dynamo.Observer) (*dynamo.Result, error) {
	if e.engine == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	for _, m := range e.metrics {
		m.Reset()
	}
	all := make([]dynamo.Observer, 0, len(obs)+1)
	all = append(all, dynamo.ObserverFunc(func(r dynamo.Record) {
		for _, m := range e.metrics {
			m.Observe(r)
		}
	}))
	all = append(all, obs...)

	start := time.Now()
	res, err := e.engine.Run(ctx, all...)
	if res != nil {
		res.Metrics = make(map[string]float64, len(e.metrics))
		for _, m := range e.metrics {
			res.Metrics[m.Name()] = m.Value()
		}
		if e.recorder != nil {
			e.recorder.Observe(res, time.Since(start))
		}
	}
	return res, err
}
