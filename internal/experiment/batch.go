package experiment

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/metrics"
)

// Batch runs independent configurations concurrently. Every run parses its
// own formulas, so runs share nothing but the optional recorder.
type Batch struct {
	reg      *Registry
	recorder *metrics.Recorder
	workers  int
}

func NewBatch(reg *Registry, rec *metrics.Recorder) *Batch {
	return &Batch{reg: reg, recorder: rec, workers: runtime.NumCPU()}
}

// WithWorkers caps the number of runs in flight; n < 1 means no cap.
func (b *Batch) WithWorkers(n int) *Batch {
	b.workers = n
	return b
}

// Run executes cfgs in parallel. results[i] and errs[i] belong to cfgs[i];
// a run that fails setup has a nil result.
func (b *Batch) Run(ctx context.Context, cfgs []*config.Config) ([]*dynamo.Result, []error) {
	results := make([]*dynamo.Result, len(cfgs))
	errs := make([]error, len(cfgs))

	// Run errors stay per slot; the group only bounds concurrency.
	var g errgroup.Group
	if b.workers > 0 {
		g.SetLimit(b.workers)
	}
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			exp := New(cfg)
			if b.recorder != nil {
				exp.WithRecorder(b.recorder)
			}
			if err := exp.Setup(b.reg); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = exp.Run(ctx)
			return nil
		})
	}

	_ = g.Wait()
	return results, errs
}

// WithField returns a copy of cfg with one numeric input field replaced,
// validated like any form input.
func WithField(cfg *config.Config, field string, value float64) (*config.Config, error) {
	in := InputsFromConfig(cfg)
	if _, ok := in[field]; !ok || field == "f" || field == "df" {
		return nil, &dynamo.ConfigError{Field: field, Err: errNotNumericField}
	}
	if field == "n" || field == "max_iter" {
		in[field] = strconv.Itoa(int(value))
	} else {
		in[field] = formatFloat(value)
	}
	return ParseInputs(cfg.Method, in)
}
