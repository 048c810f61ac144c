package metrics

import (
	"math"

	"github.com/san-kum/numeth/internal/dynamo"
)

// Drift tracks the largest relative departure of y from its first observed
// value. Newton records are ignored.
type Drift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift() *Drift {
	return &Drift{name: "max_drift"}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(r dynamo.Record) {
	var y float64
	switch rec := r.(type) {
	case dynamo.EulerRecord:
		y = rec.Y
	case dynamo.RK4Record:
		y = rec.Y
	default:
		return
	}

	if d.samples == 0 {
		d.initial = y
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(y-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 {
	return d.maxDrift
}

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
