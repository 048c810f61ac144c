package metrics

import (
	"math"

	"github.com/san-kum/numeth/internal/dynamo"
)

// ConvergenceOrder estimates the order q of a Newton iteration from its last
// three step sizes: q ~ log(e[i+1]/e[i]) / log(e[i]/e[i-1]). It reports 0
// until three usable errors have been seen.
type ConvergenceOrder struct {
	name   string
	errors [3]float64
	seen   int
}

func NewConvergenceOrder() *ConvergenceOrder {
	return &ConvergenceOrder{name: "convergence_order"}
}

func (c *ConvergenceOrder) Name() string { return c.name }

func (c *ConvergenceOrder) Observe(r dynamo.Record) {
	rec, ok := r.(dynamo.NewtonRecord)
	if !ok || rec.Error <= 0 {
		return
	}
	c.errors[0], c.errors[1], c.errors[2] = c.errors[1], c.errors[2], rec.Error
	c.seen++
}

func (c *ConvergenceOrder) Value() float64 {
	if c.seen < 3 {
		return 0
	}
	den := math.Log(c.errors[1] / c.errors[0])
	if den == 0 {
		return 0
	}
	return math.Log(c.errors[2]/c.errors[1]) / den
}

func (c *ConvergenceOrder) Reset() {
	c.errors = [3]float64{}
	c.seen = 0
}

// FinalError reports the error column of the last Newton record.
type FinalError struct {
	last float64
}

func NewFinalError() *FinalError { return &FinalError{} }

func (f *FinalError) Name() string { return "final_error" }

func (f *FinalError) Observe(r dynamo.Record) {
	if rec, ok := r.(dynamo.NewtonRecord); ok {
		f.last = rec.Error
	}
}

func (f *FinalError) Value() float64 { return f.last }

func (f *FinalError) Reset() { f.last = 0 }
