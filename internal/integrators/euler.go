package integrators

import (
	"context"

	"github.com/san-kum/numeth/internal/dynamo"
)

// ImprovedEuler is Heun's method: the average of the slope at the start of the
// step and the slope at the Euler-predicted end point.
type ImprovedEuler struct {
	f dynamo.ODEFunc
	p dynamo.ODEParams
}

func NewImprovedEuler(f dynamo.ODEFunc, p dynamo.ODEParams) *ImprovedEuler {
	return &ImprovedEuler{f: f, p: p}
}

func (e *ImprovedEuler) Method() dynamo.Method { return dynamo.ImprovedEuler }

func (e *ImprovedEuler) Run(ctx context.Context, obs ...dynamo.Observer) (*dynamo.Result, error) {
	return integrate(ctx, e, e.f, e.p, obs)
}

// Step advances (x, y) by h and returns the record for the pre-step state
// together with the next y.
func (e *ImprovedEuler) Step(f dynamo.ODEFunc, x, y, h float64) (dynamo.EulerRecord, float64, error) {
	k1, err := f(x, y)
	if err != nil {
		return dynamo.EulerRecord{}, 0, err
	}
	k2, err := f(x+h, y+h*k1)
	if err != nil {
		return dynamo.EulerRecord{}, 0, err
	}
	// Same point as k1; evaluated again so the f(x,y) column is measured, not copied.
	fAt, err := f(x, y)
	if err != nil {
		return dynamo.EulerRecord{}, 0, err
	}

	yNext := y + (h/2)*(k1+k2)
	return dynamo.EulerRecord{X: x, Y: y, K1: k1, K2: k2, FAtPoint: fAt}, yNext, nil
}

func (e *ImprovedEuler) step(i int, f dynamo.ODEFunc, x, y, h float64) (dynamo.Record, float64, error) {
	rec, yNext, err := e.Step(f, x, y, h)
	if err != nil {
		return nil, 0, err
	}
	rec.Index = i
	return rec, yNext, nil
}
