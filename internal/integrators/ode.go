// Package integrators implements the fixed-step engines for y' = f(x, y):
// Improved Euler (Heun's method) and classic fourth-order Runge-Kutta.
//
// Both engines run exactly n steps. Every record carries the state before its
// step together with the slopes sampled during the step.
package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/expr"
)

type stepper interface {
	Method() dynamo.Method
	step(i int, f dynamo.ODEFunc, x, y, h float64) (dynamo.Record, float64, error)
}

func integrate(ctx context.Context, s stepper, f dynamo.ODEFunc, p dynamo.ODEParams, obs []dynamo.Observer) (*dynamo.Result, error) {
	n := p.N
	if n < 0 {
		n = 0
	}
	res := &dynamo.Result{
		Method:  s.Method(),
		Records: make([]dynamo.Record, 0, n),
		X:       p.X0,
		Y:       p.Y0,
	}

	x, y := p.X0, p.Y0
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			res.Status = dynamo.StatusCanceled
			res.Err = ctx.Err()
			return res, ctx.Err()
		default:
		}

		rec, yNext, err := s.step(i, f, x, y, p.H)
		if err == nil && (math.IsNaN(yNext) || math.IsInf(yNext, 0)) {
			err = &expr.EvalError{
				Formula:  p.Formula,
				Bindings: map[string]float64{"x": x, "y": y},
				Err:      fmt.Errorf("%w: next y is %v", expr.ErrNonFinite, yNext),
			}
		}
		if err != nil {
			stepErr := &dynamo.StepError{Method: s.Method(), Index: i, Err: err}
			res.Status = dynamo.StatusFailed
			res.Err = stepErr
			return res, stepErr
		}

		res.Records = append(res.Records, rec)
		for _, o := range obs {
			o.OnRecord(rec)
		}

		x, y = x+p.H, yNext
		res.X, res.Y = x, y
	}

	res.Status = dynamo.StatusDone
	return res, nil
}

// New builds the engine for an ODE method.
func New(m dynamo.Method, f dynamo.ODEFunc, p dynamo.ODEParams) (dynamo.Engine, error) {
	switch m {
	case dynamo.ImprovedEuler:
		return NewImprovedEuler(f, p), nil
	case dynamo.RungeKutta4:
		return NewRK4(f, p), nil
	}
	return nil, fmt.Errorf("%w: %q is not an ODE method", dynamo.ErrUnknownMethod, m)
}
