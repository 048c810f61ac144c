// Package roots implements Newton-Raphson root finding over a user formula.
//
// A run ends in one of three reportable states: converged, maximum iterations
// reached, or derivative vanished. None of them is an error; only a formula
// that cannot be evaluated aborts the run.
//
// Convergence is decided on the step size alone: the run converges at the
// first iteration with |x_{i+1} - x_i| < tolerance.
package roots

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/expr"
)

// DerivativeEpsilon is the magnitude below which f'(x) counts as zero.
const DerivativeEpsilon = 1e-10

type Newton struct {
	f      dynamo.Func
	fPrime dynamo.Func
	p      dynamo.NewtonParams
}

func NewNewton(f, fPrime dynamo.Func, p dynamo.NewtonParams) *Newton {
	return &Newton{f: f, fPrime: fPrime, p: p}
}

func (n *Newton) Method() dynamo.Method { return dynamo.NewtonRaphson }

func (n *Newton) Run(ctx context.Context, obs ...dynamo.Observer) (*dynamo.Result, error) {
	maxIter := n.p.MaxIterations
	if maxIter < 1 {
		maxIter = 1
	}
	res := &dynamo.Result{
		Method:  dynamo.NewtonRaphson,
		Records: make([]dynamo.Record, 0, maxIter),
		X:       n.p.X0,
	}

	x := n.p.X0
	for i := 0; i < maxIter; i++ {
		select {
		case <-ctx.Done():
			res.Status = dynamo.StatusCanceled
			res.Err = ctx.Err()
			return res, ctx.Err()
		default:
		}

		rec, vanished, err := n.Iterate(x)
		if err != nil {
			stepErr := &dynamo.StepError{Method: dynamo.NewtonRaphson, Index: i, Err: err}
			res.Status = dynamo.StatusFailed
			res.Err = stepErr
			return res, stepErr
		}
		if vanished {
			res.Status = dynamo.StatusDerivativeVanished
			return res, nil
		}

		rec.Index = i
		res.Records = append(res.Records, rec)
		for _, o := range obs {
			o.OnRecord(rec)
		}

		x = rec.Next
		res.X = x
		if rec.Error < n.p.Tolerance {
			res.Status = dynamo.StatusConverged
			res.Root = rec.Next
			return res, nil
		}
	}

	res.Status = dynamo.StatusMaxIterations
	return res, nil
}

// Iterate performs one Newton step from x. vanished reports that |f'(x)| is
// below DerivativeEpsilon, in which case the record is empty.
func (n *Newton) Iterate(x float64) (rec dynamo.NewtonRecord, vanished bool, err error) {
	fx, err := n.f(x)
	if err != nil {
		return rec, false, err
	}
	fpx, err := n.fPrime(x)
	if err != nil {
		return rec, false, err
	}
	if math.Abs(fpx) < DerivativeEpsilon {
		return rec, true, nil
	}

	next := x - fx/fpx
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return rec, false, &expr.EvalError{
			Formula:  n.p.Formula,
			Bindings: map[string]float64{"x": x},
			Err:      fmt.Errorf("%w: next estimate is %v", expr.ErrNonFinite, next),
		}
	}

	return dynamo.NewtonRecord{
		X:      x,
		FX:     fx,
		FPrime: fpx,
		Next:   next,
		Error:  math.Abs(next - x),
	}, false, nil
}
