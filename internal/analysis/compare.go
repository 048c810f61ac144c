package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/integrators"
)

type Comparison struct {
	Method dynamo.Method
	H      float64
	N      int
	// FinalX, FinalY is the state after the last step; Exact is the exact
	// solution at FinalX.
	FinalX, FinalY float64
	Exact          float64
	GlobalError    float64
	// MaxError is the largest |y - exact(x)| over every record and the final
	// state.
	MaxError float64
}

// Compare measures a finished ODE trace against exact.
func Compare(res *dynamo.Result, exact dynamo.Func) (Comparison, error) {
	if res == nil || !res.Method.IsODE() {
		return Comparison{}, fmt.Errorf("analysis: comparison needs an ODE result")
	}

	c := Comparison{Method: res.Method, N: len(res.Records), FinalX: res.X, FinalY: res.Y}

	for _, r := range res.Records {
		x, y := odeState(r)
		want, err := exact(x)
		if err != nil {
			return c, fmt.Errorf("analysis: exact solution at x=%g: %w", x, err)
		}
		c.MaxError = math.Max(c.MaxError, math.Abs(y-want))
	}
	if len(res.Records) > 1 {
		x0, _ := odeState(res.Records[0])
		x1, _ := odeState(res.Records[1])
		c.H = x1 - x0
	} else if len(res.Records) == 1 {
		x0, _ := odeState(res.Records[0])
		c.H = res.X - x0
	}

	want, err := exact(res.X)
	if err != nil {
		return c, fmt.Errorf("analysis: exact solution at x=%g: %w", res.X, err)
	}
	c.Exact = want
	c.GlobalError = math.Abs(res.Y - want)
	c.MaxError = math.Max(c.MaxError, c.GlobalError)
	return c, nil
}

// CompareMethods solves the same problem with each method and compares every
// trace against exact. A failing run aborts the comparison.
func CompareMethods(ctx context.Context, methods []dynamo.Method, f dynamo.ODEFunc, p dynamo.ODEParams, exact dynamo.Func) ([]Comparison, error) {
	out := make([]Comparison, 0, len(methods))
	for _, m := range methods {
		eng, err := integrators.New(m, f, p)
		if err != nil {
			return out, err
		}
		res, err := eng.Run(ctx)
		if err != nil {
			return out, err
		}
		c, err := Compare(res, exact)
		if err != nil {
			return out, err
		}
		c.H = p.H
		out = append(out, c)
	}
	return out, nil
}

func odeState(r dynamo.Record) (x, y float64) {
	switch rec := r.(type) {
	case dynamo.EulerRecord:
		return rec.X, rec.Y
	case dynamo.RK4Record:
		return rec.X, rec.Y
	}
	return 0, 0
}
