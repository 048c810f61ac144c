package integrators

import (
	"context"

	"github.com/san-kum/numeth/internal/dynamo"
)

type RK4 struct {
	f dynamo.ODEFunc
	p dynamo.ODEParams
}

func NewRK4(f dynamo.ODEFunc, p dynamo.ODEParams) *RK4 {
	return &RK4{f: f, p: p}
}

func (r *RK4) Method() dynamo.Method { return dynamo.RungeKutta4 }

func (r *RK4) Run(ctx context.Context, obs ...dynamo.Observer) (*dynamo.Result, error) {
	return integrate(ctx, r, r.f, r.p, obs)
}

func (r *RK4) Step(f dynamo.ODEFunc, x, y, h float64) (dynamo.RK4Record, float64, error) {
	half := h * 0.5

	k1, err := f(x, y)
	if err != nil {
		return dynamo.RK4Record{}, 0, err
	}
	k2, err := f(x+half, y+half*k1)
	if err != nil {
		return dynamo.RK4Record{}, 0, err
	}
	k3, err := f(x+half, y+half*k2)
	if err != nil {
		return dynamo.RK4Record{}, 0, err
	}
	k4, err := f(x+h, y+h*k3)
	if err != nil {
		return dynamo.RK4Record{}, 0, err
	}
	fAt, err := f(x, y)
	if err != nil {
		return dynamo.RK4Record{}, 0, err
	}

	h6 := h / 6.0
	yNext := y + h6*(k1+2*k2+2*k3+k4)
	return dynamo.RK4Record{X: x, Y: y, K1: k1, K2: k2, K3: k3, K4: k4, FAtPoint: fAt}, yNext, nil
}

func (r *RK4) step(i int, f dynamo.ODEFunc, x, y, h float64) (dynamo.Record, float64, error) {
	rec, yNext, err := r.Step(f, x, y, h)
	if err != nil {
		return nil, 0, err
	}
	rec.Index = i
	return rec, yNext, nil
}
