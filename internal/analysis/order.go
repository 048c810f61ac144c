package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/numeth/internal/dynamo"
)

type OrderEstimate struct {
	Method dynamo.Method
	// Coarse is the run at (h, n); Fine the run at (h/2, 2n) over the same
	// interval.
	Coarse, Fine Comparison
	Order        float64
}

// ObservedOrder runs m at h and at h/2 and estimates its order of accuracy
// from the two global errors. It needs at least one step and a non-zero
// error on the fine run.
func ObservedOrder(ctx context.Context, m dynamo.Method, f dynamo.ODEFunc, p dynamo.ODEParams, exact dynamo.Func) (OrderEstimate, error) {
	if p.N < 1 {
		return OrderEstimate{}, fmt.Errorf("analysis: observed order needs at least one step")
	}

	fine := p
	fine.H = p.H / 2
	fine.N = p.N * 2

	cmp, err := CompareMethods(ctx, []dynamo.Method{m}, f, p, exact)
	if err != nil {
		return OrderEstimate{}, err
	}
	est := OrderEstimate{Method: m, Coarse: cmp[0]}

	cmp, err = CompareMethods(ctx, []dynamo.Method{m}, f, fine, exact)
	if err != nil {
		return est, err
	}
	est.Fine = cmp[0]

	if est.Fine.GlobalError == 0 || est.Coarse.GlobalError == 0 {
		return est, fmt.Errorf("analysis: global error vanished, order undefined")
	}
	est.Order = math.Log2(est.Coarse.GlobalError / est.Fine.GlobalError)
	return est, nil
}
