package expr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// NumericDerivative approximates f' with a central difference. The first
// evaluation error of f at any sample point is returned instead of a value.
func NumericDerivative(f func(float64) (float64, error)) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		var evalErr error
		d := fd.Derivative(func(t float64) float64 {
			v, err := f(t)
			if err != nil {
				if evalErr == nil {
					evalErr = err
				}
				return math.NaN()
			}
			return v
		}, x, &fd.Settings{Formula: fd.Central})
		if evalErr != nil {
			return 0, evalErr
		}
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, fmt.Errorf("expr: numeric derivative at %g: %w", x, ErrNonFinite)
		}
		return d, nil
	}
}
