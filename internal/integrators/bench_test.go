package integrators

import (
	"context"
	"testing"

	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/expr"
)

func BenchmarkImprovedEulerStep(b *testing.B) {
	e := NewImprovedEuler(growth, dynamo.ODEParams{})
	x, y := 0.0, 1.0

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, y, _ = e.Step(growth, x, y, 1e-6)
	}
}

func BenchmarkRK4Step(b *testing.B) {
	r := NewRK4(growth, dynamo.ODEParams{})
	x, y := 0.0, 1.0

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, y, _ = r.Step(growth, x, y, 1e-6)
	}
}

func BenchmarkRK4Run_Parsed(b *testing.B) {
	e, err := expr.Parse("y - x**2 + 1", "x", "y")
	if err != nil {
		b.Fatal(err)
	}
	p := dynamo.ODEParams{X0: 0, Y0: 0.5, H: 0.01, N: 100}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewRK4(e.Func2("x", "y"), p).Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
