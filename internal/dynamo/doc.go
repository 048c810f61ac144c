// Package dynamo provides the core model shared by the numerical method engines.
//
// The package defines the types every engine speaks in:
//
//   - [Method]: one of the three supported methods
//   - [ODEParams], [NewtonParams]: validated, immutable run parameters
//   - [Record]: one row of a trace ([EulerRecord], [RK4Record], [NewtonRecord])
//   - [Status]: the terminal state of a run
//   - [Result]: the ordered trace plus its terminal state
//   - [Engine]: something that drives one run to a terminal state
//
// # Example
//
//	f, _ := expr.Parse("y - x**2 + 1", "x", "y")
//	eng := integrators.NewRK4(f.Func2("x", "y"), dynamo.ODEParams{X0: 0, Y0: 1, H: 0.1, N: 10})
//	res, err := eng.Run(ctx)
//
// # Thread Safety
//
// Engines are NOT thread-safe. Each run owns its evaluator and a copy of its
// parameters; build a new engine for every run.
package dynamo
