// Package analysis measures ODE traces against a known exact solution.
//
//   - [Compare]: pointwise and final global error of one trace
//   - [CompareMethods]: the same problem solved by several methods
//   - [ObservedOrder]: order of accuracy from a run at h and at h/2
//
// # Observed Order
//
// Halving the step size of a method of order p divides the global error by
// roughly 2^p, so
//
//	p ~ log2(err(h) / err(h/2))
//
// Improved Euler should report close to 2 and RK4 close to 4 on smooth
// problems:
//
//	est, err := analysis.ObservedOrder(ctx, dynamo.RungeKutta4, f, p, exact)
package analysis
