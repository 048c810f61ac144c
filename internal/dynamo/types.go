package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
)

type Method string

const (
	ImprovedEuler Method = "euler"
	RungeKutta4   Method = "rk4"
	NewtonRaphson Method = "newton"
)

// Methods lists the supported methods in menu order.
func Methods() []Method {
	return []Method{ImprovedEuler, NewtonRaphson, RungeKutta4}
}

func (m Method) DisplayName() string {
	switch m {
	case ImprovedEuler:
		return "Improved Euler"
	case RungeKutta4:
		return "Runge-Kutta 4"
	case NewtonRaphson:
		return "Newton-Raphson"
	}
	return string(m)
}

// IsODE reports whether the method integrates y' = f(x, y).
func (m Method) IsODE() bool {
	return m == ImprovedEuler || m == RungeKutta4
}

// Columns returns the trace headers for a method, iteration first.
func Columns(m Method) []string {
	switch m {
	case ImprovedEuler:
		return []string{"iteration", "x", "y", "k1", "k2", "f(x,y)"}
	case RungeKutta4:
		return []string{"iteration", "x", "y", "k1", "k2", "k3", "k4", "f(x,y)"}
	case NewtonRaphson:
		return []string{"iteration", "x_i", "f(x)", "f'(x)", "error"}
	}
	return []string{"iteration", "x", "y"}
}

// ODEFunc is the right-hand side of y' = f(x, y).
type ODEFunc func(x, y float64) (float64, error)

// Func is a real function of one variable.
type Func func(x float64) (float64, error)

type ODEParams struct {
	X0      float64 `json:"x0" yaml:"x0"`
	Y0      float64 `json:"y0" yaml:"y0"`
	H       float64 `json:"h" yaml:"h"`
	N       int     `json:"n" yaml:"n"`
	Formula string  `json:"f" yaml:"f"`
}

func (p ODEParams) Validate() error {
	if err := finite("x0", p.X0); err != nil {
		return err
	}
	if err := finite("y0", p.Y0); err != nil {
		return err
	}
	if err := finite("h", p.H); err != nil {
		return err
	}
	if p.H == 0 {
		return &ConfigError{Field: "h", Value: "0", Err: errors.New("step size must be non-zero")}
	}
	if p.N < 0 {
		return &ConfigError{Field: "n", Value: strconv.Itoa(p.N), Err: errors.New("iteration count must be non-negative")}
	}
	if p.Formula == "" {
		return &ConfigError{Field: "f", Err: errors.New("formula is empty")}
	}
	return nil
}

type NewtonParams struct {
	X0            float64 `json:"x0" yaml:"x0"`
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
	Formula       string  `json:"f" yaml:"f"`
	// Derivative may be empty; the derivative is then approximated numerically.
	Derivative string `json:"df,omitempty" yaml:"df,omitempty"`
}

func (p NewtonParams) Validate() error {
	if err := finite("x0", p.X0); err != nil {
		return err
	}
	if err := finite("tol", p.Tolerance); err != nil {
		return err
	}
	if p.Tolerance <= 0 {
		return &ConfigError{Field: "tol", Value: strconv.FormatFloat(p.Tolerance, 'g', -1, 64), Err: errors.New("tolerance must be positive")}
	}
	if p.MaxIterations < 1 {
		return &ConfigError{Field: "max_iter", Value: strconv.Itoa(p.MaxIterations), Err: errors.New("need at least one iteration")}
	}
	if p.Formula == "" {
		return &ConfigError{Field: "f", Err: errors.New("formula is empty")}
	}
	return nil
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ConfigError{Field: field, Value: strconv.FormatFloat(v, 'g', -1, 64), Err: errors.New("value must be finite")}
	}
	return nil
}

// Record is one emitted row of a trace. Implementations are value types and
// never change after emission.
type Record interface {
	Step() int
	Values() []float64
}

// EulerRecord holds the pre-step state of one Improved Euler step.
type EulerRecord struct {
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	K1       float64 `json:"k1"`
	K2       float64 `json:"k2"`
	FAtPoint float64 `json:"f"`
}

func (r EulerRecord) Step() int { return r.Index }

func (r EulerRecord) Values() []float64 {
	return []float64{r.X, r.Y, r.K1, r.K2, r.FAtPoint}
}

// RK4Record holds the pre-step state of one Runge-Kutta 4 step.
type RK4Record struct {
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	K1       float64 `json:"k1"`
	K2       float64 `json:"k2"`
	K3       float64 `json:"k3"`
	K4       float64 `json:"k4"`
	FAtPoint float64 `json:"f"`
}

func (r RK4Record) Step() int { return r.Index }

func (r RK4Record) Values() []float64 {
	return []float64{r.X, r.Y, r.K1, r.K2, r.K3, r.K4, r.FAtPoint}
}

// NewtonRecord holds one Newton-Raphson iteration. Error is |Next - X|.
type NewtonRecord struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	FX     float64 `json:"fx"`
	FPrime float64 `json:"fpx"`
	Next   float64 `json:"next"`
	Error  float64 `json:"error"`
}

func (r NewtonRecord) Step() int { return r.Index }

func (r NewtonRecord) Values() []float64 {
	return []float64{r.X, r.FX, r.FPrime, r.Error}
}

type Status int

const (
	StatusDone Status = iota
	StatusConverged
	StatusMaxIterations
	StatusDerivativeVanished
	StatusFailed
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max_iterations"
	case StatusDerivativeVanished:
		return "derivative_vanished"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Severity tells a shell how loudly to report the status.
func (s Status) Severity() Severity {
	switch s {
	case StatusDone, StatusConverged:
		return SeverityInfo
	case StatusMaxIterations, StatusCanceled:
		return SeverityWarning
	}
	return SeverityError
}

type Result struct {
	Method  Method
	Records []Record
	Status  Status
	// Root is set only when Status is StatusConverged.
	Root float64
	// X, Y is the state after the last completed step; for Newton-Raphson X is
	// the last estimate.
	X, Y    float64
	Metrics map[string]float64
	Err     error
}

// Summary renders the terminal state as a one-line message.
func (r *Result) Summary() string {
	switch r.Status {
	case StatusDone:
		return fmt.Sprintf("%d steps completed, final state x=%.6g y=%.6g", len(r.Records), r.X, r.Y)
	case StatusConverged:
		return fmt.Sprintf("converged after %d iterations, root=%.10g", len(r.Records), r.Root)
	case StatusMaxIterations:
		return fmt.Sprintf("maximum iterations (%d) reached without convergence, last estimate x=%.10g", len(r.Records), r.X)
	case StatusDerivativeVanished:
		return fmt.Sprintf("derivative vanished at x=%.10g, cannot continue", r.X)
	case StatusCanceled:
		return fmt.Sprintf("canceled after %d records", len(r.Records))
	case StatusFailed:
		return fmt.Sprintf("failed after %d records: %v", len(r.Records), r.Err)
	}
	return r.Status.String()
}

// Observer receives each record once it is complete, in emission order.
type Observer interface {
	OnRecord(r Record)
}

type ObserverFunc func(r Record)

func (f ObserverFunc) OnRecord(r Record) { f(r) }

type Engine interface {
	Method() Method
	Run(ctx context.Context, obs ...Observer) (*Result, error)
}

type Metric interface {
	Name() string
	Observe(r Record)
	Value() float64
	Reset()
}
