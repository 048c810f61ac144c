// Package expr turns user-authored formula strings into pure numeric functions.
//
// Formulas are parsed once over a declared set of variables and evaluated by
// binding every declared variable to a float64:
//
//	e, err := expr.Parse("y - x**2 + 1", "x", "y")
//	v, err := e.Evaluate(map[string]float64{"x": 0, "y": 1})
//
// Both ** and ^ denote exponentiation. Precedence follows Python: ** is right
// associative and binds tighter than unary minus, so -x**2 is -(x**2).
// Numbers may use scientific notation (1e-3). The constants pi and E and the usual
// elementary functions are predefined; see [Functions].
package expr

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
)

var (
	ErrSyntax        = errors.New("syntax error")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrUnsupported   = errors.New("unsupported operator")
	ErrNonFinite     = errors.New("result is not a finite real number")
	ErrDomain        = errors.New("argument outside function domain")
	ErrArity         = errors.New("wrong number of arguments")
	ErrNotNumeric    = errors.New("result is not numeric")
)

// ParseError is returned when a formula cannot be turned into an Expression.
type ParseError struct {
	Formula string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expr: cannot parse %q: %v", e.Formula, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EvalError is returned when a formula has no finite real value at a point.
type EvalError struct {
	Formula  string
	Bindings map[string]float64
	Err      error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("expr: evaluating %q at %s: %v", e.Formula, formatBindings(e.Bindings), e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

func formatBindings(b map[string]float64) string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, b[name])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Constants are bound in every evaluation and may not be declared as variables.
var Constants = map[string]float64{
	"pi": math.Pi,
	"E":  math.E,
}

// Expression is an immutable parsed formula. It is safe for concurrent use.
type Expression struct {
	src  string
	vars []string
	eval *govaluate.EvaluableExpression
}

// Parse parses formula over the declared variables.
func Parse(formula string, vars ...string) (*Expression, error) {
	src := strings.TrimSpace(formula)
	if src == "" {
		return nil, &ParseError{Formula: formula, Err: fmt.Errorf("%w: empty formula", ErrSyntax)}
	}
	for _, v := range vars {
		if _, ok := Constants[v]; ok {
			return nil, &ParseError{Formula: formula, Err: fmt.Errorf("%w: %q is a constant", ErrUnsupported, v)}
		}
	}

	// govaluate binds prefix minus tighter than ** and reads ^ as xor, so
	// precedence is settled here and handed over fully parenthesized.
	lowered, err := lower(src)
	if err != nil {
		return nil, &ParseError{Formula: formula, Err: err}
	}

	ev, err := govaluate.NewEvaluableExpressionWithFunctions(lowered, functionTable)
	if err != nil {
		return nil, &ParseError{Formula: formula, Err: fmt.Errorf("%w: %v", ErrSyntax, err)}
	}

	if err := checkTokens(ev.Tokens()); err != nil {
		return nil, &ParseError{Formula: formula, Err: err}
	}

	declared := make(map[string]bool, len(vars))
	for _, v := range vars {
		declared[v] = true
	}
	for _, name := range ev.Vars() {
		if declared[name] {
			continue
		}
		if _, ok := Constants[name]; ok {
			continue
		}
		return nil, &ParseError{Formula: formula, Err: fmt.Errorf("%w %q (declared: %s)", ErrUnknownSymbol, name, strings.Join(vars, ", "))}
	}

	return &Expression{
		src:  src,
		vars: append([]string(nil), vars...),
		eval: ev,
	}, nil
}

func checkTokens(tokens []govaluate.ExpressionToken) error {
	for _, tok := range tokens {
		switch tok.Kind {
		case govaluate.NUMERIC, govaluate.VARIABLE, govaluate.FUNCTION,
			govaluate.SEPARATOR, govaluate.CLAUSE, govaluate.CLAUSE_CLOSE:
		case govaluate.PREFIX:
			if tok.Value != "-" {
				return fmt.Errorf("%w %v", ErrUnsupported, tok.Value)
			}
		case govaluate.MODIFIER:
			switch tok.Value {
			case "+", "-", "*", "/", "%", "**":
			default:
				return fmt.Errorf("%w %v", ErrUnsupported, tok.Value)
			}
		default:
			return fmt.Errorf("%w %v (%s)", ErrUnsupported, tok.Value, tok.Kind.String())
		}
	}
	return nil
}

func (e *Expression) String() string { return e.src }

// Vars returns the declared variables in declaration order.
func (e *Expression) Vars() []string {
	return append([]string(nil), e.vars...)
}

// Evaluate substitutes bindings and computes the value. Every declared
// variable must be bound; a missing binding is a programming error and panics.
func (e *Expression) Evaluate(bindings map[string]float64) (float64, error) {
	params := make(map[string]interface{}, len(e.vars)+len(Constants))
	for name, v := range Constants {
		params[name] = v
	}
	for _, name := range e.vars {
		v, ok := bindings[name]
		if !ok {
			panic(fmt.Sprintf("expr: variable %q of %q is not bound", name, e.src))
		}
		params[name] = v
	}

	out, err := e.eval.Evaluate(params)
	if err != nil {
		return 0, e.fail(bindings, err)
	}

	v, ok := out.(float64)
	if !ok {
		return 0, e.fail(bindings, fmt.Errorf("%w: got %T", ErrNotNumeric, out))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, e.fail(bindings, fmt.Errorf("%w: %v", ErrNonFinite, v))
	}
	return v, nil
}

func (e *Expression) fail(bindings map[string]float64, err error) error {
	copied := make(map[string]float64, len(e.vars))
	for _, name := range e.vars {
		copied[name] = bindings[name]
	}
	return &EvalError{Formula: e.src, Bindings: copied, Err: err}
}

// Func1 adapts the expression to a function of the named variable.
func (e *Expression) Func1(name string) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		return e.Evaluate(map[string]float64{name: x})
	}
}

// Func2 adapts the expression to a function of two named variables.
func (e *Expression) Func2(xName, yName string) func(float64, float64) (float64, error) {
	return func(x, y float64) (float64, error) {
		return e.Evaluate(map[string]float64{xName: x, yName: y})
	}
}
