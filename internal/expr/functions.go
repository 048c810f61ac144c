package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
)

type unary func(float64) float64

var functionTable = map[string]govaluate.ExpressionFunction{
	"sin":   fn1("sin", math.Sin, nil),
	"cos":   fn1("cos", math.Cos, nil),
	"tan":   fn1("tan", math.Tan, nil),
	"asin":  fn1("asin", math.Asin, unitInterval),
	"acos":  fn1("acos", math.Acos, unitInterval),
	"atan":  fn1("atan", math.Atan, nil),
	"sinh":  fn1("sinh", math.Sinh, nil),
	"cosh":  fn1("cosh", math.Cosh, nil),
	"tanh":  fn1("tanh", math.Tanh, nil),
	"exp":   fn1("exp", math.Exp, nil),
	"log":   fn1("log", math.Log, positive),
	"ln":    fn1("ln", math.Log, positive),
	"log10": fn1("log10", math.Log10, positive),
	"sqrt":  fn1("sqrt", math.Sqrt, nonNegative),
	"abs":   fn1("abs", math.Abs, nil),
	"floor": fn1("floor", math.Floor, nil),
	"ceil":  fn1("ceil", math.Ceil, nil),
	"pow":   fn2("pow", math.Pow),
	"atan2": fn2("atan2", math.Atan2),
}

// Functions lists the function names a formula may call.
func Functions() []string {
	names := make([]string, 0, len(functionTable))
	for name := range functionTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unitInterval(x float64) bool { return x >= -1 && x <= 1 }
func positive(x float64) bool     { return x > 0 }
func nonNegative(x float64) bool  { return x >= 0 }

func fn1(name string, f unary, domain func(float64) bool) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes 1, got %d", ErrArity, name, len(args))
		}
		x, err := toFloat(name, args[0])
		if err != nil {
			return nil, err
		}
		if domain != nil && !domain(x) {
			return nil, fmt.Errorf("%w: %s(%g)", ErrDomain, name, x)
		}
		return f(x), nil
	}
}

func fn2(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes 2, got %d", ErrArity, name, len(args))
		}
		a, err := toFloat(name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := toFloat(name, args[1])
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}
}

func toFloat(name string, v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%w: %s argument is %T", ErrNotNumeric, name, v)
}
