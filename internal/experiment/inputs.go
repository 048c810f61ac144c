package experiment

import (
	"errors"
	"strconv"
	"strings"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
)

// Inputs holds the raw strings a shell collected, keyed by field name.
type Inputs map[string]string

// FieldNames lists the input fields of m in form order.
func FieldNames(m dynamo.Method) []string {
	if m == dynamo.NewtonRaphson {
		return []string{"x0", "tol", "max_iter", "f", "df"}
	}
	return []string{"x0", "y0", "h", "n", "f"}
}

// FieldLabel is the human label shown next to an input field.
func FieldLabel(field string) string {
	switch field {
	case "x0":
		return "x0"
	case "y0":
		return "y0"
	case "h":
		return "step size h"
	case "n":
		return "iterations n"
	case "tol":
		return "tolerance"
	case "max_iter":
		return "max iterations"
	case "f":
		return "f"
	case "df":
		return "f' (optional)"
	}
	return field
}

// DefaultInputs renders the default parameters of m as raw strings.
func DefaultInputs(m dynamo.Method) Inputs {
	return InputsFromConfig(config.DefaultConfig(m))
}

func InputsFromConfig(cfg *config.Config) Inputs {
	if cfg.Method == dynamo.NewtonRaphson {
		p := cfg.Newton
		return Inputs{
			"x0":       formatFloat(p.X0),
			"tol":      formatFloat(p.Tolerance),
			"max_iter": strconv.Itoa(p.MaxIterations),
			"f":        p.Formula,
			"df":       p.Derivative,
		}
	}
	p := cfg.ODE
	return Inputs{
		"x0": formatFloat(p.X0),
		"y0": formatFloat(p.Y0),
		"h":  formatFloat(p.H),
		"n":  strconv.Itoa(p.N),
		"f":  p.Formula,
	}
}

// ParseInputs converts raw strings into a validated config for m. The first
// field that fails conversion or validation is named in a *dynamo.ConfigError.
func ParseInputs(m dynamo.Method, in Inputs) (*config.Config, error) {
	cfg := config.DefaultConfig(m)
	var err error

	switch {
	case m.IsODE():
		p := &cfg.ODE
		if p.X0, err = parseFloat(in, "x0"); err != nil {
			return nil, err
		}
		if p.Y0, err = parseFloat(in, "y0"); err != nil {
			return nil, err
		}
		if p.H, err = parseFloat(in, "h"); err != nil {
			return nil, err
		}
		if p.N, err = parseInt(in, "n"); err != nil {
			return nil, err
		}
		p.Formula = strings.TrimSpace(in["f"])
	case m == dynamo.NewtonRaphson:
		p := &cfg.Newton
		if p.X0, err = parseFloat(in, "x0"); err != nil {
			return nil, err
		}
		if p.Tolerance, err = parseFloat(in, "tol"); err != nil {
			return nil, err
		}
		if p.MaxIterations, err = parseInt(in, "max_iter"); err != nil {
			return nil, err
		}
		p.Formula = strings.TrimSpace(in["f"])
		p.Derivative = strings.TrimSpace(in["df"])
	default:
		return nil, &dynamo.ConfigError{Field: "method", Value: string(m), Err: dynamo.ErrUnknownMethod}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	errRequired        = errors.New("value is required")
	errNotNumericField = errors.New("not a numeric field of this method")
)

func parseFloat(in Inputs, field string) (float64, error) {
	raw := strings.TrimSpace(in[field])
	if raw == "" {
		return 0, &dynamo.ConfigError{Field: field, Err: errRequired}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &dynamo.ConfigError{Field: field, Value: raw, Err: errors.New("not a number")}
	}
	return v, nil
}

func parseInt(in Inputs, field string) (int, error) {
	raw := strings.TrimSpace(in[field])
	if raw == "" {
		return 0, &dynamo.ConfigError{Field: field, Err: errRequired}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &dynamo.ConfigError{Field: field, Value: raw, Err: errors.New("not an integer")}
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
