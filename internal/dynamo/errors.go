package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine runs.
var (
	// ErrConfiguration indicates rejected parameters or formulas; no iteration ran.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrEvaluation indicates a formula produced no finite real value mid-run.
	ErrEvaluation = errors.New("dynamo: evaluation failed")

	// ErrUnknownMethod indicates a method selector that matches no engine.
	ErrUnknownMethod = errors.New("dynamo: unknown method")
)

// ConfigError reports a rejected parameter before any iteration runs.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("dynamo: invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("dynamo: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// StepError wraps an evaluation failure with the iteration it happened in.
type StepError struct {
	Method Method
	Index  int
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("dynamo: %s iteration %d: %v", e.Method, e.Index+1, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return target == ErrEvaluation
}
