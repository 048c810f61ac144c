package metrics

import "github.com/san-kum/numeth/internal/dynamo"

// Evaluations counts formula evaluations implied by the observed records:
// three per Improved Euler step, five per RK4 step and two per Newton
// iteration.
type Evaluations struct {
	name  string
	count int
}

func NewEvaluations() *Evaluations {
	return &Evaluations{name: "evaluations"}
}

func (e *Evaluations) Name() string {
	return e.name
}

func (e *Evaluations) Observe(r dynamo.Record) {
	switch r.(type) {
	case dynamo.EulerRecord:
		e.count += 3
	case dynamo.RK4Record:
		e.count += 5
	case dynamo.NewtonRecord:
		e.count += 2
	}
}

func (e *Evaluations) Value() float64 {
	return float64(e.count)
}

func (e *Evaluations) Reset() {
	e.count = 0
}
