package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/viz"
)

// LiveRenderer is an observer that prints each record as soon as the engine
// emits it. The header is written before the first record.
type LiveRenderer struct {
	w       io.Writer
	method  dynamo.Method
	started bool
	err     error
}

func NewLiveRenderer(w io.Writer, m dynamo.Method) *LiveRenderer {
	return &LiveRenderer{w: w, method: m}
}

func (r *LiveRenderer) OnRecord(rec dynamo.Record) {
	if r.err != nil {
		return
	}
	if !r.started {
		r.started = true
		r.write(strings.Join(dynamo.Columns(r.method), "\t"))
	}

	cells := []string{strconv.Itoa(rec.Step() + 1)}
	for _, v := range rec.Values() {
		cells = append(cells, viz.FormatValue(v, digits))
	}
	r.write(strings.Join(cells, "\t"))
}

func (r *LiveRenderer) write(line string) {
	_, r.err = fmt.Fprintln(r.w, line)
}

// Err reports the first write failure, if any.
func (r *LiveRenderer) Err() error {
	return r.err
}
