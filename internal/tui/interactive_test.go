package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/metrics"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(model)
	}
	return m
}

func newApp() model {
	return *NewInteractiveApp(experiment.NewRegistry(), metrics.NewRecorder())
}

func TestMenuOpensFormWithDefaults(t *testing.T) {
	m := press(t, newApp(), "enter")

	if m.state != stateForm {
		t.Fatalf("expected form state, got %d", m.state)
	}
	if m.selected != dynamo.ImprovedEuler {
		t.Errorf("expected euler first in the menu, got %s", m.selected)
	}
	if got := m.inputs[m.selected]["f"]; got != config.DefaultODE {
		t.Errorf("expected default formula, got %q", got)
	}
	if !strings.Contains(m.View(), "Improved Euler") {
		t.Error("form should name the method")
	}
}

func TestRunShowsTable(t *testing.T) {
	m := press(t, newApp(), "enter", "s")

	if m.state != stateResult {
		t.Fatalf("expected result state, got %d (form error %q)", m.state, m.formErr)
	}
	if m.result == nil || len(m.result.Records) != config.DefaultN {
		t.Fatalf("expected %d records", config.DefaultN)
	}
	if m.result.Status != dynamo.StatusDone {
		t.Errorf("unexpected status %s", m.result.Status)
	}

	view := m.View()
	for _, want := range []string{"iteration", "k2", "done"} {
		if !strings.Contains(view, want) {
			t.Errorf("result view missing %q", want)
		}
	}
}

func TestClearKeepsInputs(t *testing.T) {
	m := press(t, newApp(), "down", "enter")
	before := m.inputs[dynamo.NewtonRaphson]["f"]

	m = press(t, m, "s", "c")
	if m.result != nil {
		t.Error("expected the table to be cleared")
	}
	if m.state != stateResult {
		t.Error("clear should stay on the result screen")
	}
	if !strings.Contains(m.View(), "table cleared") {
		t.Error("expected a cleared marker")
	}

	m = press(t, m, "e")
	if m.state != stateForm {
		t.Fatal("expected e to return to the form")
	}
	if m.inputs[dynamo.NewtonRaphson]["f"] != before {
		t.Error("inputs must survive a clear")
	}
}

func TestInvalidInputStaysOnForm(t *testing.T) {
	m := press(t, newApp(), "enter", "enter", "ctrl+u", "a", "b", "c", "enter")

	if got := m.inputs[dynamo.ImprovedEuler]["x0"]; got != "abc" {
		t.Fatalf("expected edited x0, got %q", got)
	}

	m = press(t, m, "s")
	if m.state != stateForm {
		t.Fatal("invalid input must not run")
	}
	if !strings.Contains(m.formErr, "x0") {
		t.Errorf("error should name the field: %q", m.formErr)
	}
	if !strings.Contains(m.View(), "x0") {
		t.Error("form should show the error")
	}

	m = press(t, m, "d")
	if m.inputs[dynamo.ImprovedEuler]["x0"] != "0" || m.formErr != "" {
		t.Error("d should restore defaults and clear the error")
	}
}

func TestBadFormulaReportsField(t *testing.T) {
	m := press(t, newApp(), "enter", "down", "down", "down", "down", "enter", "ctrl+u", "y", "+", "z", "enter", "s")

	if m.state != stateForm {
		t.Fatal("unknown symbol must keep the form open")
	}
	if !strings.Contains(m.formErr, "f") || !strings.Contains(m.formErr, "z") {
		t.Errorf("unexpected error %q", m.formErr)
	}
}

func TestVanishedDerivativeIsShown(t *testing.T) {
	m := newApp()
	m.inputs[dynamo.NewtonRaphson] = experiment.InputsFromConfig(config.GetPreset(dynamo.NewtonRaphson, "stationary"))
	m = press(t, m, "down", "enter", "s")

	if m.state != stateResult {
		t.Fatalf("expected result state, form error %q", m.formErr)
	}
	if m.result.Status != dynamo.StatusDerivativeVanished {
		t.Errorf("unexpected status %s", m.result.Status)
	}
	if !strings.Contains(m.View(), "derivative vanished") {
		t.Error("expected the status message in the view")
	}
}

func TestEscapeNavigation(t *testing.T) {
	m := press(t, newApp(), "enter", "s", "esc")
	if m.state != stateMenu {
		t.Errorf("esc from results should open the menu, got %d", m.state)
	}

	m = press(t, m, "enter", "esc")
	if m.state != stateMenu {
		t.Errorf("esc from the form should open the menu, got %d", m.state)
	}
}

func TestLiveRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, dynamo.NewtonRaphson)
	r.OnRecord(dynamo.NewtonRecord{Index: 0, X: 1, FX: -1, FPrime: 2, Next: 1.5, Error: 0.5})
	r.OnRecord(dynamo.NewtonRecord{Index: 1, X: 1.5, FX: 0.875, FPrime: 5.75, Next: 1.3478, Error: 0.152})

	if r.Err() != nil {
		t.Fatal(r.Err())
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "iteration") || !strings.HasPrefix(lines[2], "2\t") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
