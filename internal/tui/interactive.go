package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/metrics"
	"github.com/san-kum/numeth/internal/viz"
)

var methodInfo = map[dynamo.Method]string{
	dynamo.ImprovedEuler: "y' = f(x, y), second order",
	dynamo.NewtonRaphson: "root of f(x) = 0",
	dynamo.RungeKutta4:   "y' = f(x, y), fourth order",
}

type state int

const (
	stateMenu state = iota
	stateForm
	stateResult
)

const digits = 8

type model struct {
	state    state
	cursor   int
	methods  []dynamo.Method
	selected dynamo.Method

	// inputs keeps the raw strings per method so leaving the form does not
	// lose edits.
	inputs      map[dynamo.Method]experiment.Inputs
	fieldCursor int
	editing     bool
	editBuf     string
	formErr     string

	result *dynamo.Result
	runErr error

	reg      *experiment.Registry
	recorder *metrics.Recorder

	width  int
	height int
}

func NewInteractiveApp(reg *experiment.Registry, rec *metrics.Recorder) *model {
	inputs := make(map[dynamo.Method]experiment.Inputs)
	for _, m := range reg.Methods() {
		inputs[m] = experiment.DefaultInputs(m)
	}
	return &model{
		state:    stateMenu,
		methods:  reg.Methods(),
		inputs:   inputs,
		reg:      reg,
		recorder: rec,
		width:    100,
		height:   30,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateForm:
		return m.formKey(msg)
	case stateResult:
		return m.resultKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.methods)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.methods[m.cursor]
		m.state = stateForm
		m.fieldCursor = 0
		m.formErr = ""
		m.result = nil
		m.runErr = nil
	}
	return m, nil
}

func (m model) fields() []string {
	return experiment.FieldNames(m.selected)
}

func (m model) formKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.Type {
		case tea.KeyEnter:
			m.inputs[m.selected][m.fields()[m.fieldCursor]] = m.editBuf
			m.editing = false
			m.editBuf = ""
		case tea.KeyEsc:
			m.editing = false
			m.editBuf = ""
		case tea.KeyBackspace:
			if r := []rune(m.editBuf); len(r) > 0 {
				m.editBuf = string(r[:len(r)-1])
			}
		case tea.KeyCtrlU:
			m.editBuf = ""
		case tea.KeySpace:
			m.editBuf += " "
		case tea.KeyRunes:
			m.editBuf += string(msg.Runes)
		case tea.KeyCtrlC:
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.state = stateMenu
		m.formErr = ""
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j", "tab":
		if m.fieldCursor < len(m.fields())-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = m.inputs[m.selected][m.fields()[m.fieldCursor]]
	case "d":
		m.inputs[m.selected] = experiment.DefaultInputs(m.selected)
		m.formErr = ""
	case "s", "r":
		return m.run()
	}
	return m, nil
}

// run converts the form and executes the method. Conversion and setup errors
// keep the form open and nothing runs.
func (m model) run() (model, tea.Cmd) {
	cfg, err := experiment.ParseInputs(m.selected, m.inputs[m.selected])
	if err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	exp := experiment.New(cfg)
	if m.recorder != nil {
		exp.WithRecorder(m.recorder)
	}
	if err := exp.Setup(m.reg); err != nil {
		m.formErr = err.Error()
		return m, nil
	}

	res, err := exp.Run(context.Background())
	m.formErr = ""
	m.result = res
	m.runErr = err
	m.state = stateResult
	return m, nil
}

func (m model) resultKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "c":
		m.result = nil
		m.runErr = nil
	case "e":
		m.state = stateForm
	case "esc":
		m.state = stateMenu
	case "r", "s":
		return m.run()
	}
	return m, nil
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateForm:
		return m.viewForm()
	case stateResult:
		return m.viewResult()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(viz.Dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("            " + viz.Cyan.Render("n u m e t h") + "\n")
	b.WriteString(viz.Dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, method := range m.methods {
		name := method.DisplayName()
		desc := methodInfo[method]
		if i == m.cursor {
			b.WriteString("      " + viz.Cyan.Render("▸ ") + viz.White.Render(fmt.Sprintf("%-18s", name)) + viz.Dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + viz.Dim.Render(fmt.Sprintf("%-18s", name)) + viz.Dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(viz.KeyHint.Render("      ↑↓ select   enter open   q quit") + "\n")

	return b.String()
}

func (m model) viewForm() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + viz.Cyan.Render(m.selected.DisplayName()) + "  " + viz.Dim.Render(methodInfo[m.selected]) + "\n")
	b.WriteString(viz.Dimmer.Render("      "+strings.Repeat("─", 40)) + "\n\n")

	in := m.inputs[m.selected]
	for i, name := range m.fields() {
		label := fmt.Sprintf("%-16s", experiment.FieldLabel(name))
		val := in[name]
		if m.editing && i == m.fieldCursor {
			val = m.editBuf + "▋"
		}
		if i == m.fieldCursor {
			b.WriteString("      " + viz.Cyan.Render("▸ ") + viz.White.Render(label) + viz.Magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + viz.Dim.Render(label) + viz.Dim.Render(val) + "\n")
		}
	}

	if m.formErr != "" {
		b.WriteString("\n      " + viz.ErrorText.Render(m.formErr) + "\n")
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString(viz.KeyHint.Render("      enter save  esc cancel  ctrl+u clear") + "\n")
	} else {
		b.WriteString(viz.KeyHint.Render("      ↑↓ select  enter edit  s run  d defaults  esc back  q quit") + "\n")
	}

	return b.String()
}

func (m model) viewResult() string {
	var b strings.Builder

	b.WriteString("\n   " + viz.Cyan.Render(m.selected.DisplayName()) + "\n\n")

	if m.result == nil {
		b.WriteString("   " + viz.Dim.Render("table cleared") + "\n")
	} else {
		maxRows := m.height - 12
		if maxRows < 5 {
			maxRows = 5
		}
		table := viz.RenderTable(m.result, digits, maxRows)
		for _, line := range strings.Split(strings.TrimRight(table, "\n"), "\n") {
			b.WriteString("   " + line + "\n")
		}

		b.WriteString("\n   " + viz.StatusLine(m.result) + "\n")
		if m.runErr != nil && m.result.Err == nil {
			b.WriteString("   " + viz.ErrorText.Render(m.runErr.Error()) + "\n")
		}

		if data, _ := viz.Series(m.result); len(data) > 1 {
			b.WriteString("   " + viz.SparklineChart(data, 40) + "\n")
		}

		if len(m.result.Metrics) > 0 {
			b.WriteString("\n   " + viz.Separator(40) + "\n")
			for _, line := range strings.Split(strings.TrimRight(viz.RenderMetrics(m.result.Metrics), "\n"), "\n") {
				b.WriteString("   " + line + "\n")
			}
		}
	}

	b.WriteString("\n" + viz.KeyHint.Render("   c clear  e edit  r rerun  esc menu  q quit") + "\n")

	return b.String()
}

// Run starts the interactive app on the alternate screen. rec may be nil.
func Run(reg *experiment.Registry, rec *metrics.Recorder) error {
	p := tea.NewProgram(NewInteractiveApp(reg, rec), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
