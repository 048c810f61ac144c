package viz

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/numeth/internal/dynamo"
)

// FormatValue prints a table cell with the given number of significant
// digits.
func FormatValue(v float64, digits int) string {
	return strconv.FormatFloat(v, 'g', digits, 64)
}

// FormatRows renders records as string rows: iteration (Index+1) first, then
// the record's values.
func FormatRows(res *dynamo.Result, digits int) [][]string {
	rows := make([][]string, len(res.Records))
	for i, r := range res.Records {
		vals := r.Values()
		row := make([]string, 0, len(vals)+1)
		row = append(row, strconv.Itoa(r.Step()+1))
		for _, v := range vals {
			row = append(row, FormatValue(v, digits))
		}
		rows[i] = row
	}
	return rows
}

// WriteTable prints the trace as an aligned plain-text table.
func WriteTable(w io.Writer, res *dynamo.Result, digits int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(dynamo.Columns(res.Method), "\t")+"\t")
	for _, row := range FormatRows(res, digits) {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}

// RenderTable styles the trace for the TUI. Only the last maxRows rows are
// shown when maxRows > 0.
func RenderTable(res *dynamo.Result, digits, maxRows int) string {
	cols := dynamo.Columns(res.Method)
	rows := FormatRows(res, digits)

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	hidden := 0
	if maxRows > 0 && len(rows) > maxRows {
		hidden = len(rows) - maxRows
		rows = rows[hidden:]
	}

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = fmt.Sprintf("%*s", widths[i], c)
	}
	b.WriteString(HeaderStyle.Render(strings.Join(header, "  ")) + "\n")

	if hidden > 0 {
		b.WriteString(Dim.Render(fmt.Sprintf("… %d earlier rows", hidden)) + "\n")
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			padded := fmt.Sprintf("%*s", widths[i], cell)
			if i == 0 {
				cells[i] = Dim.Render(padded)
			} else {
				cells[i] = White.Render(padded)
			}
		}
		b.WriteString(strings.Join(cells, "  ") + "\n")
	}
	if len(rows) == 0 {
		b.WriteString(Dim.Render("no records") + "\n")
	}
	return b.String()
}

func metricNames(metrics map[string]float64) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteMetrics prints name=value pairs in a stable order.
func WriteMetrics(w io.Writer, metrics map[string]float64) error {
	names := metricNames(metrics)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, FormatValue(metrics[name], 6))
	}
	return tw.Flush()
}

// RenderMetrics styles the run metrics for the TUI, one per line.
func RenderMetrics(metrics map[string]float64) string {
	var b strings.Builder
	for _, name := range metricNames(metrics) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-18s", name)))
		b.WriteString(MetricValue.Render(FormatValue(metrics[name], 6)))
		b.WriteString("\n")
	}
	return b.String()
}
