package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/numeth/internal/dynamo"
)

// Series extracts the plotted quantity of a trace: y at every record plus the
// final state for ODE methods, log10 of the error column for Newton-Raphson.
func Series(res *dynamo.Result) (data []float64, caption string) {
	if res.Method == dynamo.NewtonRaphson {
		for _, r := range res.Records {
			rec, ok := r.(dynamo.NewtonRecord)
			if !ok || rec.Error <= 0 {
				continue
			}
			data = append(data, math.Log10(rec.Error))
		}
		return data, "log10 |x_{i+1} - x_i| per iteration"
	}

	for _, r := range res.Records {
		switch rec := r.(type) {
		case dynamo.EulerRecord:
			data = append(data, rec.Y)
		case dynamo.RK4Record:
			data = append(data, rec.Y)
		}
	}
	if len(res.Records) > 0 {
		data = append(data, res.Y)
	}
	return data, fmt.Sprintf("y(x) by %s", res.Method.DisplayName())
}

// Plot draws the trace series. It returns an empty string when there is
// nothing to draw.
func Plot(res *dynamo.Result, width, height int) string {
	data, caption := Series(res)
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotMany overlays several series, e.g. one per method in a comparison.
// legends pairs with series; series shorter than two points are skipped.
func PlotMany(series [][]float64, legends []string, caption string, width, height int) string {
	usable := make([][]float64, 0, len(series))
	names := make([]string, 0, len(series))
	for i, s := range series {
		if len(s) < 2 {
			continue
		}
		usable = append(usable, s)
		if i < len(legends) {
			names = append(names, legends[i])
		} else {
			names = append(names, fmt.Sprintf("series %d", i+1))
		}
	}
	if len(usable) == 0 {
		return ""
	}
	return asciigraph.PlotMany(usable,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow),
		asciigraph.SeriesLegends(names...),
	)
}
