package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/numeth/internal/analysis"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/expr"
	"github.com/san-kum/numeth/internal/integrators"
	"github.com/san-kum/numeth/internal/viz"
)

type compareOptions struct {
	params  paramOptions
	methods string
	exact   string
	refine  bool
	plot    bool
}

func newCompareCmd(reg *experiment.Registry) *cobra.Command {
	o := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "compare ODE methods against an exact solution",
		Example: "  numeth compare --preset growth --exact 'exp(x)' --refine\n" +
			"  numeth compare --f 'y - x**2 + 1' --y0 0.5 --exact '(x+1)**2 - 0.5*exp(x)'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compareMethods(cmd, reg, o)
		},
	}
	o.params.register(cmd.Flags())
	cmd.Flags().StringVar(&o.methods, "methods", "euler,rk4", "comma separated ODE methods")
	cmd.Flags().StringVar(&o.exact, "exact", "", "exact solution y(x)")
	cmd.Flags().BoolVar(&o.refine, "refine", false, "estimate the observed order by halving h")
	cmd.Flags().BoolVar(&o.plot, "plot", false, "overlay y(x) of every method")
	_ = cmd.MarkFlagRequired("exact")
	return cmd
}

func compareMethods(cmd *cobra.Command, reg *experiment.Registry, o *compareOptions) error {
	var methods []dynamo.Method
	for _, name := range strings.Split(o.methods, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		m, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		if !m.IsODE() {
			return fmt.Errorf("%s does not solve ODEs", m.DisplayName())
		}
		methods = append(methods, m)
	}
	if len(methods) == 0 {
		return fmt.Errorf("no methods to compare")
	}

	// The first method only selects the ODE presets; every method shares the
	// resolved parameters.
	cfg, err := o.params.resolve(cmd.Flags(), reg, string(methods[0]))
	if err != nil {
		return err
	}
	p := cfg.ODE

	fe, err := expr.Parse(p.Formula, "x", "y")
	if err != nil {
		return &dynamo.ConfigError{Field: "f", Value: p.Formula, Err: err}
	}
	ee, err := expr.Parse(o.exact, "x")
	if err != nil {
		return &dynamo.ConfigError{Field: "exact", Value: o.exact, Err: err}
	}
	f, exact := dynamo.ODEFunc(fe.Func2("x", "y")), dynamo.Func(ee.Func1("x"))

	ctx := cmd.Context()
	results, err := analysis.CompareMethods(ctx, methods, f, p, exact)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "y' = %s, y(%g) = %g, exact y = %s\n\n", p.Formula, p.X0, p.Y0, o.exact)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "METHOD\tH\tN\tX_N\tY_N\tEXACT\tGLOBAL ERROR\tMAX ERROR"
	if o.refine {
		header += "\tORDER"
	}
	fmt.Fprintln(w, header)
	for _, c := range results {
		row := fmt.Sprintf("%s\t%g\t%d\t%s\t%s\t%s\t%.3e\t%.3e",
			c.Method.DisplayName(), c.H, c.N,
			viz.FormatValue(c.FinalX, digits), viz.FormatValue(c.FinalY, digits), viz.FormatValue(c.Exact, digits),
			c.GlobalError, c.MaxError)
		if o.refine {
			est, err := analysis.ObservedOrder(ctx, c.Method, f, p, exact)
			if err != nil {
				row += "\t-"
			} else {
				row += fmt.Sprintf("\t%.2f", est.Order)
			}
		}
		fmt.Fprintln(w, row)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if o.plot {
		series := make([][]float64, 0, len(methods))
		legends := make([]string, 0, len(methods))
		for _, m := range methods {
			eng, err := integrators.New(m, f, p)
			if err != nil {
				return err
			}
			res, err := eng.Run(ctx)
			if err != nil {
				return err
			}
			data, _ := viz.Series(res)
			series = append(series, data)
			legends = append(legends, m.DisplayName())
		}
		if plot := viz.PlotMany(series, legends, "y(x)", plotWidth, plotHeight); plot != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, plot)
		}
	}
	return nil
}
