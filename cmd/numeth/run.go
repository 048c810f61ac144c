package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/metrics"
	"github.com/san-kum/numeth/internal/store"
	"github.com/san-kum/numeth/internal/tui"
	"github.com/san-kum/numeth/internal/viz"
)

const (
	digits     = 8
	plotWidth  = 60
	plotHeight = 12
)

// paramOptions holds the per-field flags shared by run, compare, sweep and
// tune. Only flags set on the command line override the base configuration.
type paramOptions struct {
	preset     string
	configFile string

	x0, y0, h float64
	n         int
	f         string
	tol       float64
	maxIter   int
	df        string
}

var odeFlags = []string{"y0", "h", "n"}
var newtonFlags = []string{"tol", "max-iter", "df"}

func (o *paramOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.preset, "preset", "", "start from a named preset")
	fs.StringVar(&o.configFile, "config", "", "config file path (yaml)")
	fs.Float64Var(&o.x0, "x0", 0, "initial x")
	fs.Float64Var(&o.y0, "y0", config.DefaultY0, "initial y (euler, rk4)")
	fs.Float64Var(&o.h, "h", config.DefaultH, "step size (euler, rk4)")
	fs.IntVar(&o.n, "n", config.DefaultN, "number of steps (euler, rk4)")
	fs.StringVar(&o.f, "f", "", "formula: f(x, y) for euler and rk4, f(x) for newton")
	fs.Float64Var(&o.tol, "tol", config.DefaultTol, "convergence tolerance (newton)")
	fs.IntVar(&o.maxIter, "max-iter", config.DefaultMaxIter, "iteration limit (newton)")
	fs.StringVar(&o.df, "df", "", "derivative f'(x) (newton); numeric when empty")
}

// resolve builds the configuration for method name: defaults, then preset,
// then config file, then explicitly set flags.
func (o *paramOptions) resolve(fs *pflag.FlagSet, reg *experiment.Registry, name string) (*config.Config, error) {
	m, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig(m)
	if o.preset != "" {
		p := config.GetPreset(m, o.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %s)", o.preset, m, strings.Join(config.ListPresets(m), ", "))
		}
		cfg = p
	}
	if o.configFile != "" {
		if err := config.LoadInto(o.configFile, cfg); err != nil {
			return nil, err
		}
		cfg.Method = m
	}

	foreign := newtonFlags
	if !m.IsODE() {
		foreign = odeFlags
	}
	for _, name := range foreign {
		if fs.Changed(name) {
			return nil, fmt.Errorf("flag --%s does not apply to %s", name, m.DisplayName())
		}
	}

	if m.IsODE() {
		if fs.Changed("x0") {
			cfg.ODE.X0 = o.x0
		}
		if fs.Changed("y0") {
			cfg.ODE.Y0 = o.y0
		}
		if fs.Changed("h") {
			cfg.ODE.H = o.h
		}
		if fs.Changed("n") {
			cfg.ODE.N = o.n
		}
		if fs.Changed("f") {
			cfg.ODE.Formula = o.f
		}
	} else {
		if fs.Changed("x0") {
			cfg.Newton.X0 = o.x0
		}
		if fs.Changed("tol") {
			cfg.Newton.Tolerance = o.tol
		}
		if fs.Changed("max-iter") {
			cfg.Newton.MaxIterations = o.maxIter
		}
		if fs.Changed("f") {
			cfg.Newton.Formula = o.f
		}
		if fs.Changed("df") {
			cfg.Newton.Derivative = o.df
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type runOptions struct {
	params paramOptions
	format string
	plot   bool
	stats  bool
	out    string
	follow bool
}

func newRunCmd(reg *experiment.Registry, rec *metrics.Recorder) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [method]",
		Short: "run one method and print its iteration table",
		Long: "Run Improved Euler (euler), Runge-Kutta 4 (rk4) or Newton-Raphson (newton).\n" +
			"Flags override the preset and config file; unset flags keep their values.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMethod(cmd, reg, rec, args[0], o)
		},
	}
	o.params.register(cmd.Flags())
	cmd.Flags().StringVar(&o.format, "format", "table", "output format: table, csv or json")
	cmd.Flags().BoolVar(&o.plot, "plot", false, "plot y(x) or the Newton error after the table")
	cmd.Flags().BoolVar(&o.stats, "stats", false, "print run metrics and counters")
	cmd.Flags().StringVar(&o.out, "out", "", "also export the run to a .csv or .json file")
	cmd.Flags().BoolVar(&o.follow, "follow", false, "print records as they are produced")
	return cmd
}

func runMethod(cmd *cobra.Command, reg *experiment.Registry, rec *metrics.Recorder, name string, o *runOptions) error {
	switch o.format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q (table, csv, json)", o.format)
	}

	cfg, err := o.params.resolve(cmd.Flags(), reg, name)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg).WithRecorder(rec)
	if err := exp.Setup(reg); err != nil {
		return err
	}
	resolved := exp.Config()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	var live *tui.LiveRenderer
	var obs []dynamo.Observer
	if o.follow && o.format == "table" {
		live = tui.NewLiveRenderer(stdout, resolved.Method)
		obs = append(obs, live)
	}

	res, runErr := exp.Run(ctx, obs...)
	if res == nil {
		return runErr
	}

	switch o.format {
	case "csv":
		err = store.WriteCSV(stdout, res)
	case "json":
		err = store.WriteJSON(stdout, res, &resolved)
	default:
		if live != nil {
			err = live.Err()
		} else {
			err = viz.WriteTable(stdout, res, digits)
		}
	}
	if err != nil {
		return err
	}

	// Keep machine-readable stdout clean.
	status := stdout
	if o.format != "table" {
		status = stderr
	}

	if o.plot {
		if p := viz.Plot(res, plotWidth, plotHeight); p != "" {
			fmt.Fprintln(status)
			fmt.Fprintln(status, p)
		}
	}
	if o.stats {
		if err := writeStats(status, res, rec); err != nil {
			return err
		}
	}
	if o.out != "" {
		if err := export(o.out, res, &resolved); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "exported to %s\n", o.out)
	}

	return reportStatus(status, stderr, res, runErr)
}

// reportStatus prints the terminal state. Warnings keep a zero exit code;
// a vanished derivative or a failed evaluation is returned as an error.
func reportStatus(status, stderr io.Writer, res *dynamo.Result, runErr error) error {
	switch res.Status.Severity() {
	case dynamo.SeverityInfo:
		fmt.Fprintln(status, viz.StatusLine(res))
		return nil
	case dynamo.SeverityWarning:
		fmt.Fprintf(stderr, "warning: %s\n", res.Summary())
		return nil
	}
	if runErr != nil {
		return runErr
	}
	return errors.New(res.Summary())
}

func writeStats(w io.Writer, res *dynamo.Result, rec *metrics.Recorder) error {
	fmt.Fprintln(w)
	if err := viz.WriteMetrics(w, res.Metrics); err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	families, err := rec.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func export(path string, res *dynamo.Result, cfg *config.Config) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return store.ExportCSV(path, res)
	}
	return store.ExportJSON(path, res, cfg)
}
