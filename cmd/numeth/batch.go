package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/numeth/internal/automation"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/metrics"
	"github.com/san-kum/numeth/internal/optim"
	"github.com/san-kum/numeth/internal/viz"
)

func newScenarioCmd(reg *experiment.Registry, rec *metrics.Recorder) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if scenario.Name != "" {
				fmt.Fprintf(out, "%s\n", viz.HeaderStyle.Render(scenario.Name))
			}
			if scenario.Description != "" {
				fmt.Fprintln(out, scenario.Description)
			}

			results := automation.RunScenario(cmd.Context(), scenario, reg, rec)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSTEP\tMETHOD\tSTATUS\tSUMMARY")
			failed := 0
			for i, r := range results {
				method, status, summary := "-", "error", ""
				if r.Result != nil {
					method = string(r.Result.Method)
					status = r.Result.Status.String()
					summary = r.Result.Summary()
				}
				if r.Err != nil {
					failed++
					summary = r.Err.Error()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Step.Name, method, status, summary)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d steps failed", failed, len(results))
			}
			return nil
		},
	}
}

type sweepOptions struct {
	params paramOptions
	param  string
	from   float64
	to     float64
	steps  int
}

func newSweepCmd(reg *experiment.Registry, rec *metrics.Recorder) *cobra.Command {
	o := &sweepOptions{}
	cmd := &cobra.Command{
		Use:     "sweep [method]",
		Short:   "run a method over evenly spaced values of one field",
		Example: "  numeth sweep newton --preset cubic --param x0 --from -2 --to 2 --steps 9",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := o.params.resolve(cmd.Flags(), reg, args[0])
			if err != nil {
				return err
			}

			results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
				Base:      base,
				ParamName: o.param,
				ParamMin:  o.from,
				ParamMax:  o.to,
				NumSteps:  o.steps,
			}, reg, rec)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tSTATUS\tITERATIONS\tFINAL\n", strings.ToUpper(o.param))
			for _, r := range results {
				final := viz.FormatValue(r.Final, digits)
				if r.Err != nil {
					final = r.Err.Error()
				}
				fmt.Fprintf(w, "%g\t%s\t%d\t%s\n", r.ParamValue, r.Status, r.Iterations, final)
			}
			return w.Flush()
		},
	}
	o.params.register(cmd.Flags())
	cmd.Flags().StringVar(&o.param, "param", "x0", "numeric field to vary")
	cmd.Flags().Float64Var(&o.from, "from", 0, "first value")
	cmd.Flags().Float64Var(&o.to, "to", 1, "last value")
	cmd.Flags().IntVar(&o.steps, "steps", 5, "number of values")
	return cmd
}

type tuneOptions struct {
	params paramOptions
	grid   []string
	metric string
}

func newTuneCmd(reg *experiment.Registry) *cobra.Command {
	o := &tuneOptions{}
	cmd := &cobra.Command{
		Use:   "tune [method]",
		Short: "grid search the fields that minimize a run metric",
		Example: "  numeth tune newton --grid x0=-2,2,9 --metric iterations\n" +
			"  numeth tune rk4 --preset growth --grid h=0.05,0.2,4 --metric max_drift",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := o.params.resolve(cmd.Flags(), reg, args[0])
			if err != nil {
				return err
			}
			if len(o.grid) == 0 {
				return fmt.Errorf("at least one --grid is required")
			}

			names := make([]string, len(o.grid))
			ranges := make([][]float64, len(o.grid))
			for i, spec := range o.grid {
				if names[i], ranges[i], err = parseGrid(spec); err != nil {
					return err
				}
			}

			best, score, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), reg, base, o.metric)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(best))
			for k := range best {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%s = %g\n", k, best[k])
			}
			fmt.Fprintf(out, "%s = %g\n", o.metric, score)
			return nil
		},
	}
	o.params.register(cmd.Flags())
	cmd.Flags().StringArrayVar(&o.grid, "grid", nil, "field=min,max,count (repeatable)")
	cmd.Flags().StringVar(&o.metric, "metric", optim.MetricIterations, "metric to minimize")
	return cmd
}

// parseGrid reads "field=min,max,count" into count evenly spaced values.
func parseGrid(spec string) (string, []float64, error) {
	name, rest, ok := strings.Cut(spec, "=")
	parts := strings.Split(rest, ",")
	if !ok || name == "" || len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: want field=min,max,count", spec)
	}

	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || count < 1 {
		return "", nil, fmt.Errorf("grid %q: count must be a positive integer", spec)
	}

	values := make([]float64, count)
	for i := range values {
		if count == 1 {
			values[i] = lo
			continue
		}
		values[i] = lo + float64(i)*(hi-lo)/float64(count-1)
	}
	return strings.TrimSpace(name), values, nil
}
