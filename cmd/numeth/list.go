package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/expr"
)

func newMethodsCmd(reg *experiment.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "list methods, their aliases and input fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tNAME\tFIELDS\tALIASES")
			for _, m := range reg.Methods() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m, m.DisplayName(),
					strings.Join(experiment.FieldNames(m), ","),
					strings.Join(reg.Aliases(m), ", "))
			}
			return w.Flush()
		},
	}
}

func newPresetsCmd(reg *experiment.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "presets [method]",
		Short: "list presets for a method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fields := experiment.FieldNames(m)
			fmt.Fprintln(w, "PRESET\t"+strings.ToUpper(strings.Join(fields, "\t")))
			for _, name := range config.ListPresets(m) {
				in := experiment.InputsFromConfig(config.GetPreset(m, name))
				cells := []string{name}
				for _, f := range fields {
					v := in[f]
					if v == "" {
						v = "-"
					}
					cells = append(cells, v)
				}
				fmt.Fprintln(w, strings.Join(cells, "\t"))
			}
			return w.Flush()
		},
	}
}

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "list functions and constants usable in formulas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "functions: %s\n", strings.Join(expr.Functions(), ", "))

			names := make([]string, 0, len(expr.Constants))
			for name := range expr.Constants {
				names = append(names, name)
			}
			sort.Strings(names)
			consts := make([]string, len(names))
			for i, name := range names {
				consts[i] = fmt.Sprintf("%s=%.10g", name, expr.Constants[name])
			}
			fmt.Fprintf(out, "constants: %s\n", strings.Join(consts, ", "))
			fmt.Fprintln(out, "operators: + - * / ** ^ (^ is exponentiation)")
			return nil
		},
	}
}
