package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/metrics"
	"github.com/san-kum/numeth/internal/tui"
)

// main is the entry point for the numeth CLI; with no subcommand it starts the
// interactive TUI.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	reg := experiment.NewRegistry()
	rec := metrics.NewRecorder()

	rootCmd := &cobra.Command{
		Use:          "numeth",
		Short:        "numerical methods lab: Improved Euler, RK4 and Newton-Raphson",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(reg, rec)
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(reg, rec)
		},
	}

	rootCmd.AddCommand(
		newRunCmd(reg, rec),
		newCompareCmd(reg),
		newMethodsCmd(reg),
		newPresetsCmd(reg),
		newFunctionsCmd(),
		newScenarioCmd(reg, rec),
		newSweepCmd(reg, rec),
		newTuneCmd(reg),
		tuiCmd,
	)
	return rootCmd
}

func runTUI(reg *experiment.Registry, rec *metrics.Recorder) error {
	return tui.Run(reg, rec)
}
