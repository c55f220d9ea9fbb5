package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	file     string
	buckets  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	cmd := &cobra.Command{
		Use:           "orgchart",
		Short:         "Build and inspect the employee org chart from a spreadsheet or the record store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.file, "file", "", "Read records from this .xlsx/.xls file instead of the configured source")
	cmd.PersistentFlags().StringVar(&g.buckets, "buckets", "", "YAML classification bucket table (default: built-in buckets or ORGCHART_BUCKETS_PATH)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level for diagnostics on stderr: silent|error|warn|info|debug")

	cmd.AddCommand(newBuildCmd(&g))
	cmd.AddCommand(newScopeCmd(&g))
	cmd.AddCommand(newSearchCmd(&g))
	cmd.AddCommand(newDashboardCmd(&g))
	cmd.AddCommand(newImportCmd(&g))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
