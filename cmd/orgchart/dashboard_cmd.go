package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newDashboardCmd(g *globalOptions) *cobra.Command {
	var top int
	var asOf string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print headcount, tenure and span-of-control statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if v := strings.TrimSpace(asOf); v != "" {
				t, err := time.Parse("2006-01-02", v)
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("--as-of: %w", err))
				}
				now = t.UTC()
			}

			rt, err := openRuntime(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap, err := rt.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSONLine(cmd.OutOrStdout(), snap.Dashboard(now, top))
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "Number of widest spans of control to list")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Reference date for tenure (YYYY-MM-DD, default today)")
	return cmd
}
