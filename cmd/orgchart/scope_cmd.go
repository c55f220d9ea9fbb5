package main

import (
	"github.com/spf13/cobra"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/viewmodels"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
)

func newScopeCmd(g *globalOptions) *cobra.Command {
	var key string
	var reports bool

	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Print the nodes under a department, group or person",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireFlag("key", key)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap, err := rt.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			var nodes []services.AnnotatedNode
			if reports {
				nodes = snap.Reports(key)
			} else {
				nodes = snap.Scope(key)
			}
			return writeJSONLine(cmd.OutOrStdout(), viewmodels.ScopeResponse{Key: key, Total: len(nodes), Nodes: nodes})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Department, group name or node identity (required)")
	cmd.Flags().BoolVar(&reports, "reports", false, "Treat --key as a node identity and print its reports")
	return cmd
}
