package main

import (
	"github.com/spf13/cobra"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/viewmodels"
)

func newSearchCmd(g *globalOptions) *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Fuzzy search nodes by name, identity, title or department",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireFlag("q", query)
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
			return writeJSONLine(cmd.OutOrStdout(), viewmodels.SearchResponse{Query: query, Hits: snap.Search(query, limit)})
		},
	}
	cmd.Flags().StringVar(&query, "q", "", "Search text (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of hits")
	return cmd
}
