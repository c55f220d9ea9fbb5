package main

import (
	"github.com/spf13/cobra"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/mappers"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
)

type buildSummary struct {
	BuildID    string                   `json:"build_id"`
	Nodes      int                      `json:"nodes"`
	Roots      int                      `json:"roots"`
	CycleRoots []string                 `json:"cycle_roots"`
	Dangling   []services.DanglingRef   `json:"dangling"`
	Collisions []services.NameCollision `json:"collisions"`
}

func summarize(snap *services.Snapshot) buildSummary {
	cycleRoots := make([]string, 0)
	for _, n := range snap.CycleRoots() {
		cycleRoots = append(cycleRoots, n.Identity)
	}
	dangling := snap.Dangling()
	if dangling == nil {
		dangling = []services.DanglingRef{}
	}
	collisions := snap.Collisions()
	if collisions == nil {
		collisions = []services.NameCollision{}
	}
	return buildSummary{
		BuildID:    snap.BuildID.String(),
		Nodes:      snap.Len(),
		Roots:      len(snap.Roots()),
		CycleRoots: cycleRoots,
		Dangling:   dangling,
		Collisions: collisions,
	}
}

func newBuildCmd(g *globalOptions) *cobra.Command {
	var nodes, tree bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the hierarchy and print a summary (and optionally the nodes or tree)",
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
			out := cmd.OutOrStdout()
			if err := writeJSONLine(out, summarize(snap)); err != nil {
				return err
			}
			if nodes {
				for _, n := range snap.Annotated() {
					if err := writeJSONLine(out, n); err != nil {
						return err
					}
				}
			}
			if tree {
				return writeJSONLine(out, mappers.ForestToTree(snap, ""))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&nodes, "nodes", false, "Print every node with its recursive stats, one JSON object per line")
	cmd.Flags().BoolVar(&tree, "tree", false, "Print the pre-order tree")
	return cmd
}
