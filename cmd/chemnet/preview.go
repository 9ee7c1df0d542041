package main

import (
	"fmt"

	"github.com/alfredjeanlab/chemnet/internal/ui"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:     "preview <graph.json> <node-id>",
	Short:   "Show what annotating a node would affect",
	GroupID: "annotations",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGraph(args[0])
		if err != nil {
			return err
		}
		impact, err := proc.PreviewImpact(g, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(impact)
			return nil
		}
		fmt.Printf("Connected nodes: %d\n", impact.ConnectedNodes)
		fmt.Printf("Connected edges: %d\n", impact.ConnectedEdges)
		fmt.Printf("Potential links: %s\n", ui.RenderLinked(fmt.Sprint(impact.PotentialLinks)))
		if !impact.HasRequiredData {
			fmt.Println(ui.RenderSkipped("Node lacks an analytical id or a structure"))
		}
		return nil
	},
}
