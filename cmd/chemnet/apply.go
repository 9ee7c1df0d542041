package main

import (
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:     "apply <graph.json>",
	Short:   "Apply queued annotations and generate links",
	GroupID: "annotations",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		g, err := readGraph(args[0])
		if err != nil {
			return err
		}
		if err := loadAnnotations(args[0]); err != nil {
			return err
		}
		// Earlier runs' annotations are not in the source file.
		proc.Store().OverlayApplied(g)

		res := proc.ApplyAllPending(cmd.Context(), g)
		if out != "" {
			if err := writeGraph(g, out); err != nil {
				return err
			}
		}
		printResults(res)
		return nil
	},
}

var relinkCmd = &cobra.Command{
	Use:     "relink <graph.json>",
	Short:   "Regenerate links for every node with a structure",
	GroupID: "annotations",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		g, err := readGraph(args[0])
		if err != nil {
			return err
		}
		if err := loadAnnotations(args[0]); err != nil {
			return err
		}
		proc.Store().OverlayApplied(g)

		res := proc.GenerateLinksForExisting(cmd.Context(), g)
		if out != "" {
			if err := writeGraph(g, out); err != nil {
				return err
			}
		}
		printResults(res)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringP("output", "o", "", "write the updated graph to this file (- for stdout)")
	relinkCmd.Flags().StringP("output", "o", "", "write the updated graph to this file (- for stdout)")
}
