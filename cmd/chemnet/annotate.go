package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:     "annotate <graph.json> <node-id> <structure>",
	Short:   "Queue a structure annotation for a node",
	GroupID: "annotations",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		graphPath, nodeID, structure := args[0], args[1], args[2]
		notes, _ := cmd.Flags().GetStringArray("meta")

		g, err := readGraph(graphPath)
		if err != nil {
			return err
		}
		if _, ok := g.Node(nodeID); !ok {
			return fmt.Errorf("node %s not found in %s", nodeID, graphPath)
		}
		if err := loadAnnotations(graphPath); err != nil {
			return err
		}

		meta, err := parseMeta(notes)
		if err != nil {
			return err
		}
		if !proc.Submit(cmd.Context(), g, nodeID, structure, meta) {
			return fmt.Errorf("annotation for %s rejected", nodeID)
		}
		path, err := proc.Save(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			rec, _ := proc.Store().Get(nodeID)
			printJSON(rec)
			return nil
		}
		fmt.Printf("Queued %s for %s (%s)\n", structure, nodeID, path)
		return nil
	},
}

func init() {
	annotateCmd.Flags().StringArray("meta", nil, "metadata key=value (repeatable)")
}

// parseMeta turns key=value pairs into record metadata.
func parseMeta(pairs []string) (map[string]any, error) {
	meta := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid metadata %q (want key=value)", p)
		}
		meta[strings.TrimSpace(k)] = v
	}
	return meta, nil
}
