package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alfredjeanlab/chemnet/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show annotation counts by state",
	GroupID: "annotations",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadAnnotations(""); err != nil {
			return err
		}
		sum := proc.Store().Summary()
		if jsonOutput {
			printJSON(sum)
			return nil
		}
		if name, source, ok := proc.Store().Project(); ok {
			fmt.Printf("Project:  %s", name)
			if source != "" {
				fmt.Printf(" (%s)", source)
			}
			fmt.Println()
		}
		fmt.Printf("Total:    %d\n", sum.Total)
		fmt.Printf("Pending:  %s\n", ui.RenderSkipped(fmt.Sprint(sum.Pending)))
		fmt.Printf("Applied:  %s\n", ui.RenderLinked(fmt.Sprint(sum.Applied)))
		fmt.Printf("Error:    %s\n", ui.RenderError(fmt.Sprint(sum.Error)))
		if sum.LastUpdate != "" {
			fmt.Printf("Updated:  %s\n", ui.RenderMuted(sum.LastUpdate))
		}
		return nil
	},
}

var pendingCmd = &cobra.Command{
	Use:     "pending",
	Short:   "List annotations awaiting processing",
	GroupID: "annotations",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clearAll, _ := cmd.Flags().GetBool("clear")

		if err := loadAnnotations(""); err != nil {
			return err
		}
		if clearAll {
			n := proc.ClearPending(cmd.Context())
			if _, err := proc.Save(cmd.Context()); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(map[string]int{"removed": n})
				return nil
			}
			fmt.Printf("Removed %d pending annotation(s)\n", n)
			return nil
		}

		sum := proc.PendingSummary()
		if jsonOutput {
			printJSON(sum)
			return nil
		}
		if sum.Count == 0 {
			fmt.Println("No pending annotations")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NODE\tSTATUS\tSTRUCTURE\tERROR")
		for _, id := range sum.Nodes {
			r := sum.Details[id]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, ui.RenderStatus(string(r.Status)), truncate(r.NewStructure, 40), r.ErrorDetail)
		}
		w.Flush()
		fmt.Printf("\n%d pending\n", sum.Count)
		return nil
	},
}

func init() {
	pendingCmd.Flags().Bool("clear", false, "remove every pending and failed annotation")
}
