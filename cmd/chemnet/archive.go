package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/ui"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:     "archive",
	Short:   "Inspect projects mirrored to the database archive",
	GroupID: "system",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		items, err := a.List(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(items)
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tPROJECT\tGRAPH\tANNOTATIONS\tSAVED")
		for _, p := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.Key, p.Project, p.SourceGraph, p.AnnotationCount,
				ui.RenderMuted(p.SavedAt.Format(time.RFC3339)))
		}
		w.Flush()
		fmt.Printf("\n%d archived\n", len(items))
		return nil
	},
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print an archived project file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		p, err := a.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(p.Payload)
		return err
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a project from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		if err := a.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	archiveCmd.AddCommand(archiveListCmd, archiveGetCmd, archiveDeleteCmd)
}
