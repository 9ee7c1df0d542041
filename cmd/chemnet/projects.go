package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	chemsync "github.com/alfredjeanlab/chemnet/internal/sync"
	"github.com/alfredjeanlab/chemnet/internal/ui"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Short:   "List saved annotation projects",
	GroupID: "projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := proc.Store().ListProjects()
		if jsonOutput {
			printJSON(infos)
			return nil
		}
		if len(infos) == 0 {
			fmt.Println("No saved projects")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tGRAPH\tANNOTATIONS\tSAVED")
		for _, p := range infos {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Name, p.SourceGraph, p.AnnotationCount, ui.RenderMuted(p.SavedAt))
		}
		w.Flush()
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:     "restore <graph.json> <project>",
	Short:   "Reapply a saved project to a freshly loaded graph",
	GroupID: "projects",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		g, err := readGraph(args[0])
		if err != nil {
			return err
		}
		res, err := proc.RestoreProject(cmd.Context(), g, args[1], sourceName(args[0]))
		if err != nil {
			return err
		}
		if out != "" {
			if err := writeGraph(g, out); err != nil {
				return err
			}
		}
		printResults(res)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export annotation records as JSONL",
	GroupID: "projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		if err := loadAnnotations(""); err != nil {
			return err
		}
		w := os.Stdout
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		return chemsync.ExportJSONL(proc.Store(), w)
	},
}

func init() {
	restoreCmd.Flags().StringP("output", "o", "", "write the restored graph to this file (- for stdout)")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
