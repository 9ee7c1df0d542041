package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	annotationsDir string
	projectName    string
	jsonOutput     bool
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:          "chemnet",
	Short:        "Annotate chemical network nodes and build spectrum comparison links",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&annotationsDir, "dir", "", "annotation directory (default $CHEMNET_ANNOTATIONS_DIR or \"annotations\")")
	rootCmd.PersistentFlags().StringVarP(&projectName, "project", "p", "", "named annotation project (default: unscoped legacy file)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "annotations", Title: "Annotations:"},
		&cobra.Group{ID: "projects", Title: "Projects:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(relinkCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(watchCmd)

	rootCmd.SetHelpFunc(colorizedHelpFunc())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
