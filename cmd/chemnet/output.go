package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alfredjeanlab/chemnet/internal/processor"
	"github.com/alfredjeanlab/chemnet/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printResults(res *processor.Results) {
	if jsonOutput {
		printJSON(res)
		return
	}
	writeResults(os.Stdout, res)
}

// writeResults renders a run summary for humans.
func writeResults(w io.Writer, res *processor.Results) {
	fmt.Fprintf(w, "Run %s\n", ui.RenderMuted(res.RunID))
	fmt.Fprintf(w, "Processed:      %d\n", res.Processed)
	fmt.Fprintf(w, "Nodes updated:  %d\n", len(res.NodesUpdated))
	fmt.Fprintf(w, "Links created:  %s\n", ui.RenderLinked(fmt.Sprint(res.LinksCreated)))
	if res.LinksUnchanged > 0 {
		fmt.Fprintf(w, "Links unchanged: %d\n", res.LinksUnchanged)
	}

	if skipped := res.Skipped.Map(); len(skipped) > 0 {
		reasons := make([]string, 0, len(skipped))
		for reason := range skipped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		fmt.Fprintf(w, "Skipped edges:  %s\n", ui.RenderSkipped(fmt.Sprint(res.Skipped.Total())))
		for _, reason := range reasons {
			fmt.Fprintf(w, "  %-32s %d\n", reason, skipped[reason])
		}
	}

	for _, e := range res.Errors {
		fmt.Fprintf(w, "%s %s\n", ui.RenderError("error:"), e)
	}
	for _, e := range res.EdgeErrors {
		fmt.Fprintf(w, "%s %s\n", ui.RenderError("edge error:"), e)
	}

	switch {
	case res.SaveError != "":
		fmt.Fprintf(w, "%s %s\n", ui.RenderError("save failed:"), res.SaveError)
	case res.Saved:
		fmt.Fprintf(w, "Saved to %s\n", res.SavePath)
	}
	if res.MirrorError != "" {
		fmt.Fprintf(w, "%s %s\n", ui.RenderError("mirror failed:"), res.MirrorError)
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", "")
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
