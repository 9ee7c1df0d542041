package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/model"
)

// RecordSource is the read side of an annotation store.
type RecordSource interface {
	// Records returns the annotation records sorted by node id.
	Records() []*model.AnnotationRecord
	// Project returns the active project context, if any.
	Project() (name, sourceGraph string, ok bool)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version         string    `json:"version"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	Project         string    `json:"project,omitempty"`
	SourceGraph     string    `json:"source_graph,omitempty"`
	AnnotationCount int       `json:"annotation_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string                  `json:"type"`
	Data *model.AnnotationRecord `json:"data"`
}

// ExportJSONL writes the header and one line per annotation record to w.
func ExportJSONL(src RecordSource, w io.Writer) error {
	records := src.Records()
	project, sourceGraph, _ := src.Project()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:         "1",
		Type:            "header",
		Timestamp:       time.Now().UTC(),
		Project:         project,
		SourceGraph:     sourceGraph,
		AnnotationCount: len(records),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, r := range records {
		if err := enc.Encode(record{Type: "annotation", Data: r}); err != nil {
			return fmt.Errorf("encode annotation %s: %w", r.NodeID, err)
		}
	}
	return nil
}
