package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/store"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanProject scans a row in the order defined by projectColumns, followed
// by the payload when withPayload is set.
func scanProject(row scannable, withPayload bool) (*store.ArchivedProject, error) {
	var p store.ArchivedProject
	dest := []any{&p.Key, &p.Project, &p.SourceGraph, &p.AnnotationCount, &p.SavedAt}
	if withPayload {
		dest = append(dest, &p.Payload)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

// projectHeader holds the fields of a project file copied into columns.
type projectHeader struct {
	ProjectName     string `json:"project_name"`
	GraphMLSource   string `json:"graphml_source"`
	AnnotationCount int    `json:"annotation_count"`
	SavedAt         string `json:"saved_at"`
}

// describe builds the row for a project file. The saved_at column comes
// from the file when it parses, otherwise from now.
func describe(key string, data []byte, now time.Time) (*store.ArchivedProject, error) {
	var h projectHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("archive %s: payload is not a project file: %w", key, err)
	}
	savedAt, err := time.Parse(time.RFC3339Nano, h.SavedAt)
	if err != nil {
		savedAt = now.UTC()
	}
	return &store.ArchivedProject{
		Key:             key,
		Project:         h.ProjectName,
		SourceGraph:     h.GraphMLSource,
		AnnotationCount: h.AnnotationCount,
		SavedAt:         savedAt,
		Payload:         data,
	}, nil
}
