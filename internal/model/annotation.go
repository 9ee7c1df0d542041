package model

import (
	"encoding/json"
	"time"
)

// AnnotationStatus is the lifecycle state of an annotation record.
type AnnotationStatus string

const (
	AnnotationPending AnnotationStatus = "pending"
	AnnotationApplied AnnotationStatus = "applied"
	AnnotationError   AnnotationStatus = "error"
)

// String returns the string representation of the status.
func (s AnnotationStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s AnnotationStatus) IsValid() bool {
	switch s {
	case AnnotationPending, AnnotationApplied, AnnotationError:
		return true
	}
	return false
}

// AnnotationRecord is a user-submitted structure correction for one node.
type AnnotationRecord struct {
	NodeID            string           `json:"node_id"`
	PreviousStructure *string          `json:"previous_structure"`
	NewStructure      string           `json:"new_structure"`
	Timestamp         string           `json:"timestamp"`
	Status            AnnotationStatus `json:"status"`
	Metadata          map[string]any   `json:"metadata"`
	ErrorDetail       string           `json:"error_detail,omitempty"`
}

// UnmarshalJSON accepts both the current field names and the older
// original_smiles/new_smiles/error spelling found in early project files.
func (r *AnnotationRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		NodeID            string           `json:"node_id"`
		PreviousStructure *string          `json:"previous_structure"`
		NewStructure      *string          `json:"new_structure"`
		Timestamp         string           `json:"timestamp"`
		Status            AnnotationStatus `json:"status"`
		Metadata          map[string]any   `json:"metadata"`
		ErrorDetail       string           `json:"error_detail"`

		OriginalSmiles *string `json:"original_smiles"`
		NewSmiles      *string `json:"new_smiles"`
		Error          string  `json:"error"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = AnnotationRecord{
		NodeID:            aux.NodeID,
		PreviousStructure: aux.PreviousStructure,
		Timestamp:         aux.Timestamp,
		Status:            aux.Status,
		Metadata:          aux.Metadata,
		ErrorDetail:       aux.ErrorDetail,
	}
	if r.PreviousStructure == nil {
		r.PreviousStructure = aux.OriginalSmiles
	}
	switch {
	case aux.NewStructure != nil:
		r.NewStructure = *aux.NewStructure
	case aux.NewSmiles != nil:
		r.NewStructure = *aux.NewSmiles
	}
	if r.ErrorDetail == "" {
		r.ErrorDetail = aux.Error
	}
	if !r.Status.IsValid() {
		r.Status = AnnotationPending
	}
	return nil
}

// Clone returns a deep-enough copy: the metadata map is copied one level.
func (r *AnnotationRecord) Clone() *AnnotationRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.PreviousStructure != nil {
		prev := *r.PreviousStructure
		cp.PreviousStructure = &prev
	}
	if r.Metadata != nil {
		cp.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// ProjectInfo describes a saved project file without loading its records.
type ProjectInfo struct {
	Name            string `json:"name"`
	SourceGraph     string `json:"source_graph_name"`
	AnnotationCount int    `json:"annotation_count"`
	SavedAt         string `json:"saved_at"`
	Path            string `json:"path"`
}

// FormatTimestamp renders t as the ISO-8601 form used in records and files.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
