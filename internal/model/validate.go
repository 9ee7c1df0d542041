package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Add appends a field error.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateNode checks a Node for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the node is valid.
func ValidateNode(n *Node) error {
	var ve ValidationError

	if strings.TrimSpace(n.ID) == "" {
		ve.Add("id", "is required")
	}
	if !n.Type.IsValid() {
		ve.Add("type", "invalid value %q", n.Type)
	}

	// Annotation timestamp is present iff the status is set.
	hasStatus := n.Properties.Has(KeyAnnotationStatus)
	hasStamp := n.Properties.Has(KeyAnnotationTimestamp)
	if hasStatus && n.Properties.Text(KeyAnnotationStatus) != AnnotatedByUser {
		ve.Add("properties."+KeyAnnotationStatus, "invalid value %q", n.Properties.Text(KeyAnnotationStatus))
	}
	if hasStatus != hasStamp {
		ve.Add("properties."+KeyAnnotationTimestamp, "must be set together with %s", KeyAnnotationStatus)
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateRecord checks an AnnotationRecord for constraint violations.
func ValidateRecord(r *AnnotationRecord) error {
	var ve ValidationError

	if strings.TrimSpace(r.NodeID) == "" {
		ve.Add("node_id", "is required")
	}
	if !r.Status.IsValid() {
		ve.Add("status", "invalid value %q", r.Status)
	}
	if r.ErrorDetail != "" && r.Status != AnnotationError {
		ve.Add("error_detail", "must be empty when status is %s", r.Status)
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
