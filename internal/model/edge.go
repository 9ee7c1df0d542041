package model

import (
	"fmt"
	"strings"
)

// Reserved edge property keys written by link generation.
const (
	KeyDerivedLink            = "derived_link"
	KeyDerivedLinkGeneratedAt = "derived_link_generated_at"
	KeyDerivedLinkSourceNode  = "derived_link_source_node"
)

// EdgeType is the semantic type of an edge.
type EdgeType string

const (
	EdgeInteraction EdgeType = "interaction"
	EdgeActivation  EdgeType = "activation"
	EdgeInhibition  EdgeType = "inhibition"
	EdgeBinding     EdgeType = "binding"
	EdgeOther       EdgeType = "other"
)

// String returns the string representation of the edge type.
func (t EdgeType) String() string {
	return string(t)
}

// IsValid checks whether the edge type is a known value.
func (t EdgeType) IsValid() bool {
	switch t {
	case EdgeInteraction, EdgeActivation, EdgeInhibition, EdgeBinding, EdgeOther:
		return true
	}
	return false
}

// ParseEdgeType maps free text onto an EdgeType, falling back to EdgeOther.
func ParseEdgeType(s string) EdgeType {
	t := EdgeType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return EdgeOther
}

// Edge is an ordered connection between two nodes. Several edges may join
// the same pair, so edges are addressed by their position in the graph.
type Edge struct {
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Type       EdgeType   `json:"type"`
	Weight     float64    `json:"weight"`
	Properties Properties `json:"properties"`
	Color      string     `json:"color,omitempty"`
	Width      *float64   `json:"width,omitempty"`
}

// NewEdge creates an edge with weight 1 and an allocated property map.
func NewEdge(source, target string, typ EdgeType) *Edge {
	return &Edge{Source: source, Target: target, Type: typ, Weight: 1, Properties: Properties{}}
}

// Touches reports whether nodeID is either endpoint.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Other returns the endpoint opposite nodeID. For a self-loop it returns nodeID.
func (e *Edge) Other(nodeID string) string {
	if e.Source == nodeID {
		return e.Target
	}
	return e.Source
}

// DerivedLink returns the generated link, or "" if none has been written.
func (e *Edge) DerivedLink() string {
	return e.Properties.Text(KeyDerivedLink)
}

// EdgeAddress formats the positional address "source-target-index".
func EdgeAddress(e *Edge, index int) string {
	return fmt.Sprintf("%s-%s-%d", e.Source, e.Target, index)
}
