package model

import "strings"

// Reserved node property keys.
const (
	// KeyEffectiveStructure holds the authoritative structure string.
	KeyEffectiveStructure = "effective_structure"
	// KeyAnnotationStatus is set to AnnotatedByUser once a user annotation is applied.
	KeyAnnotationStatus = "annotation_status"
	// KeyAnnotationTimestamp is present iff KeyAnnotationStatus is set.
	KeyAnnotationTimestamp = "annotation_timestamp"
	// KeyAnalyticalID is the opaque spectral identifier required for link eligibility.
	KeyAnalyticalID = "analytical_id"
	// KeyAdduct is read from edges first, then from the primary node.
	KeyAdduct = "adduct"
	// KeyVisualAnnotationMarker flags nodes highlighted because of annotation state.
	KeyVisualAnnotationMarker = "visual_annotation_marker"
)

// AnnotatedByUser is the only value written under KeyAnnotationStatus.
const AnnotatedByUser = "user_annotated"

// HighlightColor is applied to annotated nodes after a batch is applied.
const HighlightColor = "#2196F3"

// NodeType is the semantic type of a node.
type NodeType string

const (
	NodeMolecule NodeType = "molecule"
	NodeProtein  NodeType = "protein"
	NodeReaction NodeType = "reaction"
	NodePathway  NodeType = "pathway"
	NodeOther    NodeType = "other"
)

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// IsValid checks whether the node type is a known value.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeMolecule, NodeProtein, NodeReaction, NodePathway, NodeOther:
		return true
	}
	return false
}

// ParseNodeType maps free text onto a NodeType. Unknown or empty input
// yields NodeOther; callers at ingestion decide whether that is acceptable.
func ParseNodeType(s string) NodeType {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return NodeOther
}

// Node is a vertex of a chemical network. ID never changes after creation.
type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Type       NodeType   `json:"type"`
	Properties Properties `json:"properties"`
	X          *float64   `json:"x,omitempty"`
	Y          *float64   `json:"y,omitempty"`
	Size       *float64   `json:"size,omitempty"`
	Color      string     `json:"color,omitempty"`
}

// NewNode creates a node with an allocated property map.
func NewNode(id, label string, typ NodeType) *Node {
	return &Node{ID: id, Label: label, Type: typ, Properties: Properties{}}
}

// IsAnnotated reports whether a user annotation has been applied to the node.
func (n *Node) IsAnnotated() bool {
	return n.Properties.Text(KeyAnnotationStatus) == AnnotatedByUser
}

// Structure returns the stored structure string, trimmed.
func (n *Node) Structure() string {
	return strings.TrimSpace(n.Properties.Text(KeyEffectiveStructure))
}

// HasStructure reports whether the node carries a non-blank structure.
func (n *Node) HasStructure() bool {
	return n.Structure() != ""
}

// AnalyticalID returns the trimmed analytical identifier, or "".
func (n *Node) AnalyticalID() string {
	return strings.TrimSpace(n.Properties.Text(KeyAnalyticalID))
}
