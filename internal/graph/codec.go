package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alfredjeanlab/chemnet/internal/model"
)

// snapshot is the JSON form of a graph: the node and edge dictionaries in
// order plus free-form metadata.
type snapshot struct {
	Nodes    []*model.Node  `json:"nodes"`
	Edges    []*model.Edge  `json:"edges"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Decode reads a graph snapshot from r and validates it.
func Decode(r io.Reader) (*Graph, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	g := New()
	for k, v := range snap.Metadata {
		g.Metadata[k] = v
	}
	for i, n := range snap.Nodes {
		if n == nil {
			return nil, fmt.Errorf("decode graph: nodes[%d] is null", i)
		}
		if n.Type == "" {
			n.Type = model.NodeOther
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("decode graph: %w", err)
		}
	}
	for i, e := range snap.Edges {
		if e == nil {
			return nil, fmt.Errorf("decode graph: edges[%d] is null", i)
		}
		if e.Type == "" {
			e.Type = model.EdgeOther
		}
		g.AddEdge(e)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Encode writes the graph snapshot to w as indented JSON.
func (g *Graph) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot{Nodes: g.nodes, Edges: g.edges, Metadata: g.Metadata}); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}
