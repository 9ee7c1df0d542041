// Package graph holds the in-memory chemical network: nodes indexed by id,
// edges in insertion order, and the adjacency queries the annotation
// pipeline needs.
package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/model"
)

// ErrNodeNotFound is returned when an operation references an unknown node id.
var ErrNodeNotFound = errors.New("node not found")

// Graph is a chemical network. It is not safe for concurrent mutation.
type Graph struct {
	nodes    []*model.Node
	index    map[string]*model.Node
	edges    []*model.Edge
	Metadata map[string]any
}

// EdgeRef pairs an edge with its position in the graph's edge list.
type EdgeRef struct {
	Index int
	*model.Edge
}

// Address returns the positional "source-target-index" address.
func (r EdgeRef) Address() string {
	return model.EdgeAddress(r.Edge, r.Index)
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index:    make(map[string]*model.Node),
		Metadata: make(map[string]any),
	}
}

// AddNode appends a node. Node ids must be unique.
func (g *Graph) AddNode(n *model.Node) error {
	if n == nil {
		return errors.New("nil node")
	}
	if _, dup := g.index[n.ID]; dup {
		return fmt.Errorf("duplicate node id %q", n.ID)
	}
	if n.Properties == nil {
		n.Properties = model.Properties{}
	}
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
	return nil
}

// AddEdge appends an edge and returns its index. Endpoints are not checked
// here; Validate reports edges whose endpoints are missing.
func (g *Graph) AddEdge(e *model.Edge) int {
	if e.Properties == nil {
		e.Properties = model.Properties{}
	}
	g.edges = append(g.edges, e)
	return len(g.edges) - 1
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (g *Graph) Nodes() []*model.Node {
	return g.nodes
}

// Edges returns the edges in insertion order. The slice must not be modified.
func (g *Graph) Edges() []*model.Edge {
	return g.edges
}

// Node looks up a node by exact id.
func (g *Graph) Node(id string) (*model.Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// IncidentEdges returns every edge where nodeID is source or target, in
// insertion order. A self-loop appears once.
func (g *Graph) IncidentEdges(nodeID string) []EdgeRef {
	var refs []EdgeRef
	for i, e := range g.edges {
		if e.Touches(nodeID) {
			refs = append(refs, EdgeRef{Index: i, Edge: e})
		}
	}
	return refs
}

// ConnectedNodes returns the distinct resolvable neighbours of nodeID in
// order of first appearance. A self-loop contributes the node itself once.
func (g *Graph) ConnectedNodes(nodeID string) []*model.Node {
	seen := make(map[string]struct{})
	var out []*model.Node
	for _, e := range g.edges {
		if !e.Touches(nodeID) {
			continue
		}
		other := e.Other(nodeID)
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		if n, ok := g.index[other]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ApplyStructureUpdate writes a user annotation onto a node. It returns
// false if the node does not exist. The three annotation properties are
// written into the node's own property map.
func (g *Graph) ApplyStructureUpdate(nodeID, structure string, at time.Time) bool {
	n, ok := g.index[nodeID]
	if !ok {
		return false
	}
	if n.Properties == nil {
		n.Properties = model.Properties{}
	}
	n.Properties.Set(model.KeyEffectiveStructure, model.String(structure))
	n.Properties.Set(model.KeyAnnotationStatus, model.String(model.AnnotatedByUser))
	n.Properties.Set(model.KeyAnnotationTimestamp, model.String(model.FormatTimestamp(at)))
	return true
}

// AnnotatedNodes returns nodes carrying a user annotation.
func (g *Graph) AnnotatedNodes() []*model.Node {
	var out []*model.Node
	for _, n := range g.nodes {
		if n.IsAnnotated() {
			out = append(out, n)
		}
	}
	return out
}

// EdgeByAddress resolves "source-target-index" positionally. The older
// "source-target" form resolves to the first matching edge. Node ids may
// themselves contain dashes, so the index form is tried first and checked
// against the edge's endpoints.
func (g *Graph) EdgeByAddress(addr string) (EdgeRef, bool) {
	if i := strings.LastIndexByte(addr, '-'); i > 0 {
		if idx, err := strconv.Atoi(addr[i+1:]); err == nil && idx >= 0 && idx < len(g.edges) {
			e := g.edges[idx]
			if e.Source+"-"+e.Target == addr[:i] {
				return EdgeRef{Index: idx, Edge: e}, true
			}
		}
	}
	for i, e := range g.edges {
		if e.Source+"-"+e.Target == addr {
			return EdgeRef{Index: i, Edge: e}, true
		}
	}
	return EdgeRef{}, false
}

// Validate checks node constraints and that every edge references existing
// nodes. It returns a *model.ValidationError or nil.
func (g *Graph) Validate() error {
	var ve model.ValidationError
	for _, n := range g.nodes {
		if err := model.ValidateNode(n); err != nil {
			var nve *model.ValidationError
			if errors.As(err, &nve) {
				for _, fe := range nve.Errors {
					ve.Add("nodes["+n.ID+"]."+fe.Field, "%s", fe.Message)
				}
			}
		}
	}
	for i, e := range g.edges {
		if _, ok := g.index[e.Source]; !ok {
			ve.Add(fmt.Sprintf("edges[%d].source", i), "unknown node %q", e.Source)
		}
		if _, ok := g.index[e.Target]; !ok {
			ve.Add(fmt.Sprintf("edges[%d].target", i), "unknown node %q", e.Target)
		}
		if !e.Type.IsValid() {
			ve.Add(fmt.Sprintf("edges[%d].type", i), "invalid value %q", e.Type)
		}
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}
