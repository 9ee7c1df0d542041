package processor

import (
	"fmt"

	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/model"
)

// placeholderStructure stands in for a structure not yet submitted when
// previewing which edges could be linked.
const placeholderStructure = "*"

// Impact previews what annotating a node would affect.
type Impact struct {
	ConnectedNodes  int  `json:"connected_nodes"`
	ConnectedEdges  int  `json:"connected_edges"`
	PotentialLinks  int  `json:"potential_links"`
	HasRequiredData bool `json:"node_has_required_data"`
}

// PreviewImpact counts the neighbours and edges of nodeID and how many of
// those edges would qualify for a link once the node has a structure.
func (p *Processor) PreviewImpact(g *graph.Graph, nodeID string) (Impact, error) {
	node, ok := g.Node(nodeID)
	if !ok {
		return Impact{}, fmt.Errorf("preview %s: %w", nodeID, graph.ErrNodeNotFound)
	}

	refs := g.IncidentEdges(nodeID)
	imp := Impact{
		ConnectedNodes: len(g.ConnectedNodes(nodeID)),
		ConnectedEdges: len(refs),
	}
	for _, ref := range refs {
		neighbor, ok := g.Node(ref.Other(nodeID))
		if ok && p.links.CanGenerate(node, neighbor, placeholderStructure, ref.Edge) {
			imp.PotentialLinks++
		}
	}
	_, hasStructure := p.store.EffectiveStructure(node, model.KeyEffectiveStructure)
	imp.HasRequiredData = node.AnalyticalID() != "" && hasStructure
	return imp, nil
}
