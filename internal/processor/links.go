package processor

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/chemnet/internal/events"
	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/linkgen"
	"github.com/alfredjeanlab/chemnet/internal/model"
)

// linkEdges walks every edge incident to primary in insertion order and
// writes a derived link where the pair qualifies. A failure on one edge is
// recorded and the walk continues. When claimed is non-nil, edges already
// linked by another node in the same run are left alone and edges linked
// here are added to it.
func (p *Processor) linkEdges(ctx context.Context, g *graph.Graph, primary *model.Node, structure, runID string, claimed map[int]bool) *edgeTally {
	t := &edgeTally{}
	for _, ref := range g.IncidentEdges(primary.ID) {
		if claimed != nil && claimed[ref.Index] {
			continue
		}
		if p.linkEdge(g, primary, structure, ref, t) && claimed != nil {
			claimed[ref.Index] = true
		}
	}

	p.publish(ctx, events.TopicLinksGenerated, primary.ID, events.LinksGenerated{
		RunID:   runID,
		NodeID:  primary.ID,
		Edges:   t.edges,
		Skipped: t.skipped.Map(),
		Errors:  t.errors,
	})
	return t
}

// linkEdge reports whether the edge holds primary's link afterwards.
func (p *Processor) linkEdge(g *graph.Graph, primary *model.Node, structure string, ref graph.EdgeRef, t *edgeTally) (linked bool) {
	addr := ref.Address()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("edge link failed", "edge", addr, "err", fmt.Sprint(r))
			t.errors = append(t.errors, fmt.Sprintf("Edge %s: %v", addr, r))
			linked = false
		}
	}()

	neighbor, ok := g.Node(ref.Other(primary.ID))
	if !ok {
		t.skipped.UnresolvedNeighbor++
		return false
	}
	if reason := p.links.Check(primary, neighbor, structure, ref.Edge); reason != linkgen.Eligible {
		p.logger.Debug("edge skipped", "edge", addr, "reason", string(reason))
		t.skipped.count(reason)
		return false
	}

	link, ok := p.links.Generate(primary, neighbor, structure, ref.Edge)
	if !ok {
		t.errors = append(t.errors, fmt.Sprintf("Edge %s: link generation failed", addr))
		return false
	}

	if ref.Properties.Text(model.KeyDerivedLink) == link &&
		ref.Properties.Text(model.KeyDerivedLinkSourceNode) == primary.ID {
		t.unchanged++
		return true
	}
	ref.Properties.Set(model.KeyDerivedLink, model.String(link))
	ref.Properties.Set(model.KeyDerivedLinkGeneratedAt, model.String(model.FormatTimestamp(p.now())))
	ref.Properties.Set(model.KeyDerivedLinkSourceNode, model.String(primary.ID))
	t.created++
	t.edges = append(t.edges, addr)
	return true
}

// GenerateLinksForExisting runs the edge walk for every node that has a
// structure, whether applied by a user or present in the source data.
// An edge between two such nodes is linked once, by the endpoint added to
// the graph first, so running it again without new annotations leaves
// every edge unchanged.
func (p *Processor) GenerateLinksForExisting(ctx context.Context, g *graph.Graph) *Results {
	res := newResults()
	claimed := make(map[int]bool)
	for _, n := range g.Nodes() {
		structure, ok := p.store.EffectiveStructure(n, model.KeyEffectiveStructure)
		if !ok {
			continue
		}
		res.Processed++
		res.addTally(p.linkEdges(ctx, g, n, structure, res.RunID, claimed))
	}
	p.logger.Info("bulk link generation completed",
		"run", res.RunID,
		"nodes", res.Processed,
		"links_created", res.LinksCreated,
		"links_unchanged", res.LinksUnchanged,
		"skipped", res.Skipped.Total(),
		"edge_errors", len(res.EdgeErrors),
	)
	return res
}
