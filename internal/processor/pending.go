package processor

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/chemnet/internal/events"
	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/model"
)

// ProcessPending applies every pending or previously failed annotation to
// g and links the edges of each annotated node. It works on a snapshot of
// the queue. Annotations that fail move to the error state and are retried
// on the next call.
func (p *Processor) ProcessPending(ctx context.Context, g *graph.Graph) (*graph.Graph, *Results) {
	res := newResults()
	for _, id := range p.queue() {
		p.processOne(ctx, g, id, res)
	}
	p.logger.Info("pending annotations processed",
		"run", res.RunID,
		"processed", res.Processed,
		"errors", len(res.Errors),
		"links_created", res.LinksCreated,
		"skipped", res.Skipped.Total(),
	)
	return g, res
}

func (p *Processor) processOne(ctx context.Context, g *graph.Graph, nodeID string, res *Results) {
	defer func() {
		if r := recover(); r != nil {
			p.fail(ctx, nodeID, fmt.Sprintf("unexpected failure: %v", r), res)
		}
	}()

	rec, ok := p.store.Get(nodeID)
	if !ok {
		return
	}
	node, ok := g.Node(nodeID)
	if !ok {
		p.fail(ctx, nodeID, fmt.Sprintf("node %s not found in graph", nodeID), res)
		return
	}
	if !g.ApplyStructureUpdate(nodeID, rec.NewStructure, p.now()) {
		p.fail(ctx, nodeID, "failed to apply annotation to node", res)
		return
	}
	p.store.UpdateStatus(nodeID, model.AnnotationApplied, "")

	res.Processed++
	res.NodesUpdated = append(res.NodesUpdated, nodeID)

	t := p.linkEdges(ctx, g, node, rec.NewStructure, res.RunID, nil)
	res.addTally(t)

	p.publish(ctx, events.TopicAnnotationApplied, nodeID, events.AnnotationApplied{
		NodeID:       nodeID,
		NewStructure: rec.NewStructure,
		LinksCreated: t.created,
	})
}

func (p *Processor) fail(ctx context.Context, nodeID, detail string, res *Results) {
	p.logger.Warn("annotation failed", "node", nodeID, "err", detail)
	p.store.UpdateStatus(nodeID, model.AnnotationError, detail)
	res.Errors = append(res.Errors, fmt.Sprintf("Node %s: %s", nodeID, detail))
	p.publish(ctx, events.TopicAnnotationFailed, nodeID, events.AnnotationFailed{NodeID: nodeID, Error: detail})
}
