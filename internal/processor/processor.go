// Package processor drives annotations from submission through the graph
// write to derived link generation on the annotated node's edges.
package processor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/annotation"
	"github.com/alfredjeanlab/chemnet/internal/events"
	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/idgen"
	"github.com/alfredjeanlab/chemnet/internal/linkgen"
	"github.com/alfredjeanlab/chemnet/internal/model"
	"github.com/alfredjeanlab/chemnet/internal/sync"
)

// Processor is the only component that touches the annotation store, the
// graph and the link generator together. It is not safe for concurrent use.
type Processor struct {
	store     *annotation.Store
	links     *linkgen.Generator
	publisher events.Publisher
	mirror    *sync.Mirror
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithPublisher sets the event publisher. The default discards events.
func WithPublisher(pub events.Publisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithMirror copies every saved project file to the mirror's destinations.
func WithMirror(m *sync.Mirror) Option {
	return func(p *Processor) { p.mirror = m }
}

// WithClock overrides the time source used for node and edge timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New creates a processor over the given annotation store and link generator.
func New(store *annotation.Store, links *linkgen.Generator, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		store:     store,
		links:     links,
		publisher: &events.NoopPublisher{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the annotation store the processor works on.
func (p *Processor) Store() *annotation.Store {
	return p.store
}

// Submit records a pending annotation for nodeID. It does not touch the
// graph. When g is given and no earlier record exists, the node's current
// structure is kept as the previous structure. Blank structures are rejected.
func (p *Processor) Submit(ctx context.Context, g *graph.Graph, nodeID, structure string, metadata map[string]any) bool {
	if strings.TrimSpace(structure) == "" {
		p.logger.Warn("annotation rejected", "node", nodeID, "err", "blank structure")
		return false
	}

	var previous *string
	if g != nil && !p.store.Has(nodeID) {
		if n, ok := g.Node(nodeID); ok && n.HasStructure() {
			s := n.Structure()
			previous = &s
		}
	}

	meta := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if _, ok := meta["submission_id"]; !ok {
		if id, err := idgen.GenerateWithPrefix(idgen.SubmissionPrefix); err == nil {
			meta["submission_id"] = id
		}
	}

	if !p.store.Add(nodeID, structure, previous, meta) {
		return false
	}
	rec, _ := p.store.Get(nodeID)
	p.publish(ctx, events.TopicAnnotationSubmitted, nodeID, events.AnnotationSubmitted{
		NodeID:       nodeID,
		NewStructure: structure,
		Timestamp:    rec.Timestamp,
	})
	p.logger.Debug("annotation submitted", "node", nodeID)
	return true
}

// queue returns the ids awaiting processing: pending records and failed
// records, which stay retryable.
func (p *Processor) queue() []string {
	return p.store.List(model.AnnotationPending, model.AnnotationError)
}

// PendingSummary describes the annotations awaiting processing.
type PendingSummary struct {
	Count   int                                `json:"count"`
	Nodes   []string                           `json:"nodes"`
	Details map[string]*model.AnnotationRecord `json:"details"`
}

// PendingSummary returns the annotations the next run would process.
func (p *Processor) PendingSummary() PendingSummary {
	ids := p.queue()
	sum := PendingSummary{Count: len(ids), Nodes: ids, Details: make(map[string]*model.AnnotationRecord, len(ids))}
	for _, id := range ids {
		if r, ok := p.store.Get(id); ok {
			sum.Details[id] = r
		}
	}
	return sum
}

// ClearPending drops every annotation awaiting processing and returns how
// many were removed. Applied records are kept.
func (p *Processor) ClearPending(ctx context.Context) int {
	ids := p.queue()
	for _, id := range ids {
		if p.store.Remove(id) {
			p.publish(ctx, events.TopicAnnotationRemoved, id, events.AnnotationRemoved{NodeID: id})
		}
	}
	if len(ids) > 0 {
		p.logger.Info("pending annotations cleared", "count", len(ids))
	}
	return len(ids)
}

// publish is best-effort: failures are logged and never reach the caller.
func (p *Processor) publish(ctx context.Context, topic, nodeID string, event any) {
	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		p.logger.Warn("failed to publish event", "topic", topic, "node", nodeID, "err", err)
	}
}
