package processor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alfredjeanlab/chemnet/internal/events"
	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/model"
)

// ApplyAllPending processes the queue, highlights every user-annotated
// node and saves the annotations: to the active project when there is one,
// otherwise to the unscoped legacy file. A save failure is reported in the
// results; the in-memory records are kept either way.
func (p *Processor) ApplyAllPending(ctx context.Context, g *graph.Graph) *Results {
	_, res := p.ProcessPending(ctx, g)
	markAnnotated(g)

	path, err := p.Save(ctx)
	if err != nil {
		res.SaveError = err.Error()
		return res
	}
	res.Saved = true
	res.SavePath = path
	if err := p.mirrorFile(ctx, path); err != nil {
		res.MirrorError = err.Error()
	}
	return res
}

// markAnnotated sets the highlight colour and marker on user-annotated nodes.
func markAnnotated(g *graph.Graph) {
	for _, n := range g.AnnotatedNodes() {
		n.Color = model.HighlightColor
		n.Properties.Set(model.KeyVisualAnnotationMarker, model.Bool(true))
	}
}

// Save writes the annotations to the active project, or to the legacy
// file when no project is set. It does not mirror.
func (p *Processor) Save(ctx context.Context) (string, error) {
	if name, source, ok := p.store.Project(); ok {
		return p.SaveProject(ctx, name, source)
	}
	return p.saveLegacy(ctx)
}

// SaveProject saves every annotation under the named project and publishes
// the save. The file is not mirrored; ApplyAllPending does that.
func (p *Processor) SaveProject(ctx context.Context, name, sourceGraph string) (string, error) {
	path, err := p.store.SaveProject(name, sourceGraph)
	if err != nil {
		return "", err
	}
	p.publish(ctx, events.TopicProjectSaved, "", events.ProjectSaved{
		Project:     name,
		SourceGraph: sourceGraph,
		Path:        path,
		Annotations: p.store.Summary().Total,
	})
	return path, nil
}

func (p *Processor) saveLegacy(ctx context.Context) (string, error) {
	path, err := p.store.SaveLegacy()
	if err != nil {
		return "", err
	}
	p.publish(ctx, events.TopicProjectSaved, "", events.ProjectSaved{
		Path:        path,
		Annotations: p.store.Summary().Total,
	})
	return path, nil
}

// MirrorKey returns the key a saved file is mirrored under: its path
// relative to the annotation directory, with forward slashes.
func (p *Processor) MirrorKey(path string) string {
	rel, err := filepath.Rel(p.store.Dir(), path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func (p *Processor) mirrorFile(ctx context.Context, path string) error {
	if p.mirror == nil || p.mirror.Len() == 0 {
		return nil
	}
	if err := p.mirror.PushFile(ctx, p.MirrorKey(path), path); err != nil {
		p.logger.Error("mirror failed", "path", path, "err", err)
		return err
	}
	return nil
}

// RestoreProject loads the named project of sourceGraph (any graph when
// empty) into the store, writes its applied annotations onto g, which is
// expected to be freshly loaded from its source file, and regenerates links
// for every node with a structure.
// Records of a missing or unreadable project are not touched.
func (p *Processor) RestoreProject(ctx context.Context, g *graph.Graph, name, sourceGraph string) (*Results, error) {
	if err := p.store.LoadProjectFor(name, sourceGraph); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	overlaid := p.store.OverlayApplied(g)

	res := p.GenerateLinksForExisting(ctx, g)
	res.NodesUpdated = append(res.NodesUpdated, overlaid...)
	markAnnotated(g)

	project, source, _ := p.store.Project()
	p.publish(ctx, events.TopicProjectLoaded, "", events.ProjectLoaded{
		Project:     project,
		SourceGraph: source,
		Annotations: p.store.Summary().Total,
	})
	return res, nil
}
