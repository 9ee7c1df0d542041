package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/annotation"
	"github.com/alfredjeanlab/chemnet/internal/events"
	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/linkgen"
	"github.com/alfredjeanlab/chemnet/internal/model"
	"github.com/alfredjeanlab/chemnet/internal/sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	store *annotation.Store
	proc  *Processor
	rec   *events.Recorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clock := stepClock()
	store := annotation.NewStore(t.TempDir(), discardLogger(), annotation.WithClock(clock))
	rec := &events.Recorder{}
	opts = append([]Option{WithPublisher(rec), WithClock(clock)}, opts...)
	proc := New(store, linkgen.New(linkgen.DefaultConfig(), discardLogger()), discardLogger(), opts...)
	return &fixture{store: store, proc: proc, rec: rec}
}

func molecule(id string, props map[string]string) *model.Node {
	n := model.NewNode(id, id, model.NodeMolecule)
	for k, v := range props {
		n.Properties.Set(k, model.String(v))
	}
	return n
}

func link(g *graph.Graph, source, target, adduct string) *model.Edge {
	e := model.NewEdge(source, target, model.EdgeInteraction)
	if adduct != "" {
		e.Properties.Set(model.KeyAdduct, model.String(adduct))
	}
	g.AddEdge(e)
	return e
}

func mustAdd(t *testing.T, g *graph.Graph, nodes ...*model.Node) {
	t.Helper()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
}

// pairGraph is m1 (no structure) linked to m2, both with analytical ids.
func pairGraph(t *testing.T) (*graph.Graph, *model.Edge) {
	t.Helper()
	g := graph.New()
	mustAdd(t, g,
		molecule("m1", map[string]string{model.KeyAnalyticalID: "abc"}),
		molecule("m2", map[string]string{model.KeyAnalyticalID: "xyz"}),
	)
	return g, link(g, "m1", "m2", "[M+H]+ Adduct")
}

func TestProcessPending_AppliesAnnotation(t *testing.T) {
	f := newFixture(t)
	g, edge := pairGraph(t)
	ctx := context.Background()

	if !f.proc.Submit(ctx, g, "m1", "CCO", nil) {
		t.Fatal("Submit returned false")
	}
	m1, _ := g.Node("m1")
	if s, ok := f.store.EffectiveStructure(m1, model.KeyEffectiveStructure); ok || s != "" {
		t.Fatalf("effective structure before apply = %q, %v; want absent", s, ok)
	}

	_, res := f.proc.ProcessPending(ctx, g)

	if res.Processed != 1 || len(res.Errors) != 0 {
		t.Fatalf("Processed = %d, Errors = %v", res.Processed, res.Errors)
	}
	m1, _ = g.Node("m1")
	if got := m1.Properties.Text(model.KeyEffectiveStructure); got != "CCO" {
		t.Errorf("structure = %q, want CCO", got)
	}
	if !m1.IsAnnotated() {
		t.Error("node not marked user_annotated")
	}
	if !m1.Properties.Has(model.KeyAnnotationTimestamp) {
		t.Error("annotation timestamp missing")
	}
	if ids := f.store.List(model.AnnotationPending); len(ids) != 0 {
		t.Errorf("pending = %v, want empty", ids)
	}
	if ids := f.store.List(model.AnnotationApplied); len(ids) != 1 || ids[0] != "m1" {
		t.Errorf("applied = %v, want [m1]", ids)
	}
	if s, ok := f.store.EffectiveStructure(m1, model.KeyEffectiveStructure); !ok || s != "CCO" {
		t.Errorf("effective structure after apply = %q, %v", s, ok)
	}

	if res.LinksCreated != 1 || len(res.EdgesUpdated) != 1 || res.EdgesUpdated[0] != "m1-m2-0" {
		t.Fatalf("LinksCreated = %d, EdgesUpdated = %v", res.LinksCreated, res.EdgesUpdated)
	}
	got := edge.DerivedLink()
	for _, want := range []string{"USI1=", "USI2=", "Adduct=[m+h]1+", "SMILES1=CCO"} {
		if !strings.Contains(got, want) {
			t.Errorf("link %q missing %q", got, want)
		}
	}
	if src := edge.Properties.Text(model.KeyDerivedLinkSourceNode); src != "m1" {
		t.Errorf("source node = %q, want m1", src)
	}
	if !edge.Properties.Has(model.KeyDerivedLinkGeneratedAt) {
		t.Error("generated_at missing")
	}
}

func TestProcessPending_PartialFailureIsolation(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	mustAdd(t, g,
		molecule("p", map[string]string{model.KeyAnalyticalID: "abc"}),
		molecule("bare", nil),
		molecule("full", map[string]string{model.KeyAnalyticalID: "xyz"}),
	)
	link(g, "p", "ghost", "[M+H]+")
	link(g, "bare", "p", "[M+H]+")
	eligible := link(g, "p", "full", "[M+H]+")

	ctx := context.Background()
	f.proc.Submit(ctx, g, "p", "CCO", nil)
	_, res := f.proc.ProcessPending(ctx, g)

	if res.LinksCreated != 1 {
		t.Errorf("LinksCreated = %d, want 1", res.LinksCreated)
	}
	if res.Skipped.UnresolvedNeighbor != 1 {
		t.Errorf("UnresolvedNeighbor = %d, want 1", res.Skipped.UnresolvedNeighbor)
	}
	if res.Skipped.NeighborMissingAnalyticalID != 1 {
		t.Errorf("NeighborMissingAnalyticalID = %d, want 1", res.Skipped.NeighborMissingAnalyticalID)
	}
	if res.Skipped.Total() != 2 {
		t.Errorf("Skipped.Total() = %d, want 2", res.Skipped.Total())
	}
	if len(res.EdgeErrors) != 0 || len(res.Errors) != 0 {
		t.Errorf("EdgeErrors = %v, Errors = %v", res.EdgeErrors, res.Errors)
	}
	if eligible.DerivedLink() == "" {
		t.Error("eligible edge has no link")
	}
}

func TestProcessPending_SkipReasons(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	mustAdd(t, g,
		molecule("p", map[string]string{model.KeyAnalyticalID: "abc"}),
		molecule("n1", map[string]string{model.KeyAnalyticalID: "n1"}),
		molecule("n2", map[string]string{model.KeyAnalyticalID: "n2"}),
	)
	link(g, "p", "n1", "")
	e := link(g, "p", "n2", "")
	e.Properties.Set(model.KeyAdduct, model.String("   "))

	ctx := context.Background()
	f.proc.Submit(ctx, g, "p", "CCO", nil)
	_, res := f.proc.ProcessPending(ctx, g)

	if res.Skipped.MissingAdduct != 2 {
		t.Errorf("MissingAdduct = %d, want 2", res.Skipped.MissingAdduct)
	}
	if m := res.Skipped.Map(); len(m) != 1 || m["missing_adduct"] != 2 {
		t.Errorf("Skipped.Map() = %v", m)
	}
	if res.LinksCreated != 0 {
		t.Errorf("LinksCreated = %d, want 0", res.LinksCreated)
	}
}

func TestProcessPending_NodeAdductFallback(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	mustAdd(t, g,
		molecule("p", map[string]string{model.KeyAnalyticalID: "abc", model.KeyAdduct: "[M+Na]+"}),
		molecule("n", map[string]string{model.KeyAnalyticalID: "xyz"}),
	)
	e := link(g, "n", "p", "")

	ctx := context.Background()
	f.proc.Submit(ctx, g, "p", "CCO", nil)
	_, res := f.proc.ProcessPending(ctx, g)

	if res.LinksCreated != 1 {
		t.Fatalf("LinksCreated = %d, want 1", res.LinksCreated)
	}
	if !strings.Contains(e.DerivedLink(), "Adduct=[m+na]1+") {
		t.Errorf("link %q does not use node adduct", e.DerivedLink())
	}
	if !strings.Contains(e.DerivedLink(), "input_spectra/abc&USI2=") {
		t.Errorf("link %q does not put the annotated node first", e.DerivedLink())
	}
}

func TestProcessPending_MissingNodeIsRetried(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	ctx := context.Background()

	f.proc.Submit(ctx, g, "late", "CCO", nil)
	_, res := f.proc.ProcessPending(ctx, g)

	if res.Processed != 0 || len(res.Errors) != 1 {
		t.Fatalf("Processed = %d, Errors = %v", res.Processed, res.Errors)
	}
	if !strings.HasPrefix(res.Errors[0], "Node late:") {
		t.Errorf("error = %q", res.Errors[0])
	}
	rec, ok := f.store.Get("late")
	if !ok || rec.Status != model.AnnotationError || rec.ErrorDetail == "" {
		t.Fatalf("record = %+v", rec)
	}
	if _, ok := f.store.EffectiveStructure(model.NewNode("late", "", model.NodeOther), model.KeyEffectiveStructure); ok {
		t.Error("error record must not be effective")
	}

	mustAdd(t, g, molecule("late", nil))
	_, res = f.proc.ProcessPending(ctx, g)
	if res.Processed != 1 || len(res.Errors) != 0 {
		t.Fatalf("retry: Processed = %d, Errors = %v", res.Processed, res.Errors)
	}
	rec, _ = f.store.Get("late")
	if rec.Status != model.AnnotationApplied || rec.ErrorDetail != "" {
		t.Errorf("record after retry = %+v", rec)
	}
}

func TestGenerateLinksForExisting_Idempotent(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	mustAdd(t, g,
		molecule("s", map[string]string{model.KeyAnalyticalID: "s", model.KeyEffectiveStructure: "C1=CC=CC=C1"}),
		molecule("a", map[string]string{model.KeyAnalyticalID: "a"}),
		molecule("b", map[string]string{model.KeyAnalyticalID: "b"}),
		molecule("c", nil),
	)
	link(g, "s", "a", "[M+H]+")
	link(g, "b", "s", "[M+2H]2+")
	link(g, "s", "c", "[M+H]+")

	ctx := context.Background()
	first := f.proc.GenerateLinksForExisting(ctx, g)
	if first.Processed != 1 || first.LinksCreated != 2 {
		t.Fatalf("first run: Processed = %d, LinksCreated = %d", first.Processed, first.LinksCreated)
	}

	snapshot := func() []string {
		var out []string
		for _, e := range g.Edges() {
			out = append(out, e.DerivedLink()+"|"+e.Properties.Text(model.KeyDerivedLinkGeneratedAt))
		}
		return out
	}
	before := snapshot()

	second := f.proc.GenerateLinksForExisting(ctx, g)
	if second.LinksCreated != 0 || second.LinksUnchanged != 2 {
		t.Errorf("second run: LinksCreated = %d, LinksUnchanged = %d", second.LinksCreated, second.LinksUnchanged)
	}
	after := snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("edge %d changed: %q -> %q", i, before[i], after[i])
		}
	}
}

func TestGenerateLinksForExisting_SharedEdgeIdempotent(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	mustAdd(t, g,
		molecule("a", map[string]string{model.KeyAnalyticalID: "a", model.KeyEffectiveStructure: "CCO"}),
		molecule("b", map[string]string{model.KeyAnalyticalID: "b", model.KeyEffectiveStructure: "CCN"}),
	)
	edge := link(g, "b", "a", "[M+H]+")

	ctx := context.Background()
	first := f.proc.GenerateLinksForExisting(ctx, g)
	if first.Processed != 2 || first.LinksCreated != 1 {
		t.Fatalf("first run: Processed = %d, LinksCreated = %d", first.Processed, first.LinksCreated)
	}
	if got := edge.Properties.Text(model.KeyDerivedLinkSourceNode); got != "a" {
		t.Errorf("source node = %q, want %q (first node in graph order)", got, "a")
	}
	link1 := edge.DerivedLink()
	at1 := edge.Properties.Text(model.KeyDerivedLinkGeneratedAt)

	for run := 2; run <= 3; run++ {
		res := f.proc.GenerateLinksForExisting(ctx, g)
		if res.LinksCreated != 0 || res.LinksUnchanged != 1 {
			t.Errorf("run %d: LinksCreated = %d, LinksUnchanged = %d", run, res.LinksCreated, res.LinksUnchanged)
		}
	}
	if edge.DerivedLink() != link1 {
		t.Errorf("link changed: %q -> %q", link1, edge.DerivedLink())
	}
	if got := edge.Properties.Text(model.KeyDerivedLinkGeneratedAt); got != at1 {
		t.Errorf("generated_at drifted: %q -> %q", at1, got)
	}
}

func TestGenerateLinksForExisting_UsesAppliedRecord(t *testing.T) {
	f := newFixture(t)
	g, edge := pairGraph(t)
	f.store.Add("m1", "CCN", nil, nil)
	f.store.UpdateStatus("m1", model.AnnotationApplied, "")

	res := f.proc.GenerateLinksForExisting(context.Background(), g)
	if res.LinksCreated != 1 {
		t.Fatalf("LinksCreated = %d, want 1", res.LinksCreated)
	}
	if !strings.HasSuffix(edge.DerivedLink(), "SMILES1=CCN") {
		t.Errorf("link = %q", edge.DerivedLink())
	}
}

func TestApplyAllPending_HighlightsAndSavesLegacy(t *testing.T) {
	f := newFixture(t)
	g, _ := pairGraph(t)
	ctx := context.Background()

	f.proc.Submit(ctx, g, "m1", "CCO", nil)
	res := f.proc.ApplyAllPending(ctx, g)

	m1, _ := g.Node("m1")
	if m1.Color != model.HighlightColor {
		t.Errorf("Color = %q, want %q", m1.Color, model.HighlightColor)
	}
	if v, _ := m1.Properties.Get(model.KeyVisualAnnotationMarker); !v.Equal(model.Bool(true)) {
		t.Errorf("marker = %v", v)
	}
	m2, _ := g.Node("m2")
	if m2.Color != "" {
		t.Errorf("unannotated node coloured %q", m2.Color)
	}

	if !res.Saved || res.SavePath != f.store.LegacyPath() {
		t.Fatalf("Saved = %v, SavePath = %q, SaveError = %q", res.Saved, res.SavePath, res.SaveError)
	}
	if _, err := os.Stat(res.SavePath); err != nil {
		t.Fatalf("legacy file: %v", err)
	}

	again := f.proc.ApplyAllPending(ctx, g)
	if again.Processed != 0 || again.LinksCreated != 0 || len(again.Errors) != 0 {
		t.Errorf("second apply not a no-op: %+v", again)
	}
	if got := len(f.store.Records()); got != 1 {
		t.Errorf("records = %d, want 1", got)
	}
}

// fakeDestination records mirrored writes.
type fakeDestination struct {
	keys []string
	err  error
}

func (d *fakeDestination) Write(_ context.Context, key string, _ []byte) error {
	d.keys = append(d.keys, key)
	return d.err
}

func TestApplyAllPending_ProjectSaveAndMirror(t *testing.T) {
	dest := &fakeDestination{}
	f := newFixture(t, WithMirror(sync.NewMirror([]sync.Destination{dest}, discardLogger())))
	g, _ := pairGraph(t)
	ctx := context.Background()

	f.store.SetProject("run1", "network.graphml")
	f.proc.Submit(ctx, g, "m1", "CCO", nil)
	res := f.proc.ApplyAllPending(ctx, g)

	if !res.Saved || res.SavePath != f.store.ProjectPath("run1", "network.graphml") {
		t.Fatalf("Saved = %v, SavePath = %q, SaveError = %q", res.Saved, res.SavePath, res.SaveError)
	}
	if len(dest.keys) != 1 || dest.keys[0] != "projects/network.graphml/run1.json" {
		t.Errorf("mirrored keys = %v", dest.keys)
	}
	if res.MirrorError != "" {
		t.Errorf("MirrorError = %q", res.MirrorError)
	}
}

func TestApplyAllPending_MirrorFailureReported(t *testing.T) {
	dest := &fakeDestination{err: errors.New("bucket gone")}
	f := newFixture(t, WithMirror(sync.NewMirror([]sync.Destination{dest}, discardLogger())))
	g, _ := pairGraph(t)
	ctx := context.Background()

	f.proc.Submit(ctx, g, "m1", "CCO", nil)
	res := f.proc.ApplyAllPending(ctx, g)
	if !res.Saved {
		t.Fatalf("local save should succeed: %q", res.SaveError)
	}
	if !strings.Contains(res.MirrorError, "bucket gone") {
		t.Errorf("MirrorError = %q", res.MirrorError)
	}
}

func TestApplyAllPending_SaveFailureKeepsRecords(t *testing.T) {
	// A regular file where the annotation directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := annotation.NewStore(filepath.Join(blocker, "annotations"), discardLogger())
	proc := New(store, linkgen.New(linkgen.DefaultConfig(), discardLogger()), discardLogger())
	g, _ := pairGraph(t)
	ctx := context.Background()

	proc.Submit(ctx, g, "m1", "CCO", nil)
	res := proc.ApplyAllPending(ctx, g)
	if res.Saved || res.SaveError == "" {
		t.Fatalf("Saved = %v, SaveError = %q", res.Saved, res.SaveError)
	}
	if res.Processed != 1 {
		t.Errorf("Processed = %d, want 1", res.Processed)
	}
	if !store.Has("m1") {
		t.Error("record lost after save failure")
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	mustAdd(t, g, molecule("m1", map[string]string{model.KeyEffectiveStructure: "CC"}))
	ctx := context.Background()

	if f.proc.Submit(ctx, g, "m1", "  ", nil) {
		t.Error("blank structure accepted")
	}
	if f.proc.Submit(ctx, g, "", "CCO", nil) {
		t.Error("empty node id accepted")
	}

	if !f.proc.Submit(ctx, g, "m1", "CCO", map[string]any{"source": "ui"}) {
		t.Fatal("Submit returned false")
	}
	rec, _ := f.store.Get("m1")
	if rec.PreviousStructure == nil || *rec.PreviousStructure != "CC" {
		t.Errorf("PreviousStructure = %v, want CC", rec.PreviousStructure)
	}
	if rec.Metadata["source"] != "ui" {
		t.Errorf("metadata = %v", rec.Metadata)
	}
	if id, _ := rec.Metadata["submission_id"].(string); !strings.HasPrefix(id, "sub-") {
		t.Errorf("submission_id = %v", rec.Metadata["submission_id"])
	}

	// A second submission before applying keeps the first one's previous value.
	f.proc.Submit(ctx, g, "m1", "CCN", nil)
	rec, _ = f.store.Get("m1")
	if rec.NewStructure != "CCN" || rec.PreviousStructure == nil || *rec.PreviousStructure != "CC" {
		t.Errorf("record after overwrite = %+v", rec)
	}
	if got := len(f.store.List()); got != 1 {
		t.Errorf("records = %d, want 1", got)
	}
}

func TestEventsPublished(t *testing.T) {
	f := newFixture(t)
	g, _ := pairGraph(t)
	ctx := context.Background()

	f.proc.Submit(ctx, g, "m1", "CCO", nil)
	f.proc.Submit(ctx, g, "ghost", "CCO", nil)
	f.proc.ProcessPending(ctx, g)

	want := []string{
		events.TopicAnnotationSubmitted,
		events.TopicAnnotationSubmitted,
		events.TopicAnnotationFailed,
		events.TopicLinksGenerated,
		events.TopicAnnotationApplied,
	}
	got := f.rec.Topics()
	if len(got) != len(want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	applied := f.rec.Events()[4].Event.(events.AnnotationApplied)
	if applied.NodeID != "m1" || applied.LinksCreated != 1 {
		t.Errorf("applied event = %+v", applied)
	}
}

func TestPendingSummaryAndClear(t *testing.T) {
	f := newFixture(t)
	g, _ := pairGraph(t)
	ctx := context.Background()

	f.proc.Submit(ctx, g, "m1", "CCO", nil)
	f.proc.ProcessPending(ctx, g)
	f.proc.Submit(ctx, g, "m2", "CCN", nil)
	f.proc.Submit(ctx, g, "ghost", "C", nil)

	sum := f.proc.PendingSummary()
	if sum.Count != 2 || sum.Nodes[0] != "ghost" || sum.Nodes[1] != "m2" {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Details["m2"].NewStructure != "CCN" {
		t.Errorf("details = %+v", sum.Details)
	}

	if n := f.proc.ClearPending(ctx); n != 2 {
		t.Errorf("ClearPending() = %d, want 2", n)
	}
	if f.proc.PendingSummary().Count != 0 {
		t.Error("pending not cleared")
	}
	if !f.store.Has("m1") {
		t.Error("applied record removed")
	}
}

func TestPreviewImpact(t *testing.T) {
	f := newFixture(t)
	g := graph.New()
	mustAdd(t, g,
		molecule("p", map[string]string{model.KeyAnalyticalID: "abc"}),
		molecule("a", map[string]string{model.KeyAnalyticalID: "a"}),
		molecule("b", nil),
	)
	link(g, "p", "a", "[M+H]+")
	link(g, "a", "p", "")
	link(g, "p", "b", "[M+H]+")

	imp, err := f.proc.PreviewImpact(g, "p")
	if err != nil {
		t.Fatalf("PreviewImpact: %v", err)
	}
	want := Impact{ConnectedNodes: 2, ConnectedEdges: 3, PotentialLinks: 1, HasRequiredData: false}
	if imp != want {
		t.Errorf("PreviewImpact() = %+v, want %+v", imp, want)
	}

	if _, err := f.proc.PreviewImpact(g, "nope"); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestRestoreProject(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := annotation.NewStore(dir, discardLogger())
	proc := New(store, linkgen.New(linkgen.DefaultConfig(), discardLogger()), discardLogger())
	g, _ := pairGraph(t)
	store.SetProject("run1", "network.graphml")
	proc.Submit(ctx, g, "m1", "CCO", nil)
	if res := proc.ApplyAllPending(ctx, g); !res.Saved {
		t.Fatalf("save failed: %s", res.SaveError)
	}

	// A new session reloads the graph from its source and restores the overlay.
	fresh := annotation.NewStore(dir, discardLogger())
	rec := &events.Recorder{}
	restorer := New(fresh, linkgen.New(linkgen.DefaultConfig(), discardLogger()), discardLogger(), WithPublisher(rec))
	g2, edge := pairGraph(t)

	res, err := restorer.RestoreProject(ctx, g2, "run1", "network.graphml")
	if err != nil {
		t.Fatalf("RestoreProject: %v", err)
	}
	m1, _ := g2.Node("m1")
	if m1.Structure() != "CCO" || !m1.IsAnnotated() || m1.Color != model.HighlightColor {
		t.Errorf("restored node = %+v", m1)
	}
	if res.LinksCreated != 1 || !strings.HasSuffix(edge.DerivedLink(), "SMILES1=CCO") {
		t.Errorf("LinksCreated = %d, link = %q", res.LinksCreated, edge.DerivedLink())
	}
	if topics := rec.Topics(); topics[len(topics)-1] != events.TopicProjectLoaded {
		t.Errorf("last topic = %v", topics)
	}

	if _, err := restorer.RestoreProject(ctx, g2, "run1", "other.graphml"); !errors.Is(err, annotation.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
	if got := len(fresh.Records()); got != 1 {
		t.Errorf("records after failed restore = %d, want 1", got)
	}
}

func TestSave_PicksProjectOrLegacy(t *testing.T) {
	f := newFixture(t)
	g, _ := pairGraph(t)
	f.proc.Submit(context.Background(), g, "m1", "CCO", nil)

	path, err := f.proc.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != f.store.LegacyPath() {
		t.Errorf("path = %q, want legacy %q", path, f.store.LegacyPath())
	}

	f.store.SetProject("run1", "network.graphml")
	path, err = f.proc.Save(context.Background())
	if err != nil {
		t.Fatalf("Save with project: %v", err)
	}
	if want := f.store.ProjectPath("run1", "network.graphml"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("project file not written: %v", err)
	}
}
