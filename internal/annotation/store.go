// Package annotation tracks user-submitted structure annotations through
// their pending, applied and error states, independently of any graph, and
// persists them as per-project JSON files.
package annotation

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/model"
)

// Store is the annotation registry for one session. Records are keyed by
// node id; a new submission for the same node replaces the old record.
// Store is not safe for concurrent use.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	records    map[string]*model.AnnotationRecord
	lastUpdate string

	project     string
	sourceGraph string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store persisting under dir. The directory is created
// on first save.
func NewStore(dir string, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		dir:     dir,
		logger:  logger,
		now:     time.Now,
		records: make(map[string]*model.AnnotationRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory project files are written under.
func (s *Store) Dir() string {
	return s.dir
}

// Add creates or overwrites the record for nodeID in the pending state.
// When previous is nil it is inherited from the record being replaced: the
// replaced record's new structure if it was applied, otherwise its own
// previous structure.
func (s *Store) Add(nodeID, newStructure string, previous *string, metadata map[string]any) bool {
	if strings.TrimSpace(nodeID) == "" {
		s.logger.Error("add annotation", "err", "empty node id")
		return false
	}

	if previous == nil {
		if old, ok := s.records[nodeID]; ok {
			if old.Status == model.AnnotationApplied {
				prev := old.NewStructure
				previous = &prev
			} else {
				previous = old.PreviousStructure
			}
		}
	}
	if previous != nil {
		prev := *previous
		previous = &prev
	}

	meta := make(map[string]any, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	ts := model.FormatTimestamp(s.now())
	s.records[nodeID] = &model.AnnotationRecord{
		NodeID:            nodeID,
		PreviousStructure: previous,
		NewStructure:      newStructure,
		Timestamp:         ts,
		Status:            model.AnnotationPending,
		Metadata:          meta,
	}
	s.lastUpdate = ts
	return true
}

// Get returns a copy of the record for nodeID.
func (s *Store) Get(nodeID string) (*model.AnnotationRecord, bool) {
	r, ok := s.records[nodeID]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Has reports whether a record exists for nodeID.
func (s *Store) Has(nodeID string) bool {
	_, ok := s.records[nodeID]
	return ok
}

// EffectiveStructure returns the annotated structure when the node's record
// is applied, otherwise the node's own value under fallbackKey. The second
// result is false when neither yields a non-blank string.
func (s *Store) EffectiveStructure(n *model.Node, fallbackKey string) (string, bool) {
	if r, ok := s.records[n.ID]; ok && r.Status == model.AnnotationApplied {
		return r.NewStructure, strings.TrimSpace(r.NewStructure) != ""
	}
	v, ok := n.Properties.Get(fallbackKey)
	if !ok || v.IsNull() {
		return "", false
	}
	str := v.String()
	return str, strings.TrimSpace(str) != ""
}

// UpdateStatus moves the record for nodeID to status. errorDetail is kept
// only for the error state. Unknown node ids are ignored.
func (s *Store) UpdateStatus(nodeID string, status model.AnnotationStatus, errorDetail string) {
	r, ok := s.records[nodeID]
	if !ok {
		return
	}
	r.Status = status
	if status == model.AnnotationError {
		r.ErrorDetail = errorDetail
	} else {
		r.ErrorDetail = ""
	}
}

// List returns the node ids of records in any of the given states, or all
// records when no state is given, sorted by node id.
func (s *Store) List(statuses ...model.AnnotationStatus) []string {
	ids := make([]string, 0, len(s.records))
	for id, r := range s.records {
		if len(statuses) == 0 || hasStatus(statuses, r.Status) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func hasStatus(set []model.AnnotationStatus, st model.AnnotationStatus) bool {
	for _, s := range set {
		if s == st {
			return true
		}
	}
	return false
}

// Records returns copies of every record sorted by node id.
func (s *Store) Records() []*model.AnnotationRecord {
	out := make([]*model.AnnotationRecord, 0, len(s.records))
	for _, id := range s.List() {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Remove deletes the record for nodeID.
func (s *Store) Remove(nodeID string) bool {
	if _, ok := s.records[nodeID]; !ok {
		return false
	}
	delete(s.records, nodeID)
	s.lastUpdate = model.FormatTimestamp(s.now())
	return true
}

// ClearAll drops every record.
func (s *Store) ClearAll() {
	s.records = make(map[string]*model.AnnotationRecord)
	s.lastUpdate = ""
}

// Summary holds record counts by state.
type Summary struct {
	Total      int    `json:"total_annotations"`
	Pending    int    `json:"pending"`
	Applied    int    `json:"applied"`
	Error      int    `json:"error"`
	LastUpdate string `json:"last_update,omitempty"`
}

// Summary counts records by state.
func (s *Store) Summary() Summary {
	sum := Summary{Total: len(s.records), LastUpdate: s.lastUpdate}
	for _, r := range s.records {
		switch r.Status {
		case model.AnnotationPending:
			sum.Pending++
		case model.AnnotationApplied:
			sum.Applied++
		case model.AnnotationError:
			sum.Error++
		}
	}
	return sum
}

// NodesNeedingStructure returns nodes with no effective structure.
func (s *Store) NodesNeedingStructure(g *graph.Graph) []*model.Node {
	var out []*model.Node
	for _, n := range g.Nodes() {
		if _, ok := s.EffectiveStructure(n, model.KeyEffectiveStructure); !ok {
			out = append(out, n)
		}
	}
	return out
}

// OverlayApplied writes every applied record onto the matching graph node,
// keeping the record's own timestamp. It is used when a graph has been
// reloaded from its source file and the annotation overlay must be
// reinstated. Records whose node is missing are left untouched. It returns
// the ids of nodes written.
func (s *Store) OverlayApplied(g *graph.Graph) []string {
	var written []string
	for _, id := range s.List(model.AnnotationApplied) {
		r := s.records[id]
		at, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			at = s.now()
		}
		if g.ApplyStructureUpdate(id, r.NewStructure, at) {
			written = append(written, id)
		}
	}
	return written
}
