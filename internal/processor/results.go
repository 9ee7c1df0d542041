package processor

import (
	"github.com/alfredjeanlab/chemnet/internal/idgen"
	"github.com/alfredjeanlab/chemnet/internal/linkgen"
)

// SkipCounts breaks down edges that produced no link by cause.
type SkipCounts struct {
	UnresolvedNeighbor          int `json:"unresolved_neighbor"`
	PrimaryMissingAnalyticalID  int `json:"primary_missing_analytical_id"`
	NeighborMissingAnalyticalID int `json:"neighbor_missing_analytical_id"`
	MissingAdduct               int `json:"missing_adduct"`
	MissingStructure            int `json:"missing_structure"`
}

// Total returns the number of skipped edges.
func (s SkipCounts) Total() int {
	return s.UnresolvedNeighbor + s.PrimaryMissingAnalyticalID + s.NeighborMissingAnalyticalID +
		s.MissingAdduct + s.MissingStructure
}

// Map returns the non-zero counts keyed by reason.
func (s SkipCounts) Map() map[string]int {
	m := make(map[string]int)
	for k, v := range map[string]int{
		"unresolved_neighbor":                      s.UnresolvedNeighbor,
		string(linkgen.ReasonPrimaryAnalyticalID):  s.PrimaryMissingAnalyticalID,
		string(linkgen.ReasonNeighborAnalyticalID): s.NeighborMissingAnalyticalID,
		string(linkgen.ReasonMissingAdduct):        s.MissingAdduct,
		string(linkgen.ReasonMissingStructure):     s.MissingStructure,
	} {
		if v > 0 {
			m[k] = v
		}
	}
	return m
}

func (s *SkipCounts) count(reason linkgen.Reason) {
	switch reason {
	case linkgen.ReasonPrimaryAnalyticalID:
		s.PrimaryMissingAnalyticalID++
	case linkgen.ReasonNeighborAnalyticalID:
		s.NeighborMissingAnalyticalID++
	case linkgen.ReasonMissingAdduct:
		s.MissingAdduct++
	case linkgen.ReasonMissingStructure:
		s.MissingStructure++
	}
}

func (s *SkipCounts) add(o SkipCounts) {
	s.UnresolvedNeighbor += o.UnresolvedNeighbor
	s.PrimaryMissingAnalyticalID += o.PrimaryMissingAnalyticalID
	s.NeighborMissingAnalyticalID += o.NeighborMissingAnalyticalID
	s.MissingAdduct += o.MissingAdduct
	s.MissingStructure += o.MissingStructure
}

// Results summarises one processor run for display.
type Results struct {
	RunID string `json:"run_id"`

	// Processed counts annotations applied, or nodes walked in bulk mode.
	Processed    int      `json:"processed"`
	Errors       []string `json:"errors"`
	NodesUpdated []string `json:"nodes_updated"`

	// LinksCreated counts links written to edges. Links regenerated with
	// the value already on the edge are counted in LinksUnchanged instead.
	LinksCreated   int        `json:"links_created"`
	LinksUnchanged int        `json:"links_unchanged"`
	EdgesUpdated   []string   `json:"edges_updated"`
	EdgeErrors     []string   `json:"edge_errors"`
	Skipped        SkipCounts `json:"skipped"`

	Saved       bool   `json:"saved"`
	SavePath    string `json:"save_path,omitempty"`
	SaveError   string `json:"save_error,omitempty"`
	MirrorError string `json:"mirror_error,omitempty"`
}

func newResults() *Results {
	return &Results{
		RunID:        idgen.MustRun(),
		Errors:       []string{},
		NodesUpdated: []string{},
		EdgesUpdated: []string{},
		EdgeErrors:   []string{},
	}
}

// edgeTally is the outcome of one node's edge walk.
type edgeTally struct {
	created   int
	unchanged int
	edges     []string
	errors    []string
	skipped   SkipCounts
}

func (r *Results) addTally(t *edgeTally) {
	r.LinksCreated += t.created
	r.LinksUnchanged += t.unchanged
	r.EdgesUpdated = append(r.EdgesUpdated, t.edges...)
	r.EdgeErrors = append(r.EdgeErrors, t.errors...)
	r.Skipped.add(t.skipped)
}
