package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/chemnet/internal/model"
)

// LegacyFileName is the unscoped annotation file used when no project is active.
const LegacyFileName = "smiles_annotations.json"

const projectsDir = "projects"

var (
	// ErrProjectNotFound is returned when no file exists for a project name.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNameCollision is returned when a project name maps to the file of
	// a differently named project.
	ErrNameCollision = errors.New("project name collides with an existing project")
)

// projectFile is the on-disk form of a project.
type projectFile struct {
	ProjectName     string                             `json:"project_name,omitempty"`
	Annotations     map[string]*model.AnnotationRecord `json:"annotations"`
	AnnotationCount int                                `json:"annotation_count"`
	LastUpdate      string                             `json:"last_update,omitempty"`
	CreatedAt       string                             `json:"created_at,omitempty"`
	SavedAt         string                             `json:"saved_at"`
	GraphMLSource   string                             `json:"graphml_source,omitempty"`
}

// projectHeader is decoded when listing projects; records are counted, not parsed.
type projectHeader struct {
	ProjectName   string                     `json:"project_name"`
	Annotations   map[string]json.RawMessage `json:"annotations"`
	SavedAt       string                     `json:"saved_at"`
	GraphMLSource string                     `json:"graphml_source"`
}

// Project returns the active project context set by SaveProject or LoadProject.
func (s *Store) Project() (name, sourceGraph string, ok bool) {
	return s.project, s.sourceGraph, s.project != ""
}

// SetProject sets the active project context without touching disk.
func (s *Store) SetProject(name, sourceGraph string) {
	s.project = name
	s.sourceGraph = sourceGraph
}

// ProjectPath returns the file a project is stored in. Files are namespaced
// by source graph so equally named projects of different graphs never
// overwrite one another.
func (s *Store) ProjectPath(name, sourceGraph string) string {
	return filepath.Join(s.dir, projectsDir, slug(sourceGraph), slug(name)+".json")
}

// SaveProject writes every record to the project's file, replacing any
// previous version, and makes it the active project. Names that map to the
// file of a differently named project are rejected. In-memory records are
// kept whatever happens on disk.
func (s *Store) SaveProject(name, sourceGraph string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("save project: empty project name")
	}
	path := s.ProjectPath(name, sourceGraph)

	created := ""
	if prev, err := readProjectFile(path); err == nil {
		if prev.ProjectName != "" && prev.ProjectName != name {
			s.logger.Error("save project failed", "project", name, "path", path, "existing", prev.ProjectName)
			return "", fmt.Errorf("save project %s: %w: file %s holds project %q", name, ErrNameCollision, path, prev.ProjectName)
		}
		created = prev.CreatedAt
	}
	now := model.FormatTimestamp(s.now())
	if created == "" {
		created = now
	}

	pf := s.snapshot()
	pf.ProjectName = name
	pf.GraphMLSource = sourceGraph
	pf.CreatedAt = created
	pf.SavedAt = now

	if err := writeJSONFile(path, pf); err != nil {
		s.logger.Error("save project failed", "project", name, "source_graph", sourceGraph, "err", err)
		return "", fmt.Errorf("save project %s: %w", name, err)
	}
	s.project = name
	s.sourceGraph = sourceGraph
	s.logger.Info("project saved", "project", name, "path", path, "annotations", pf.AnnotationCount)
	return path, nil
}

// LoadProject merges the records of the named project into the store and
// makes it the active project. If several source graphs hold a project of
// that name, the most recently saved one wins. On any failure the in-memory
// records are left as they were.
func (s *Store) LoadProject(name string) error {
	return s.LoadProjectFor(name, "")
}

// LoadProjectFor is LoadProject scoped to one source graph: only that
// graph's file for the project is read. An empty sourceGraph searches every
// graph.
func (s *Store) LoadProjectFor(name, sourceGraph string) error {
	var matches []string
	if sourceGraph != "" {
		matches = []string{s.ProjectPath(name, sourceGraph)}
	} else {
		matches, _ = filepath.Glob(filepath.Join(s.dir, projectsDir, "*", slug(name)+".json"))
	}

	var (
		best       *projectFile
		bestPath   string
		unreadable bool
	)
	for _, path := range matches {
		pf, err := readProjectFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			s.logger.Warn("skipping unreadable project file", "path", path, "err", err)
			unreadable = true
			continue
		}
		if pf.ProjectName != "" && pf.ProjectName != name {
			continue
		}
		if best == nil || savedTime(pf.SavedAt).After(savedTime(best.SavedAt)) {
			best, bestPath = pf, path
		}
	}
	if best == nil {
		if !unreadable {
			s.logger.Warn("project not found", "project", name, "source_graph", sourceGraph)
			return fmt.Errorf("load project %s: %w", name, ErrProjectNotFound)
		}
		s.logger.Error("load project failed", "project", name, "err", "no readable file")
		return fmt.Errorf("load project %s: no readable project file", name)
	}

	s.merge(best)
	s.project = name
	if best.ProjectName != "" {
		s.project = best.ProjectName
	}
	s.sourceGraph = best.GraphMLSource
	if s.sourceGraph == "" {
		s.sourceGraph = sourceGraph
	}
	s.logger.Info("project loaded", "project", s.project, "path", bestPath, "annotations", len(best.Annotations))
	return nil
}

// ListProjects scans the project directory and describes every readable
// project file, newest first. Corrupt files are logged and skipped.
func (s *Store) ListProjects() []model.ProjectInfo {
	matches, err := filepath.Glob(filepath.Join(s.dir, projectsDir, "*", "*.json"))
	if err != nil {
		s.logger.Error("list projects failed", "err", err)
		return nil
	}

	var out []model.ProjectInfo
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable project file", "path", path, "err", err)
			continue
		}
		var h projectHeader
		if err := json.Unmarshal(data, &h); err != nil {
			s.logger.Warn("skipping corrupt project file", "path", path, "err", err)
			continue
		}
		name := h.ProjectName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		out = append(out, model.ProjectInfo{
			Name:            name,
			SourceGraph:     h.GraphMLSource,
			AnnotationCount: len(h.Annotations),
			SavedAt:         h.SavedAt,
			Path:            path,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := savedTime(out[i].SavedAt), savedTime(out[j].SavedAt)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// savedTime parses a saved_at value; unparseable values sort as oldest.
func savedTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LegacyPath returns the unscoped annotation file path.
func (s *Store) LegacyPath() string {
	return filepath.Join(s.dir, LegacyFileName)
}

// SaveLegacy writes every record to the unscoped annotation file.
func (s *Store) SaveLegacy() (string, error) {
	path := s.LegacyPath()
	pf := s.snapshot()
	pf.SavedAt = model.FormatTimestamp(s.now())
	if err := writeJSONFile(path, pf); err != nil {
		s.logger.Error("save annotations failed", "path", path, "err", err)
		return "", fmt.Errorf("save annotations: %w", err)
	}
	return path, nil
}

// LoadLegacy merges records from the unscoped annotation file.
func (s *Store) LoadLegacy() error {
	path := s.LegacyPath()
	pf, err := readProjectFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load annotations: %w", ErrProjectNotFound)
		}
		s.logger.Error("load annotations failed", "path", path, "err", err)
		return fmt.Errorf("load annotations: %w", err)
	}
	s.merge(pf)
	return nil
}

func (s *Store) snapshot() *projectFile {
	records := make(map[string]*model.AnnotationRecord, len(s.records))
	for id, r := range s.records {
		records[id] = r
	}
	return &projectFile{
		Annotations:     records,
		AnnotationCount: len(records),
		LastUpdate:      s.lastUpdate,
	}
}

func (s *Store) merge(pf *projectFile) {
	for id, r := range pf.Annotations {
		if r == nil {
			continue
		}
		if r.NodeID == "" {
			r.NodeID = id
		}
		if r.Metadata == nil {
			r.Metadata = map[string]any{}
		}
		s.records[id] = r
	}
	if pf.LastUpdate != "" {
		s.lastUpdate = pf.LastUpdate
	}
}

func readProjectFile(path string) (*projectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &pf, nil
}

// writeJSONFile writes v to a temporary sibling and renames it into place,
// so a failed write never truncates the existing file.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// slug makes a name safe to use as a single path element.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "default"
	}
	return out
}
