// Package linkgen decides whether two connected nodes qualify for a
// spectrum comparison link and builds that link.
package linkgen

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/chemnet/internal/model"
)

// Config holds the constants of the downstream viewer's URL grammar.
type Config struct {
	BaseURL         string
	Protocol        string
	Provider        string
	TaskID          string
	PPMTolerance    int
	FilterThreshold float64
}

// DefaultConfig returns the viewer settings used when no profile is loaded.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://modifinder.gnps2.org/",
		Protocol:        "mzspec",
		Provider:        "GNPS2",
		TaskID:          "43ab1bb3ce8d468a8dce177763c0ffb1",
		PPMTolerance:    40,
		FilterThreshold: 0.01,
	}
}

// Reason names the first eligibility criterion a pair fails.
type Reason string

const (
	Eligible                   Reason = ""
	ReasonPrimaryAnalyticalID  Reason = "primary_missing_analytical_id"
	ReasonNeighborAnalyticalID Reason = "neighbor_missing_analytical_id"
	ReasonMissingAdduct        Reason = "missing_adduct"
	ReasonMissingStructure     Reason = "missing_structure"
)

// Generator builds derived links. It holds no mutable state.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a generator.
func New(cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Config returns the generator's settings.
func (g *Generator) Config() Config {
	return g.cfg
}

// Check returns Eligible when a link can be generated from primary to
// neighbor, otherwise the first failing criterion in this order: primary
// analytical id, neighbor analytical id, adduct, structure.
func (g *Generator) Check(primary, neighbor *model.Node, structure string, edge *model.Edge) Reason {
	switch {
	case primary.AnalyticalID() == "":
		return ReasonPrimaryAnalyticalID
	case neighbor.AnalyticalID() == "":
		return ReasonNeighborAnalyticalID
	}
	if adduct, _ := ResolveAdduct(primary, edge); strings.TrimSpace(adduct) == "" {
		return ReasonMissingAdduct
	}
	if strings.TrimSpace(structure) == "" {
		return ReasonMissingStructure
	}
	return Eligible
}

// CanGenerate reports whether all four eligibility criteria hold.
func (g *Generator) CanGenerate(primary, neighbor *model.Node, structure string, edge *model.Edge) bool {
	return g.Check(primary, neighbor, structure, edge) == Eligible
}

// ResolveAdduct returns the adduct for a pair: the edge's when an edge is
// given and carries the property (even if blank), otherwise the primary
// node's. The second result reports where it came from.
func ResolveAdduct(primary *model.Node, edge *model.Edge) (string, string) {
	if edge != nil && edge.Properties.Has(model.KeyAdduct) {
		return edge.Properties.Text(model.KeyAdduct), "edge"
	}
	return primary.Properties.Text(model.KeyAdduct), "node"
}

// AnalyticalRef wraps a raw analytical id in the configured namespace:
// <protocol>:<provider>:TASK-<task>-input_spectra/<raw>.
func (g *Generator) AnalyticalRef(raw string) string {
	return fmt.Sprintf("%s:%s:TASK-%s-input_spectra/%s", g.cfg.Protocol, g.cfg.Provider, g.cfg.TaskID, raw)
}

var (
	adductNoise = regexp.MustCompile(`\s+|adduct`)
	lastPlus    = regexp.MustCompile(`\+([^+]*)$`)
)

// NormalizeAdduct lowercases s, strips whitespace and the word "adduct",
// then inserts "1" before the final "+".
func NormalizeAdduct(s string) string {
	clean := adductNoise.ReplaceAllString(strings.ToLower(s), "")
	return lastPlus.ReplaceAllString(clean, "1+$1")
}

// Option adjusts a single Generate call.
type Option func(*params)

type params struct {
	ppm    int
	filter float64
}

// WithTolerance overrides the ppm tolerance.
func WithTolerance(ppm int) Option {
	return func(p *params) { p.ppm = ppm }
}

// WithFilterThreshold overrides the peak filter threshold.
func WithFilterThreshold(f float64) Option {
	return func(p *params) { p.filter = f }
}

// Generate builds the comparison link for primary and neighbor. It returns
// false when the pair is ineligible or the link cannot be built.
func (g *Generator) Generate(primary, neighbor *model.Node, structure string, edge *model.Edge, opts ...Option) (link string, ok bool) {
	if reason := g.Check(primary, neighbor, structure, edge); reason != Eligible {
		adduct, from := ResolveAdduct(primary, edge)
		g.logger.Debug("link not generated",
			"reason", string(reason),
			"primary", primary.ID,
			"neighbor", neighbor.ID,
			"primary_analytical_id", primary.AnalyticalID(),
			"neighbor_analytical_id", neighbor.AnalyticalID(),
			"adduct", adduct,
			"adduct_from", from,
			"structure_blank", strings.TrimSpace(structure) == "",
		)
		return "", false
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("link generation failed", "primary", primary.ID, "neighbor", neighbor.ID, "err", fmt.Sprint(r))
			link, ok = "", false
		}
	}()

	p := params{ppm: g.cfg.PPMTolerance, filter: g.cfg.FilterThreshold}
	for _, opt := range opts {
		opt(&p)
	}

	rawAdduct, _ := ResolveAdduct(primary, edge)
	cleanStructure := strings.TrimSpace(strings.ReplaceAll(structure, "\n", ""))

	var b strings.Builder
	b.WriteString(g.cfg.BaseURL)
	b.WriteString("?USI1=")
	b.WriteString(g.AnalyticalRef(primary.Properties.Text(model.KeyAnalyticalID)))
	b.WriteString("&USI2=")
	b.WriteString(g.AnalyticalRef(neighbor.Properties.Text(model.KeyAnalyticalID)))
	b.WriteString("&Helpers=")
	b.WriteString("&Adduct=")
	b.WriteString(NormalizeAdduct(rawAdduct))
	b.WriteString("&ppm_tolerance=")
	b.WriteString(strconv.Itoa(p.ppm))
	b.WriteString("&filter_peaks_variable=")
	b.WriteString(formatFloat(p.filter))
	b.WriteString("&SMILES1=")
	b.WriteString(cleanStructure)

	return b.String(), true
}

// formatFloat renders f the way the viewer's existing links do: always with
// a fractional part, switching to exponent form outside [1e-4, 1e16).
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
