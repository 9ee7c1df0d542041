package linkgen

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alfredjeanlab/chemnet/internal/model"
)

func newTestGenerator() *Generator {
	return New(DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func node(id string, props map[string]string) *model.Node {
	n := model.NewNode(id, id, model.NodeMolecule)
	for k, v := range props {
		n.Properties.Set(k, model.String(v))
	}
	return n
}

func edgeWithAdduct(adduct string) *model.Edge {
	e := model.NewEdge("m1", "m2", model.EdgeInteraction)
	e.Properties.Set(model.KeyAdduct, model.String(adduct))
	return e
}

func TestCanGenerate_TruthTable(t *testing.T) {
	g := newTestGenerator()
	for mask := 0; mask < 16; mask++ {
		primaryID := mask&1 != 0
		neighborID := mask&2 != 0
		adduct := mask&4 != 0
		structure := mask&8 != 0

		primary := node("m1", nil)
		neighbor := node("m2", nil)
		if primaryID {
			primary.Properties.Set(model.KeyAnalyticalID, model.String("abc"))
		} else {
			primary.Properties.Set(model.KeyAnalyticalID, model.String("  "))
		}
		if neighborID {
			neighbor.Properties.Set(model.KeyAnalyticalID, model.String("xyz"))
		}
		var edge *model.Edge
		if adduct {
			edge = edgeWithAdduct("[M+H]+")
		}
		s := ""
		if structure {
			s = "CCO"
		}

		want := primaryID && neighborID && adduct && structure
		if got := g.CanGenerate(primary, neighbor, s, edge); got != want {
			t.Errorf("mask %04b: CanGenerate() = %v, want %v", mask, got, want)
		}
		if _, ok := g.Generate(primary, neighbor, s, edge); ok != want {
			t.Errorf("mask %04b: Generate() ok = %v, want %v", mask, ok, want)
		}
	}
}

func TestCheck_ReasonOrder(t *testing.T) {
	g := newTestGenerator()
	full := func() (*model.Node, *model.Node) {
		return node("m1", map[string]string{model.KeyAnalyticalID: "abc", model.KeyAdduct: "[M+H]+"}),
			node("m2", map[string]string{model.KeyAnalyticalID: "xyz"})
	}

	p, n := full()
	if r := g.Check(p, n, "C", nil); r != Eligible {
		t.Fatalf("Check() = %q, want eligible", r)
	}

	p, n = full()
	p.Properties.Delete(model.KeyAnalyticalID)
	n.Properties.Delete(model.KeyAnalyticalID)
	if r := g.Check(p, n, "", nil); r != ReasonPrimaryAnalyticalID {
		t.Errorf("Check() = %q, want %q", r, ReasonPrimaryAnalyticalID)
	}

	p, n = full()
	n.Properties.Delete(model.KeyAnalyticalID)
	if r := g.Check(p, n, "", nil); r != ReasonNeighborAnalyticalID {
		t.Errorf("Check() = %q, want %q", r, ReasonNeighborAnalyticalID)
	}

	p, n = full()
	if r := g.Check(p, n, "C", edgeWithAdduct("")); r != ReasonMissingAdduct {
		t.Errorf("blank edge adduct: Check() = %q, want %q", r, ReasonMissingAdduct)
	}

	p, n = full()
	if r := g.Check(p, n, " \n ", nil); r != ReasonMissingStructure {
		t.Errorf("Check() = %q, want %q", r, ReasonMissingStructure)
	}
}

func TestResolveAdduct(t *testing.T) {
	p := node("m1", map[string]string{model.KeyAdduct: "[M+Na]+"})
	for _, tc := range []struct {
		name     string
		edge     *model.Edge
		want     string
		wantFrom string
	}{
		{"NoEdge", nil, "[M+Na]+", "node"},
		{"EdgeWithout", model.NewEdge("m1", "m2", model.EdgeOther), "[M+Na]+", "node"},
		{"EdgeWins", edgeWithAdduct("[M+H]+"), "[M+H]+", "edge"},
		{"BlankEdge", edgeWithAdduct(""), "", "edge"},
	} {
		got, from := ResolveAdduct(p, tc.edge)
		if got != tc.want || from != tc.wantFrom {
			t.Errorf("%s: ResolveAdduct() = %q, %q; want %q, %q", tc.name, got, from, tc.want, tc.wantFrom)
		}
	}
}

func TestNormalizeAdduct(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"[M+H]+ Adduct", "[m+h]1+"},
		{"[M+2H]2+ Adduct", "[m+2h]21+"},
		{"[M+Na]+", "[m+na]1+"},
		{"  [M + H] +  ", "[m+h]1+"},
		{"ADDUCT [M-H]-", "[m-h]-"},
		{"[M+H]+adduct", "[m+h]1+"},
	} {
		got := NormalizeAdduct(tc.in)
		if got != tc.want {
			t.Errorf("NormalizeAdduct(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if strings.ContainsAny(got, " \t\n") || strings.Contains(strings.ToLower(got), "adduct") {
			t.Errorf("NormalizeAdduct(%q) = %q still has whitespace or the word adduct", tc.in, got)
		}
	}
}

func TestGenerate_Scenario(t *testing.T) {
	g := newTestGenerator()
	m1 := node("m1", map[string]string{model.KeyAnalyticalID: "abc"})
	m2 := node("m2", map[string]string{model.KeyAnalyticalID: "xyz"})

	got, ok := g.Generate(m1, m2, "CCO", edgeWithAdduct("[M+H]+ Adduct"))
	if !ok {
		t.Fatal("Generate returned false")
	}
	want := "https://modifinder.gnps2.org/" +
		"?USI1=mzspec:GNPS2:TASK-43ab1bb3ce8d468a8dce177763c0ffb1-input_spectra/abc" +
		"&USI2=mzspec:GNPS2:TASK-43ab1bb3ce8d468a8dce177763c0ffb1-input_spectra/xyz" +
		"&Helpers=&Adduct=[m+h]1+&ppm_tolerance=40&filter_peaks_variable=0.01&SMILES1=CCO"
	if got != want {
		t.Errorf("Generate() =\n  %s\nwant\n  %s", got, want)
	}

	again, _ := g.Generate(m1, m2, "CCO", edgeWithAdduct("[M+H]+ Adduct"))
	if again != got {
		t.Error("Generate is not deterministic")
	}
}

func TestGenerate_Options(t *testing.T) {
	g := newTestGenerator()
	m1 := node("m1", map[string]string{model.KeyAnalyticalID: "abc", model.KeyAdduct: "[M+H]+"})
	m2 := node("m2", map[string]string{model.KeyAnalyticalID: "xyz"})

	got, ok := g.Generate(m1, m2, "C\nC\nO\n", nil, WithTolerance(10), WithFilterThreshold(0.5))
	if !ok {
		t.Fatal("Generate returned false")
	}
	if !strings.Contains(got, "&ppm_tolerance=10&filter_peaks_variable=0.5&") {
		t.Errorf("options not applied: %s", got)
	}
	if !strings.HasSuffix(got, "&SMILES1=CCO") {
		t.Errorf("newlines not stripped: %s", got)
	}
}

func TestAnalyticalRef_Config(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Protocol = "mzspec"
	cfg.Provider = "MSV"
	cfg.TaskID = "t1"
	g := New(cfg, nil)
	if got := g.AnalyticalRef("scan:7"); got != "mzspec:MSV:TASK-t1-input_spectra/scan:7" {
		t.Errorf("AnalyticalRef() = %q", got)
	}
	if g.Config() != cfg {
		t.Error("Config() mismatch")
	}
}

func TestFormatFloat(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{0.01, "0.01"},
		{1, "1.0"},
		{0, "0.0"},
		{2.5, "2.5"},
		{0.00001, "1e-05"},
	} {
		if got := formatFloat(tc.in); got != tc.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
