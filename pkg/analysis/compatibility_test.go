package analysis

import (
	"strings"
	"testing"

	"github.com/ChrisMcGann/trnakey/pkg/core"
)

// Ungapped sequence indices of selected positions in the standard table.
const (
	col16 = 15
	col34 = 36
	col37 = 39
	col55 = 76
)

// probeSequence returns an unreadable sequence of length n with base placed at idx.
func probeSequence(n, idx int, base byte) string {
	b := []byte(strings.Repeat("N", n))
	b[idx] = base
	return string(b)
}

func testHit(id, sequence string) core.TRNAHit {
	return core.TRNAHit{
		ID:       id,
		SeqName:  "chr1",
		Start:    1000,
		End:      1076,
		Strand:   core.StrandPlus,
		Score:    80,
		Sequence: sequence,
	}
}

func TestAnalyzeCompatiblePsi55(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)
	r := a.Analyze(testHit("a", probeSequence(77, col55, 'U')))

	if r.SprinzlAlignment["55"] != col55 {
		t.Errorf("SprinzlAlignment[55] = %d, want %d", r.SprinzlAlignment["55"], col55)
	}
	if r.CompatibilityScore != 1.0 {
		t.Errorf("CompatibilityScore = %v, want 1.0", r.CompatibilityScore)
	}
	if r.IsOdd {
		t.Error("IsOdd = true, want false")
	}
	if len(r.Incompatibilities) != 0 {
		t.Errorf("Incompatibilities = %+v, want none", r.Incompatibilities)
	}
}

func TestAnalyzeIncompatiblePsi55(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)
	r := a.Analyze(testHit("b", probeSequence(77, col55, 'A')))

	if r.CompatibilityScore != 0.0 {
		t.Errorf("CompatibilityScore = %v, want 0.0", r.CompatibilityScore)
	}
	if !r.IsOdd {
		t.Error("IsOdd = false, want true")
	}
	if len(r.Incompatibilities) != 1 {
		t.Fatalf("Incompatibilities = %+v, want one", r.Incompatibilities)
	}
	want := ModificationIncompatibility{Position: "55", ObservedBase: core.BaseA, ExpectedModName: "Psi", Severity: Critical}
	if r.Incompatibilities[0] != want {
		t.Errorf("Incompatibilities[0] = %+v, want %+v", r.Incompatibilities[0], want)
	}
}

func TestAnalyzeMultiByteCharacters(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)

	// One multi-byte character ahead of position 55 must not shift later lookups
	seq := "Ψ" + strings.Repeat("N", col55-1) + "A"
	r := a.Analyze(testHit("mb", seq))

	if got := r.SprinzlAlignment["55"]; got != col55 {
		t.Errorf("SprinzlAlignment[55] = %d, want %d", got, col55)
	}
	if r.CompatibilityScore != 0.0 {
		t.Errorf("CompatibilityScore = %v, want 0.0", r.CompatibilityScore)
	}
	if len(r.Incompatibilities) != 1 || r.Incompatibilities[0].Position != "55" || r.Incompatibilities[0].ObservedBase != core.BaseA {
		t.Errorf("Incompatibilities = %+v, want A at 55", r.Incompatibilities)
	}

	// A multi-byte character at a checked position is unreadable
	seq = strings.Repeat("N", col55) + "Ψ"
	r = a.Analyze(testHit("mb-skip", seq))
	if r.CompatibilityScore != 1.0 || len(r.Incompatibilities) != 0 {
		t.Errorf("Analyze() = %v %+v, want position 55 skipped", r.CompatibilityScore, r.Incompatibilities)
	}
}

func TestAnalyzeUsesStructure(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)

	// One leading gap column shifts every residue down by one sequence index.
	hit := testHit("s", probeSequence(76, col55-1, 'G'))
	hit.Structure = "-" + strings.Repeat("<", 76)
	r := a.Analyze(hit)

	if got := r.SprinzlAlignment["55"]; got != col55-1 {
		t.Errorf("SprinzlAlignment[55] = %d, want %d", got, col55-1)
	}
	if _, ok := r.SprinzlAlignment["1"]; ok {
		t.Error("gap column 1 should not be mapped")
	}
	if !r.IsOdd || r.CompatibilityScore != 0 {
		t.Errorf("IsOdd = %v, score = %v, want odd with score 0", r.IsOdd, r.CompatibilityScore)
	}
}

func TestAnalyzeVacuous(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)

	tests := []struct {
		name string
		hit  core.TRNAHit
	}{
		{"empty structure, short sequence", testHit("v1", "GCGGAUUUA")},
		{"only ambiguous bases", testHit("v2", strings.Repeat("N", 90))},
		{"structure of gaps only", func() core.TRNAHit {
			h := testHit("v3", "GCGGA")
			h.Structure = strings.Repeat("-", 80)
			return h
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := a.Analyze(tt.hit)
			if r.CompatibilityScore != 1.0 || r.IsOdd {
				t.Errorf("score = %v, odd = %v, want 1.0, false", r.CompatibilityScore, r.IsOdd)
			}
		})
	}
}

func TestAnalyzeIsotype(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)

	tests := []struct {
		name      string
		isotype   string
		idx       int
		base      byte
		wantScore float64
		wantOdd   bool
		wantMods  []string
	}{
		{"inosine needs A for Ala", "Ala", col34, 'G', 0, true, []string{"I"}},
		{"lower-case isotype resolves", "ala", col34, 'G', 0, true, []string{"I"}},
		{"Ala wobble A is fine", "Ala", col34, 'A', 1, false, nil},
		{"no wobble expectation for Gly", "Gly", col34, 'G', 1, false, nil},
		{"Ser 37 alternatives both fail", "Ser", col37, 'G', 0, true, []string{"t6A", "i6A"}},
		{"first compatible alternative stops", "Ser", col37, 'A', 1, false, nil},
		{"no isotype uses every expectation", "", col37, 'G', 1, false, []string{"t6A", "i6A"}},
		{"dihydrouridine for any isotype", "Gly", col16, 'C', 0, true, []string{"D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := testHit(tt.name, probeSequence(77, tt.idx, tt.base))
			hit.Isotype = tt.isotype
			r := a.Analyze(hit)

			if r.CompatibilityScore != tt.wantScore {
				t.Errorf("CompatibilityScore = %v, want %v", r.CompatibilityScore, tt.wantScore)
			}
			if r.IsOdd != tt.wantOdd {
				t.Errorf("IsOdd = %v, want %v", r.IsOdd, tt.wantOdd)
			}
			var mods []string
			for _, inc := range r.Incompatibilities {
				mods = append(mods, inc.ExpectedModName)
			}
			if strings.Join(mods, ",") != strings.Join(tt.wantMods, ",") {
				t.Errorf("incompatible mods = %v, want %v", mods, tt.wantMods)
			}
		})
	}
}

func TestAnalyzeMixedPositions(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)

	seq := []byte(probeSequence(77, col55, 'U'))
	seq[col16] = 'C' // D expected, universal
	r := a.Analyze(testHit("m", string(seq)))

	if r.CompatibilityScore != 0.5 {
		t.Errorf("CompatibilityScore = %v, want 0.5", r.CompatibilityScore)
	}
	if !r.IsOdd {
		t.Error("IsOdd = false, want true")
	}
	if r.Incompatibilities[0].Position != "16" {
		t.Errorf("first incompatibility at %s, want 16", r.Incompatibilities[0].Position)
	}
}

func TestAnalyzeDNASequence(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)
	r := a.Analyze(testHit("dna", probeSequence(77, col55, 't')))
	if r.CompatibilityScore != 1.0 || r.IsOdd {
		t.Errorf("lower-case T at 55: score = %v, odd = %v", r.CompatibilityScore, r.IsOdd)
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		level core.ConservationLevel
		want  Severity
	}{
		{core.Universal, Critical},
		{core.DomainSpecific, Major},
		{core.IsotypeSpecific, Major},
		{core.Rare, Minor},
	}

	for _, tt := range tests {
		for i := 0; i < 3; i++ {
			if got := SeverityFor(tt.level); got != tt.want {
				t.Errorf("SeverityFor(%v) = %v, want %v", tt.level, got, tt.want)
			}
		}
	}
}

func TestHasSeverity(t *testing.T) {
	r := ModCompatibilityResult{Incompatibilities: []ModificationIncompatibility{{Severity: Minor}}}
	if r.HasSeverity(Major) {
		t.Error("minor-only result should not report Major")
	}
	if !r.HasSeverity(Minor) {
		t.Error("HasSeverity(Minor) = false")
	}
}

func TestParseSeverity(t *testing.T) {
	for _, name := range []string{"critical", "major", "minor"} {
		s, err := ParseSeverity(name)
		if err != nil || s.String() != name {
			t.Errorf("ParseSeverity(%s) = %v, %v", name, s, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("ParseSeverity(fatal) should fail")
	}
}
