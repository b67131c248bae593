package jsonout

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
	"github.com/ChrisMcGann/trnakey/pkg/core"
)

func sampleResults() []analysis.ModCompatibilityResult {
	return []analysis.ModCompatibilityResult{
		{
			Hit: core.TRNAHit{
				ID: "t1", SeqName: "chr1", Start: 10, End: 81, Strand: core.StrandMinus,
				Score: 60.25, Isotype: "Ala", Anticodon: "AGC", Sequence: "GGGGAAUU", Structure: "GGGG-AAUU",
			},
			SprinzlAlignment: map[core.SprinzlPosition]int{"1": 0, "2": 1, "20a": 5},
			Incompatibilities: []analysis.ModificationIncompatibility{
				{Position: "34", ObservedBase: core.BaseG, ExpectedModName: "I", Severity: analysis.Major},
				{Position: "55", ObservedBase: core.BaseC, ExpectedModName: "Psi", Severity: analysis.Critical},
			},
			IsOdd:              true,
			CompatibilityScore: 0.5,
		},
		{
			Hit:                core.TRNAHit{ID: "t2", Start: 1, End: 4, Strand: core.StrandPlus, Sequence: "ACGU"},
			SprinzlAlignment:   map[core.SprinzlPosition]int{},
			CompatibilityScore: 1,
		},
	}
}

func TestResultsRoundTrip(t *testing.T) {
	want := sampleResults()

	var buf bytes.Buffer
	if err := WriteResults(&buf, want); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"severity": "critical"`) {
		t.Errorf("severity should be written by name:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `"observed_base": "G"`) {
		t.Errorf("observed base should be written as a letter:\n%s", buf.String())
	}

	got, err := ReadResults(&buf)
	if err != nil {
		t.Fatalf("ReadResults() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadResults() = %+v, want %+v", got, want)
	}
}

func TestWriteResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, nil); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("WriteResults(nil) = %q, want []", buf.String())
	}
}

func TestReadResultsInvalid(t *testing.T) {
	tests := []string{
		`{"hit":{}}`,
		`[{"incompatibilities":[{"severity":"fatal"}]}]`,
		`[{"hit":{"strand":"?"}}]`,
	}
	for _, input := range tests {
		if _, err := ReadResults(strings.NewReader(input)); err == nil {
			t.Errorf("ReadResults(%s) should fail", input)
		}
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	batch := analysis.Summarize(sampleResults())
	want := NewSummary(batch, "run-1", "built-in")

	if want.TotalTRNAs != 2 || want.OddTRNAs != 1 {
		t.Fatalf("NewSummary() totals = %d/%d, want 2/1", want.TotalTRNAs, want.OddTRNAs)
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, want); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	got, err := ReadSummary(&buf)
	if err != nil {
		t.Fatalf("ReadSummary() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadSummary() = %+v, want %+v", got, want)
	}
}
