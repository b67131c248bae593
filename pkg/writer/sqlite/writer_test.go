package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
	"github.com/ChrisMcGann/trnakey/pkg/core"
)

func sampleResults() []analysis.ModCompatibilityResult {
	return []analysis.ModCompatibilityResult{
		{
			Hit: core.TRNAHit{
				ID: "t1", SeqName: "chr1", Start: 10, End: 81, Strand: core.StrandPlus,
				Score: 60, Isotype: "Ala", Anticodon: "AGC", Sequence: "GGGGAAUU",
			},
			SprinzlAlignment: map[core.SprinzlPosition]int{"1": 0, "2": 1, "3": 2},
			Incompatibilities: []analysis.ModificationIncompatibility{
				{Position: "34", ObservedBase: core.BaseG, ExpectedModName: "I", Severity: analysis.Major},
				{Position: "55", ObservedBase: core.BaseC, ExpectedModName: "Psi", Severity: analysis.Critical},
			},
			IsOdd:              true,
			CompatibilityScore: 0.5,
		},
		{
			Hit: core.TRNAHit{
				ID: "t2", SeqName: "chr2", Start: 90, End: 20, Strand: core.StrandMinus, Sequence: "ACGU",
			},
			SprinzlAlignment:   map[core.SprinzlPosition]int{},
			CompatibilityScore: 1,
		},
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")

	w, err := NewWriter(path, "built-in")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := uuid.Parse(w.RunID()); err != nil {
		t.Errorf("RunID() = %q is not a UUID: %v", w.RunID(), err)
	}
	runID := w.RunID()

	results := sampleResults()
	for i := range results {
		if err := w.WriteResult(&results[i]); err != nil {
			t.Fatalf("WriteResult() error = %v", err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var hits, incs, odd int
	if err := db.QueryRow(`SELECT COUNT(*) FROM HitTable WHERE RunId = ?`, runID).Scan(&hits); err != nil {
		t.Fatalf("count hits: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM IncompatibilityTable WHERE RunId = ?`, runID).Scan(&incs); err != nil {
		t.Fatalf("count incompatibilities: %v", err)
	}
	if err := db.QueryRow(`SELECT NoofOddHits FROM MaintenanceTable WHERE RunId = ?`, runID).Scan(&odd); err != nil {
		t.Fatalf("read maintenance: %v", err)
	}
	if hits != 2 || incs != 2 || odd != 1 {
		t.Errorf("hits/incompatibilities/odd = %d/%d/%d, want 2/2/1", hits, incs, odd)
	}

	var (
		strand   string
		severity string
		blob     []byte
	)
	if err := db.QueryRow(`SELECT Strand, blobSprinzl FROM HitTable WHERE ExternalId = 't1'`).Scan(&strand, &blob); err != nil {
		t.Fatalf("read hit: %v", err)
	}
	if strand != "+" {
		t.Errorf("Strand = %q, want +", strand)
	}
	alignment, err := DecodeSprinzl(blob)
	if err != nil {
		t.Fatalf("DecodeSprinzl() error = %v", err)
	}
	if len(alignment) != 3 || alignment["3"] != 2 {
		t.Errorf("DecodeSprinzl() = %v, want the three written columns", alignment)
	}

	if err := db.QueryRow(`SELECT Severity FROM IncompatibilityTable WHERE Position = '55'`).Scan(&severity); err != nil {
		t.Fatalf("read incompatibility: %v", err)
	}
	if severity != "critical" {
		t.Errorf("Severity = %q, want critical", severity)
	}
}

func TestDecodeSprinzlRejectsShortBlob(t *testing.T) {
	if _, err := DecodeSprinzl([]byte{1, 2, 3}); err == nil {
		t.Error("DecodeSprinzl() should reject a truncated blob")
	}
}

func TestEncodeSprinzlLength(t *testing.T) {
	blob := encodeSprinzl(nil)
	if len(blob) != core.StandardMapper().Len()*4 {
		t.Errorf("encodeSprinzl() length = %d, want %d", len(blob), core.StandardMapper().Len()*4)
	}
	decoded, err := DecodeSprinzl(blob)
	if err != nil || len(decoded) != 0 {
		t.Errorf("DecodeSprinzl(empty) = %v, %v", decoded, err)
	}
}

func TestCloseAbandonsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abandoned.db")

	w, err := NewWriter(path, "built-in")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	results := sampleResults()
	if err := w.WriteResult(&results[0]); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Finalize(); err == nil {
		t.Error("Finalize() after Close() should fail")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	tests := []struct {
		table string
		want  int
	}{
		{"HitTable", 1},
		{"HeaderTable", 0},
		{"MaintenanceTable", 0},
	}
	for _, tt := range tests {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM ` + tt.table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", tt.table, err)
		}
		if n != tt.want {
			t.Errorf("%s rows = %d, want %d", tt.table, n, tt.want)
		}
	}
}

func TestFinalizeClosesOnError(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "broken.db"), "built-in")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := w.db.Exec(`DROP TABLE HeaderTable`); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	if err := w.Finalize(); err == nil {
		t.Fatal("Finalize() should fail without HeaderTable")
	}
	if err := w.db.Ping(); err == nil {
		t.Error("database should be closed after a failed Finalize()")
	}
}
