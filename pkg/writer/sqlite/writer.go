// Package sqlite provides SQLite database writing for compatibility reports
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
	"github.com/ChrisMcGann/trnakey/pkg/core"
)

const (
	// Date format for RunTable and HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable
	maintenanceDateFormat = "2006 01 02"
	// Schema version written to HeaderTable
	schemaVersion = 1
	// Marks a Sprinzl column with no mapped residue in blobSprinzl
	unmappedColumn = -1
)

// Writer handles writing analysis results to SQLite database files
type Writer struct {
	db         *sql.DB
	outputPath string
	runID      string
	hitStmt    *sql.Stmt
	incStmt    *sql.Stmt
	hitID      int
	oddCount   int
	closed     bool
}

// NewWriter creates a new SQLite writer and records a run row. modSource
// names the modification catalog the results were computed against.
func NewWriter(outputPath, modSource string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
		hitID:      1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.insertRun(modSource); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the identifier shared by every row this writer produces
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		CreationDate TEXT,
		ModSource TEXT,
		SprinzlColumns INTEGER
	);

	CREATE TABLE IF NOT EXISTS HitTable (
		HitId INTEGER,
		RunId TEXT REFERENCES RunTable(RunId),
		ExternalId TEXT,
		SeqName TEXT,
		StartPos INTEGER,
		EndPos INTEGER,
		Strand TEXT,
		Score DOUBLE,
		Isotype TEXT,
		Anticodon TEXT,
		Sequence TEXT,
		Structure TEXT,
		CompatibilityScore DOUBLE,
		IsOdd BOOL,
		blobSprinzl BLOB,
		PRIMARY KEY (RunId, HitId)
	);

	CREATE TABLE IF NOT EXISTS IncompatibilityTable (
		RunId TEXT REFERENCES RunTable(RunId),
		HitId INTEGER,
		Position TEXT,
		ObservedBase TEXT,
		ExpectedMod TEXT,
		Severity TEXT
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		RunId TEXT,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		RunId TEXT,
		CreationDate TEXT,
		NoofHitsWritten INTEGER,
		NoofOddHits INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

func (w *Writer) insertRun(modSource string) error {
	_, err := w.db.Exec(`
		INSERT INTO RunTable (RunId, CreationDate, ModSource, SprinzlColumns)
		VALUES (?, ?, ?, ?)
	`, w.runID, time.Now().Format(headerDateFormat), modSource, core.StandardMapper().Len())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.hitStmt, err = w.db.Prepare(`
		INSERT INTO HitTable (
			HitId, RunId, ExternalId, SeqName, StartPos, EndPos, Strand, Score,
			Isotype, Anticodon, Sequence, Structure, CompatibilityScore,
			IsOdd, blobSprinzl
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare hit statement: %w", err)
	}

	w.incStmt, err = w.db.Prepare(`
		INSERT INTO IncompatibilityTable (
			RunId, HitId, Position, ObservedBase, ExpectedMod, Severity
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare incompatibility statement: %w", err)
	}

	return nil
}

// WriteResult writes a single analysis result to the database
func (w *Writer) WriteResult(r *analysis.ModCompatibilityResult) error {
	hit := &r.Hit
	sprinzl := encodeSprinzl(r.SprinzlAlignment)

	_, err := w.hitStmt.Exec(
		w.hitID,              // HitId
		w.runID,              // RunId
		hit.ID,               // ExternalId
		hit.SeqName,          // SeqName
		hit.Start,            // StartPos
		hit.End,              // EndPos
		hit.Strand.String(),  // Strand
		hit.Score,            // Score
		hit.Isotype,          // Isotype
		hit.Anticodon,        // Anticodon
		hit.Sequence,         // Sequence
		hit.Structure,        // Structure
		r.CompatibilityScore, // CompatibilityScore
		r.IsOdd,              // IsOdd
		sprinzl,              // blobSprinzl
	)
	if err != nil {
		return fmt.Errorf("failed to insert hit %s: %w", hit.ID, err)
	}

	for _, inc := range r.Incompatibilities {
		_, err := w.incStmt.Exec(
			w.runID,
			w.hitID,
			string(inc.Position),
			inc.ObservedBase.String(),
			inc.ExpectedModName,
			inc.Severity.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert incompatibility for hit %s: %w", hit.ID, err)
		}
	}

	if r.IsOdd {
		w.oddCount++
	}
	w.hitID++
	return nil
}

// encodeSprinzl encodes the alignment as little-endian int32 sequence indices,
// one per column of the standard table, with -1 for unmapped columns
func encodeSprinzl(alignment map[core.SprinzlPosition]int) []byte {
	positions := core.StandardMapper().Positions()
	buf := make([]byte, len(positions)*4)
	for i, pos := range positions {
		idx := unmappedColumn
		if v, ok := alignment[pos]; ok {
			idx = v
		}
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(idx)))
	}
	return buf
}

// DecodeSprinzl reverses encodeSprinzl
func DecodeSprinzl(blob []byte) (map[core.SprinzlPosition]int, error) {
	positions := core.StandardMapper().Positions()
	if len(blob) != len(positions)*4 {
		return nil, fmt.Errorf("sprinzl blob has %d bytes, want %d", len(blob), len(positions)*4)
	}

	out := make(map[core.SprinzlPosition]int)
	for i, pos := range positions {
		idx := int(int32(binary.LittleEndian.Uint32(blob[i*4:])))
		if idx != unmappedColumn {
			out[pos] = idx
		}
	}
	return out, nil
}

// Finalize writes the header and maintenance tables and closes the database.
// The database is closed even when the summary rows cannot be written.
func (w *Writer) Finalize() error {
	if w.closed {
		return fmt.Errorf("writer for %s is already closed", w.outputPath)
	}

	if err := w.writeSummaryRows(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (w *Writer) writeSummaryRows() error {
	written := w.hitID - 1
	description := fmt.Sprintf("%d hits analyzed, %d odd", written, w.oddCount)

	// Write HeaderTable
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, RunId, CreationDate, LastModifiedDate, Description)
		VALUES (?, ?, ?, ?, ?)
	`, schemaVersion, w.runID, time.Now().Format(headerDateFormat), time.Now().Format(headerDateFormat), description)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Write MaintenanceTable
	_, err = w.db.Exec(`
		INSERT INTO MaintenanceTable (RunId, CreationDate, NoofHitsWritten, NoofOddHits, Description)
		VALUES (?, ?, ?, ?, ?)
	`, w.runID, time.Now().Format(maintenanceDateFormat), written, w.oddCount, description)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	return nil
}

// Close closes the prepared statements and the database without writing the
// header and maintenance rows. Use it to abandon a run; calling it again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	// Close prepared statements
	if w.hitStmt != nil {
		w.hitStmt.Close()
	}
	if w.incStmt != nil {
		w.incStmt.Close()
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
