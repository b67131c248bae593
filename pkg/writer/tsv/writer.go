// Package tsv writes compatibility reports as tab-separated text
package tsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
)

// Header is the column list of the TSV report.
var Header = []string{
	"id", "seq_name", "start", "end", "strand", "score", "isotype", "anticodon",
	"is_odd", "compatibility_score", "incompatibilities",
}

// Writer streams results as TSV rows
type Writer struct {
	cw          *csv.Writer
	wroteHeader bool
	header      bool
}

// NewWriter creates a TSV writer. When header is true the column names are
// written before the first row.
func NewWriter(w io.Writer, header bool) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &Writer{cw: cw, header: header}
}

// WriteResult writes a single row
func (w *Writer) WriteResult(r *analysis.ModCompatibilityResult) error {
	if w.header && !w.wroteHeader {
		if err := w.cw.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		w.wroteHeader = true
	}
	if err := w.cw.Write(Row(r)); err != nil {
		return fmt.Errorf("failed to write row for %s: %w", r.Hit.ID, err)
	}
	return nil
}

// Flush flushes buffered rows and reports any write error
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// Row formats a result as TSV fields in Header order
func Row(r *analysis.ModCompatibilityResult) []string {
	hit := &r.Hit
	return []string{
		hit.ID,
		hit.SeqName,
		strconv.Itoa(hit.Start),
		strconv.Itoa(hit.End),
		hit.Strand.String(),
		strconv.FormatFloat(hit.Score, 'f', -1, 64),
		hit.Isotype,
		hit.Anticodon,
		strconv.FormatBool(r.IsOdd),
		strconv.FormatFloat(r.CompatibilityScore, 'f', 4, 64),
		FormatIncompatibilities(r.Incompatibilities),
	}
}

// FormatIncompatibilities renders findings as "position:base:mod:severity"
// joined by ';', or "." when there are none
func FormatIncompatibilities(incs []analysis.ModificationIncompatibility) string {
	if len(incs) == 0 {
		return "."
	}
	parts := make([]string, len(incs))
	for i, inc := range incs {
		parts[i] = fmt.Sprintf("%s:%s:%s:%s", inc.Position, inc.ObservedBase, inc.ExpectedModName, inc.Severity)
	}
	return strings.Join(parts, ";")
}

// WriteResults writes a header followed by one row per result
func WriteResults(w io.Writer, results []analysis.ModCompatibilityResult) error {
	tw := NewWriter(w, true)
	for i := range results {
		if err := tw.WriteResult(&results[i]); err != nil {
			return err
		}
	}
	if len(results) == 0 {
		if err := tw.cw.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	return tw.Flush()
}
