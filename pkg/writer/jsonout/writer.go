// Package jsonout writes and reads compatibility reports as JSON
package jsonout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
	"github.com/ChrisMcGann/trnakey/pkg/core"
)

// Summary is the batch-level part of a report
type Summary struct {
	RunID                string                       `json:"run_id,omitempty"`
	ModSource            string                       `json:"mod_source"`
	TotalTRNAs           int                          `json:"total_trnas"`
	OddTRNAs             int                          `json:"odd_trnas"`
	AverageCompatibility float64                      `json:"average_compatibility"`
	BySeverity           map[analysis.Severity]int    `json:"incompatibilities_by_severity"`
	ByPosition           map[core.SprinzlPosition]int `json:"incompatibilities_by_position"`
}

// NewSummary extracts the summary statistics of a batch
func NewSummary(batch *analysis.BatchResult, runID, modSource string) Summary {
	return Summary{
		RunID:                runID,
		ModSource:            modSource,
		TotalTRNAs:           batch.TotalTRNAs,
		OddTRNAs:             batch.OddTRNAs,
		AverageCompatibility: core.RoundFloat(batch.AverageCompatibility, 6),
		BySeverity:           batch.BySeverity,
		ByPosition:           batch.ByPosition,
	}
}

// encodePretty writes v as indented JSON
func encodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteResults writes results as an indented JSON array. A nil slice is
// written as an empty array.
func WriteResults(w io.Writer, results []analysis.ModCompatibilityResult) error {
	if results == nil {
		results = []analysis.ModCompatibilityResult{}
	}
	if err := encodePretty(w, results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// ReadResults reads a JSON array written by WriteResults
func ReadResults(r io.Reader) ([]analysis.ModCompatibilityResult, error) {
	var results []analysis.ModCompatibilityResult
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}

// WriteSummary writes the batch summary as indented JSON
func WriteSummary(w io.Writer, s Summary) error {
	if err := encodePretty(w, s); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// ReadSummary reads a summary written by WriteSummary
func ReadSummary(r io.Reader) (Summary, error) {
	var s Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Summary{}, fmt.Errorf("failed to read summary: %w", err)
	}
	return s, nil
}
