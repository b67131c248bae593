// Package core provides the tRNA hit model and validation logic used by trnakey.
package core

import (
	"fmt"
	"strings"
)

// TRNAHit is one tRNA detected in genomic sequence.
type TRNAHit struct {
	ID        string  `json:"id"`
	SeqName   string  `json:"seq_name"`
	Start     int     `json:"start"` // 1-based, inclusive
	End       int     `json:"end"`   // 1-based, inclusive
	Strand    Strand  `json:"strand"`
	Score     float64 `json:"score"`
	Isotype   string  `json:"isotype,omitempty"`
	Anticodon string  `json:"anticodon,omitempty"`
	Sequence  string  `json:"sequence"`
	Structure string  `json:"structure"` // gapped alignment/structure string, may be empty
}

// ValidationError represents an error found during record validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a hit is structurally usable for analysis.
func (h *TRNAHit) Validate() error {
	var errs []string

	if h.ID == "" {
		errs = append(errs, "id is required")
	}
	if h.Sequence == "" {
		errs = append(errs, "sequence is required")
	}
	if h.Start <= 0 || h.End <= 0 {
		errs = append(errs, "start and end must be positive")
	}
	if h.Strand != StrandPlus && h.Strand != StrandMinus {
		errs = append(errs, "strand must be '+' or '-'")
	}
	if h.Anticodon != "" && len(h.Anticodon) != 3 {
		errs = append(errs, fmt.Sprintf("anticodon %q is not a triplet", h.Anticodon))
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "TRNAHit " + h.Name(),
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Length returns the genomic span of the hit.
func (h *TRNAHit) Length() int {
	if h.End >= h.Start {
		return h.End - h.Start + 1
	}
	return h.Start - h.End + 1
}

// Name returns the hit label in format "ID (seq:start-end)"
func (h *TRNAHit) Name() string {
	if h.SeqName == "" {
		return h.ID
	}
	return fmt.Sprintf("%s (%s:%d-%d)", h.ID, h.SeqName, h.Start, h.End)
}
