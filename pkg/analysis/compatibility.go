// Package analysis checks tRNA hits against the modifications expected at their
// Sprinzl positions.
package analysis

import (
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/ChrisMcGann/trnakey/pkg/core"
)

// Severity grades an incompatibility.
type Severity uint8

const (
	Critical Severity = iota
	Major
	Minor
)

var severityNames = []string{"critical", "major", "minor"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	if int(s) >= len(severityNames) {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity converts "critical", "major" or "minor" to a Severity.
func ParseSeverity(name string) (Severity, error) {
	i := slices.Index(severityNames, name)
	if i < 0 {
		return 0, fmt.Errorf("invalid severity %q, must be critical, major or minor", name)
	}
	return Severity(i), nil
}

// SeverityFor derives the severity of a contradicted expectation from its
// conservation level.
func SeverityFor(level core.ConservationLevel) Severity {
	switch level {
	case core.Universal:
		return Critical
	case core.DomainSpecific, core.IsotypeSpecific:
		return Major
	}
	return Minor
}

// ModificationIncompatibility records an observed base that rules out an
// expected modification.
type ModificationIncompatibility struct {
	Position        core.SprinzlPosition `json:"position"`
	ObservedBase    core.RnaBase         `json:"observed_base"`
	ExpectedModName string               `json:"expected_mod"`
	Severity        Severity             `json:"severity"`
}

// ModCompatibilityResult is the analysis of one hit.
type ModCompatibilityResult struct {
	Hit                core.TRNAHit                  `json:"hit"`
	SprinzlAlignment   map[core.SprinzlPosition]int  `json:"sprinzl_alignment"`
	Incompatibilities  []ModificationIncompatibility `json:"incompatibilities"`
	IsOdd              bool                          `json:"is_odd"`
	CompatibilityScore float64                       `json:"compatibility_score"`
}

// HasSeverity reports whether any incompatibility is at least as severe as s.
func (r *ModCompatibilityResult) HasSeverity(s Severity) bool {
	for _, inc := range r.Incompatibilities {
		if inc.Severity <= s {
			return true
		}
	}
	return false
}

// Analyzer runs the compatibility check against one modification database.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	db     *core.ModificationDatabase
	mapper *core.SprinzlMapper
}

// NewAnalyzer creates an analyzer. A nil mapper selects the standard Sprinzl table.
func NewAnalyzer(db *core.ModificationDatabase, mapper *core.SprinzlMapper) *Analyzer {
	if db == nil {
		db = core.DefaultModDatabase()
	}
	if mapper == nil {
		mapper = core.StandardMapper()
	}
	return &Analyzer{db: db, mapper: mapper}
}

// Database returns the modification database used by the analyzer.
func (a *Analyzer) Database() *core.ModificationDatabase {
	return a.db
}

// SprinzlAlignment maps a hit onto Sprinzl positions. The structure string is
// used as the alignment when present; otherwise sequence index i is taken to be
// table column i.
func (a *Analyzer) SprinzlAlignment(hit *core.TRNAHit) map[core.SprinzlPosition]int {
	if hit.Structure != "" {
		return a.mapper.MapAlignment(hit.Structure)
	}
	return a.mapper.MapUngapped(utf8.RuneCountInString(hit.Sequence))
}

// Analyze checks every mapped position of the hit against the modifications
// expected there and computes the compatibility score. Positions with an
// unreadable base or no expectation are skipped.
func (a *Analyzer) Analyze(hit core.TRNAHit) ModCompatibilityResult {
	alignment := a.SprinzlAlignment(&hit)
	isotype, hasIsotype := core.ParseIsotype(hit.Isotype)

	// Alignment indices count characters, not bytes
	seq := []rune(hit.Sequence)

	var (
		incompatibilities []ModificationIncompatibility
		checked           int
		compatible        int
	)

	// Canonical order keeps the incompatibility list deterministic.
	for _, pos := range a.mapper.Positions() {
		seqIdx, ok := alignment[pos]
		if !ok || seqIdx >= len(seq) || seq[seqIdx] > unicode.MaxASCII {
			continue
		}
		observed, ok := core.BaseFromDNAChar(byte(seq[seqIdx]))
		if !ok {
			continue
		}

		var expectations []core.PositionModExpectation
		if hasIsotype {
			expectations = a.db.ExpectationsForIsotype(pos, isotype)
		} else {
			expectations = a.db.Expectations(pos)
		}
		if len(expectations) == 0 {
			continue
		}
		checked++

		positionCompatible := false
	expectationLoop:
		for _, exp := range expectations {
			for _, mod := range exp.Modifications {
				if mod.IsCompatible(observed) {
					positionCompatible = true
					break expectationLoop
				}
				incompatibilities = append(incompatibilities, ModificationIncompatibility{
					Position:        pos,
					ObservedBase:    observed,
					ExpectedModName: mod.ShortName,
					Severity:        SeverityFor(exp.Conservation),
				})
			}
		}
		if positionCompatible {
			compatible++
		}
	}

	score := 1.0
	if checked > 0 {
		score = float64(compatible) / float64(checked)
	}

	result := ModCompatibilityResult{
		Hit:                hit,
		SprinzlAlignment:   alignment,
		Incompatibilities:  incompatibilities,
		CompatibilityScore: score,
	}
	result.IsOdd = score < 1.0 && result.HasSeverity(Major)
	return result
}
