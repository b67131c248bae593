// Package core provides modification definitions and position expectations
package core

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Modification is a chemical modification of a tRNA nucleotide.
type Modification struct {
	Name               string    // Full name (e.g., "pseudouridine")
	ShortName          string    // Unique key (e.g., "Psi", "m1A")
	Code               ModCode   // Primary code
	AltCodes           []ModCode // Alternate codes for lookup/display
	ParentBase         RnaBase   // Nucleotide the modification is derived from
	GenomicExpectation RnaBase   // Base expected in unmodified genomic sequence
	IncompatibleBases  []RnaBase // Observing any of these rules the modification out
	ChEBIID            uint32    // 0 if unknown
	UnicodeGlyph       rune      // 0 if unknown

	// Optional MODOMICS metadata
	Formula string
	MassAvg float64
}

// IsCompatible reports whether the observed base allows this modification.
func (m Modification) IsCompatible(observed RnaBase) bool {
	return !slices.Contains(m.IncompatibleBases, observed)
}

// IsExpected reports whether the observed base is the unmodified genomic base.
func (m Modification) IsExpected(observed RnaBase) bool {
	return observed == m.GenomicExpectation
}

// Clone returns a deep copy of the modification.
func (m Modification) Clone() Modification {
	m.AltCodes = slices.Clone(m.AltCodes)
	m.IncompatibleBases = slices.Clone(m.IncompatibleBases)
	return m
}

// Codes returns the primary code followed by the alternates, formatted.
func (m Modification) Codes() string {
	parts := []string{m.Code.String()}
	for _, c := range m.AltCodes {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

// incompatibleWith returns every canonical base except parent.
func incompatibleWith(parent RnaBase) []RnaBase {
	var out []RnaBase
	for _, b := range AllBases {
		if b != parent {
			out = append(out, b)
		}
	}
	return out
}

// ConservationLevel describes how broadly a position/modification pairing is observed.
type ConservationLevel uint8

const (
	Universal ConservationLevel = iota
	DomainSpecific
	IsotypeSpecific
	Rare
)

var conservationNames = []string{"Universal", "DomainSpecific", "IsotypeSpecific", "Rare"}

func (c ConservationLevel) String() string {
	if int(c) < len(conservationNames) {
		return conservationNames[c]
	}
	return fmt.Sprintf("ConservationLevel(%d)", uint8(c))
}

// MarshalText encodes the level by name.
func (c ConservationLevel) MarshalText() ([]byte, error) {
	if int(c) >= len(conservationNames) {
		return nil, fmt.Errorf("invalid conservation level %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a level name.
func (c *ConservationLevel) UnmarshalText(text []byte) error {
	i := slices.Index(conservationNames, string(text))
	if i < 0 {
		return fmt.Errorf("invalid conservation level %q", text)
	}
	*c = ConservationLevel(i)
	return nil
}

// FunctionalRole is the biological role of a modification at a position.
type FunctionalRole uint8

const (
	AnticodonFunction FunctionalRole = iota
	StructuralStability
	AminoacylationIdentity
	UnknownRole
)

var roleNames = []string{"AnticodonFunction", "StructuralStability", "AminoacylationIdentity", "Unknown"}

func (r FunctionalRole) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("FunctionalRole(%d)", uint8(r))
}

// PositionModExpectation lists the modifications expected at a Sprinzl position.
// Any one of Modifications satisfies the expectation. An empty Isotypes set means
// the expectation applies to every isotype.
type PositionModExpectation struct {
	Position       SprinzlPosition
	Modifications  []Modification
	Conservation   ConservationLevel
	FunctionalRole FunctionalRole
	Isotypes       []Isotype
}

// AppliesTo reports whether the expectation covers the given isotype.
func (e PositionModExpectation) AppliesTo(isotype Isotype) bool {
	return len(e.Isotypes) == 0 || slices.Contains(e.Isotypes, isotype)
}

// Clone returns a deep copy of the expectation.
func (e PositionModExpectation) Clone() PositionModExpectation {
	mods := make([]Modification, len(e.Modifications))
	for i, m := range e.Modifications {
		mods[i] = m.Clone()
	}
	e.Modifications = mods
	e.Isotypes = slices.Clone(e.Isotypes)
	return e
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
