package core

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ModificationDatabase stores modification definitions and the modifications
// expected at each Sprinzl position. A database is not modified once built and
// may be shared between goroutines.
type ModificationDatabase struct {
	mods         map[string]Modification                       // short name -> modification
	expectations map[SprinzlPosition][]PositionModExpectation // position -> expectations, insertion order
	aliases      map[string]string                            // alias -> short name
	source       string
}

func newModificationDatabase(mods map[string]Modification, source string) *ModificationDatabase {
	db := &ModificationDatabase{
		mods:         mods,
		expectations: make(map[SprinzlPosition][]PositionModExpectation),
		aliases:      defaultAliases(),
		source:       source,
	}
	db.loadEukaryoticExpectations()
	return db
}

// defaultAliases maps historical short names to catalog keys. Pseudouridine is
// "Psi" in the built-in catalog and "Y" in MODOMICS, so both directions are listed.
func defaultAliases() map[string]string {
	return map[string]string{
		"Psi": "Y",
		"psi": "Y",
		"Ψ":   "Y",
		"Y":   "Psi",
		"rT":  "m5U",
		"T":   "m5U",
	}
}

// DefaultModDatabase returns a ModificationDatabase pre-loaded with common
// eukaryotic tRNA modifications and position expectations.
func DefaultModDatabase() *ModificationDatabase {
	mods := make(map[string]Modification)
	for _, m := range defaultModifications() {
		mods[m.ShortName] = m
	}
	return newModificationDatabase(mods, "built-in")
}

// Source describes where the modification catalog came from.
func (db *ModificationDatabase) Source() string {
	return db.source
}

// GetModification looks up a modification by short name, then through the
// alias table, and returns a copy. Returns false for unknown names.
func (db *ModificationDatabase) GetModification(name string) (Modification, bool) {
	if m, ok := db.mods[name]; ok {
		return m.Clone(), true
	}
	if target, ok := db.aliases[name]; ok {
		if m, ok := db.mods[target]; ok {
			return m.Clone(), true
		}
	}
	return Modification{}, false
}

// Modifications returns copies of every catalog entry sorted by short name.
func (db *ModificationDatabase) Modifications() []Modification {
	out := make([]Modification, 0, len(db.mods))
	for _, m := range db.mods {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ShortName < out[j].ShortName
	})
	return out
}

// Len returns the number of catalog entries.
func (db *ModificationDatabase) Len() int {
	return len(db.mods)
}

// Aliases returns a copy of the alias table.
func (db *ModificationDatabase) Aliases() map[string]string {
	out := make(map[string]string, len(db.aliases))
	for k, v := range db.aliases {
		out[k] = v
	}
	return out
}

// Expectations returns copies of the expectations at a position in insertion
// order. An empty result means no modification is expected there.
func (db *ModificationDatabase) Expectations(pos SprinzlPosition) []PositionModExpectation {
	var out []PositionModExpectation
	for _, exp := range db.expectations[pos] {
		out = append(out, exp.Clone())
	}
	return out
}

// ExpectationsForIsotype returns the expectations at a position that apply to
// every isotype or list the given one.
func (db *ModificationDatabase) ExpectationsForIsotype(pos SprinzlPosition, isotype Isotype) []PositionModExpectation {
	var out []PositionModExpectation
	for _, exp := range db.expectations[pos] {
		if exp.AppliesTo(isotype) {
			out = append(out, exp.Clone())
		}
	}
	return out
}

// ExpectedPositions returns the positions that carry at least one expectation,
// in canonical table order.
func (db *ModificationDatabase) ExpectedPositions() []SprinzlPosition {
	var out []SprinzlPosition
	seen := make(map[SprinzlPosition]bool)
	for _, pos := range StandardMapper().Positions() {
		if len(db.expectations[pos]) > 0 {
			out = append(out, pos)
			seen[pos] = true
		}
	}
	var extra []SprinzlPosition
	for pos := range db.expectations {
		if !seen[pos] {
			extra = append(extra, pos)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// Validate checks that no modification lists its genomic base as incompatible
// and that every modification referenced by an expectation resolves by name.
func (db *ModificationDatabase) Validate() error {
	var errs []string

	check := func(where string, m Modification) {
		if !m.IsCompatible(m.GenomicExpectation) {
			errs = append(errs, fmt.Sprintf("%s: %s lists its genomic base %s as incompatible", where, m.ShortName, m.GenomicExpectation))
		}
	}

	for _, m := range db.Modifications() {
		check("catalog", m)
	}
	for _, pos := range db.ExpectedPositions() {
		for _, exp := range db.expectations[pos] {
			for _, m := range exp.Modifications {
				check("position "+string(pos), m)
				if _, ok := db.GetModification(m.ShortName); !ok {
					errs = append(errs, fmt.Sprintf("position %s: %s is not in the catalog", pos, m.ShortName))
				}
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "ModificationDatabase",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

func (db *ModificationDatabase) addExpectation(exp PositionModExpectation) {
	db.expectations[exp.Position] = append(db.expectations[exp.Position], exp)
}

// expect adds an expectation for a single modification if the catalog has it.
func (db *ModificationDatabase) expect(name string, pos int, level ConservationLevel, role FunctionalRole, isotypes ...Isotype) {
	m, ok := db.GetModification(name)
	if !ok {
		return
	}
	db.addExpectation(PositionModExpectation{
		Position:       PositionFromNum(pos),
		Modifications:  []Modification{m},
		Conservation:   level,
		FunctionalRole: role,
		Isotypes:       isotypes,
	})
}

// loadEukaryoticExpectations installs the fixed eukaryotic position table.
// Entries whose modification is missing from the catalog are skipped.
func (db *ModificationDatabase) loadEukaryoticExpectations() {
	// D-loop dihydrouridines
	for _, pos := range []int{16, 17, 20} {
		db.expect("D", pos, Universal, StructuralStability)
	}

	db.expect("Cm", 32, IsotypeSpecific, AnticodonFunction, IsotypePhe, IsotypeTrp)

	// Wobble position
	db.expect("I", 34, IsotypeSpecific, AnticodonFunction,
		IsotypeAla, IsotypeArg, IsotypeIle, IsotypeLeu, IsotypePro, IsotypeSer, IsotypeThr, IsotypeVal)
	db.expect("Q", 34, IsotypeSpecific, AnticodonFunction,
		IsotypeAsn, IsotypeAsp, IsotypeHis, IsotypeTyr)

	// 3' of the anticodon
	db.expect("t6A", 37, DomainSpecific, AnticodonFunction,
		IsotypeIle, IsotypeLys, IsotypeAsn, IsotypeSer, IsotypeThr)
	db.expect("i6A", 37, IsotypeSpecific, AnticodonFunction,
		IsotypeCys, IsotypeSer, IsotypeTrp)
	db.expect("m1G", 37, IsotypeSpecific, AnticodonFunction,
		IsotypeAla, IsotypeArg, IsotypeLeu, IsotypePro)

	db.expect("m7G", 46, Universal, StructuralStability)
	db.expect("m5C", 48, DomainSpecific, StructuralStability)
	db.expect("m5U", 54, Universal, StructuralStability)
	db.expect("Psi", 55, Universal, StructuralStability)
	db.expect("m1A", 58, Universal, StructuralStability)
}

func defaultModifications() []Modification {
	return []Modification{
		{
			Name:               "pseudouridine",
			ShortName:          "Psi",
			Code:               Unicode('Ψ'),
			AltCodes:           []ModCode{SingleChar('Y')},
			ParentBase:         BaseU,
			GenomicExpectation: BaseU,
			IncompatibleBases:  incompatibleWith(BaseU),
			ChEBIID:            17802,
			UnicodeGlyph:       'Ψ',
		},
		{
			Name:               "dihydrouridine",
			ShortName:          "D",
			Code:               SingleChar('D'),
			ParentBase:         BaseU,
			GenomicExpectation: BaseU,
			IncompatibleBases:  incompatibleWith(BaseU),
			ChEBIID:            15802,
			UnicodeGlyph:       'D',
		},
		{
			Name:               "5-methyluridine",
			ShortName:          "m5U",
			Code:               ShortName("m5U"),
			AltCodes:           []ModCode{SingleChar('T')},
			ParentBase:         BaseU,
			GenomicExpectation: BaseU,
			IncompatibleBases:  incompatibleWith(BaseU),
			ChEBIID:            16695,
			UnicodeGlyph:       'T',
		},
		{
			Name:               "1-methyladenosine",
			ShortName:          "m1A",
			Code:               ShortName("m1A"),
			ParentBase:         BaseA,
			GenomicExpectation: BaseA,
			IncompatibleBases:  incompatibleWith(BaseA),
			ChEBIID:            21837,
			UnicodeGlyph:       '"',
		},
		{
			Name:               "1-methylguanosine",
			ShortName:          "m1G",
			Code:               ShortName("m1G"),
			ParentBase:         BaseG,
			GenomicExpectation: BaseG,
			IncompatibleBases:  incompatibleWith(BaseG),
			ChEBIID:            21836,
			UnicodeGlyph:       'K',
		},
		{
			Name:               "N6-threonylcarbamoyladenosine",
			ShortName:          "t6A",
			Code:               ShortName("t6A"),
			ParentBase:         BaseA,
			GenomicExpectation: BaseA,
			IncompatibleBases:  incompatibleWith(BaseA),
			ChEBIID:            20817,
			UnicodeGlyph:       '6',
		},
		{
			Name:               "N6-isopentenyladenosine",
			ShortName:          "i6A",
			Code:               ShortName("i6A"),
			ParentBase:         BaseA,
			GenomicExpectation: BaseA,
			IncompatibleBases:  incompatibleWith(BaseA),
			ChEBIID:            17588,
			UnicodeGlyph:       '+',
		},
		{
			// A-to-I editing at the wobble position
			Name:               "inosine",
			ShortName:          "I",
			Code:               SingleChar('I'),
			ParentBase:         BaseA,
			GenomicExpectation: BaseA,
			IncompatibleBases:  incompatibleWith(BaseA),
			ChEBIID:            17596,
			UnicodeGlyph:       'I',
		},
		{
			Name:               "queuosine",
			ShortName:          "Q",
			Code:               SingleChar('Q'),
			ParentBase:         BaseG,
			GenomicExpectation: BaseG,
			IncompatibleBases:  incompatibleWith(BaseG),
			ChEBIID:            17399,
			UnicodeGlyph:       'Q',
		},
		{
			Name:               "2'-O-methylcytidine",
			ShortName:          "Cm",
			Code:               ShortName("Cm"),
			ParentBase:         BaseC,
			GenomicExpectation: BaseC,
			IncompatibleBases:  incompatibleWith(BaseC),
			ChEBIID:            19228,
			UnicodeGlyph:       'B',
		},
		{
			Name:               "5-methylcytidine",
			ShortName:          "m5C",
			Code:               ShortName("m5C"),
			ParentBase:         BaseC,
			GenomicExpectation: BaseC,
			IncompatibleBases:  incompatibleWith(BaseC),
			ChEBIID:            27480,
			UnicodeGlyph:       '?',
		},
		{
			Name:               "7-methylguanosine",
			ShortName:          "m7G",
			Code:               ShortName("m7G"),
			ParentBase:         BaseG,
			GenomicExpectation: BaseG,
			IncompatibleBases:  incompatibleWith(BaseG),
			ChEBIID:            2274,
			UnicodeGlyph:       '7',
		},
	}
}
