// Package core provides the nucleotide, modification and tRNA structure models
// used by trnakey.
package core

import (
	"fmt"
	"strings"
)

// RnaBase is one of the four canonical RNA nucleotides.
type RnaBase uint8

const (
	BaseA RnaBase = iota
	BaseC
	BaseG
	BaseU
)

// AllBases lists the canonical bases in alphabetical order.
var AllBases = []RnaBase{BaseA, BaseC, BaseG, BaseU}

// BaseFromDNAChar converts a DNA or RNA letter to an RnaBase (T and U both map to U).
// Matching is case-insensitive. Any other character reports false.
func BaseFromDNAChar(c byte) (RnaBase, bool) {
	switch c {
	case 'A', 'a':
		return BaseA, true
	case 'C', 'c':
		return BaseC, true
	case 'G', 'g':
		return BaseG, true
	case 'T', 't', 'U', 'u':
		return BaseU, true
	}
	return 0, false
}

// ParseBase converts a one-letter string to an RnaBase.
func ParseBase(s string) (RnaBase, bool) {
	if len(s) != 1 {
		return 0, false
	}
	return BaseFromDNAChar(s[0])
}

// Char returns the RNA letter for the base.
func (b RnaBase) Char() byte {
	switch b {
	case BaseA:
		return 'A'
	case BaseC:
		return 'C'
	case BaseG:
		return 'G'
	case BaseU:
		return 'U'
	}
	return '?'
}

// DNAChar returns the DNA letter for the base (U -> T).
func (b RnaBase) DNAChar() byte {
	if b == BaseU {
		return 'T'
	}
	return b.Char()
}

// Complement returns the Watson-Crick partner of the base.
func (b RnaBase) Complement() RnaBase {
	switch b {
	case BaseA:
		return BaseU
	case BaseC:
		return BaseG
	case BaseG:
		return BaseC
	}
	return BaseA
}

func (b RnaBase) String() string {
	return string(b.Char())
}

// MarshalText encodes the base as its RNA letter.
func (b RnaBase) MarshalText() ([]byte, error) {
	if b > BaseU {
		return nil, fmt.Errorf("invalid base %d", uint8(b))
	}
	return []byte{b.Char()}, nil
}

// UnmarshalText decodes a one-letter base.
func (b *RnaBase) UnmarshalText(text []byte) error {
	base, ok := ParseBase(string(text))
	if !ok {
		return fmt.Errorf("invalid base %q", text)
	}
	*b = base
	return nil
}

// ModCodeKind discriminates the variants of a ModCode.
type ModCodeKind uint8

const (
	CodeSingleChar ModCodeKind = iota // one-letter code, e.g. D
	CodeUnicode                       // MODOMICS glyph, e.g. Ψ
	CodeChEBI                         // ChEBI ontology ID
	CodeShortName                     // multi-character name, e.g. m1A
)

// ModCode is a display/lookup code for a modification. Only the field matching
// Kind is meaningful.
type ModCode struct {
	Kind  ModCodeKind
	Char  rune
	ChEBI uint32
	Name  string
}

// SingleChar returns a one-letter code.
func SingleChar(c rune) ModCode { return ModCode{Kind: CodeSingleChar, Char: c} }

// Unicode returns a MODOMICS glyph code.
func Unicode(c rune) ModCode { return ModCode{Kind: CodeUnicode, Char: c} }

// ChEBI returns a ChEBI cross-reference code.
func ChEBI(id uint32) ModCode { return ModCode{Kind: CodeChEBI, ChEBI: id} }

// ShortName returns a multi-character code.
func ShortName(name string) ModCode { return ModCode{Kind: CodeShortName, Name: name} }

func (c ModCode) String() string {
	switch c.Kind {
	case CodeSingleChar, CodeUnicode:
		return string(c.Char)
	case CodeChEBI:
		return fmt.Sprintf("CHEBI:%d", c.ChEBI)
	case CodeShortName:
		return c.Name
	}
	return ""
}

// Strand is the genomic orientation of a hit.
type Strand byte

const (
	StrandPlus  Strand = '+'
	StrandMinus Strand = '-'
)

// ParseStrand converts "+" or "-" to a Strand.
func ParseStrand(s string) (Strand, error) {
	switch strings.TrimSpace(s) {
	case "+":
		return StrandPlus, nil
	case "-":
		return StrandMinus, nil
	}
	return 0, fmt.Errorf("invalid strand %q, expected '+' or '-'", s)
}

func (s Strand) String() string {
	return string(s)
}

// MarshalText encodes the strand as "+" or "-".
func (s Strand) MarshalText() ([]byte, error) {
	if s != StrandPlus && s != StrandMinus {
		return nil, fmt.Errorf("invalid strand %q", byte(s))
	}
	return []byte{byte(s)}, nil
}

// UnmarshalText decodes "+" or "-".
func (s *Strand) UnmarshalText(text []byte) error {
	parsed, err := ParseStrand(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Isotype is the amino-acid identity of a tRNA, e.g. "Ala" or "iMet".
type Isotype string

// Standard isotypes
const (
	IsotypeAla   Isotype = "Ala"
	IsotypeArg   Isotype = "Arg"
	IsotypeAsn   Isotype = "Asn"
	IsotypeAsp   Isotype = "Asp"
	IsotypeCys   Isotype = "Cys"
	IsotypeGln   Isotype = "Gln"
	IsotypeGlu   Isotype = "Glu"
	IsotypeGly   Isotype = "Gly"
	IsotypeHis   Isotype = "His"
	IsotypeIle   Isotype = "Ile"
	IsotypeLeu   Isotype = "Leu"
	IsotypeLys   Isotype = "Lys"
	IsotypeMet   Isotype = "Met"
	IsotypePhe   Isotype = "Phe"
	IsotypePro   Isotype = "Pro"
	IsotypeSer   Isotype = "Ser"
	IsotypeThr   Isotype = "Thr"
	IsotypeTrp   Isotype = "Trp"
	IsotypeTyr   Isotype = "Tyr"
	IsotypeVal   Isotype = "Val"
	IsotypeSeC   Isotype = "SeC" // selenocysteine
	IsotypeSup   Isotype = "Sup" // suppressor
	IsotypeIMet  Isotype = "iMet"
	IsotypeFMet  Isotype = "fMet"
	IsotypeUndet Isotype = "Undet"
)

var standardIsotypes = []Isotype{
	IsotypeAla, IsotypeArg, IsotypeAsn, IsotypeAsp, IsotypeCys, IsotypeGln, IsotypeGlu,
	IsotypeGly, IsotypeHis, IsotypeIle, IsotypeLeu, IsotypeLys, IsotypeMet, IsotypePhe,
	IsotypePro, IsotypeSer, IsotypeThr, IsotypeTrp, IsotypeTyr, IsotypeVal, IsotypeSeC,
	IsotypeSup, IsotypeIMet, IsotypeFMet, IsotypeUndet,
}

// ParseIsotype resolves an isotype label. Standard abbreviations are matched
// case-insensitively and returned in canonical case; other non-empty labels are
// returned verbatim. An empty label reports false.
func ParseIsotype(s string) (Isotype, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, iso := range standardIsotypes {
		if strings.EqualFold(s, string(iso)) {
			return iso, true
		}
	}
	return Isotype(s), true
}
