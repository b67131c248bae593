package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

var (
	// ErrCatalogUnreadable matches a catalog whose backing file or stream could not be read.
	ErrCatalogUnreadable = errors.New("modification catalog unreadable")
	// ErrCatalogMalformed matches a catalog whose content does not follow the MODOMICS schema.
	ErrCatalogMalformed = errors.New("modification catalog malformed")
)

// CatalogErrorKind distinguishes read failures from content failures.
type CatalogErrorKind int

const (
	CatalogUnreadable CatalogErrorKind = iota + 1
	CatalogMalformed
)

// CatalogError is returned when an external modification catalog cannot be loaded.
type CatalogError struct {
	Kind CatalogErrorKind
	Path string // empty for in-memory catalogs
	Err  error
}

func (e *CatalogError) Error() string {
	what := "parse error"
	if e.Kind == CatalogUnreadable {
		what = "io error"
	}
	if e.Path != "" {
		return fmt.Sprintf("modification catalog %s: %s: %v", e.Path, what, e.Err)
	}
	return fmt.Sprintf("modification catalog: %s: %v", what, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is matches ErrCatalogUnreadable or ErrCatalogMalformed according to Kind.
func (e *CatalogError) Is(target error) bool {
	switch target {
	case ErrCatalogUnreadable:
		return e.Kind == CatalogUnreadable
	case ErrCatalogMalformed:
		return e.Kind == CatalogMalformed
	}
	return false
}

// ModomicsEntry is one record of the MODOMICS modifications JSON
// (https://genesilico.pl/modomics/api/modifications).
type ModomicsEntry struct {
	ID              int      `json:"id"`
	Name            *string  `json:"name"`
	ShortName       *string  `json:"short_name"`
	NewAbbrev       string   `json:"new_abbrev"`
	ReferenceMoiety []string `json:"reference_moiety"`
	Formula         string   `json:"formula"`
	MassAvg         float64  `json:"mass_avg"`
	Smile           string   `json:"smile"`
}

// LoadModomicsFile builds a database from a MODOMICS JSON file combined with the
// eukaryotic position expectations.
func LoadModomicsFile(path string) (*ModificationDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Kind: CatalogUnreadable, Path: path, Err: err}
	}
	mods, err := ParseModomicsJSON(data)
	if err != nil {
		var ce *CatalogError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return newModificationDatabase(mods, path), nil
}

// LoadModomics builds a database from a MODOMICS JSON stream.
func LoadModomics(r io.Reader) (*ModificationDatabase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &CatalogError{Kind: CatalogUnreadable, Err: err}
	}
	mods, err := ParseModomicsJSON(data)
	if err != nil {
		return nil, err
	}
	return newModificationDatabase(mods, "modomics"), nil
}

// ParseModomicsJSON parses a MODOMICS document (an object keyed by
// modification ID) into modifications keyed by short name. Entries whose first
// reference moiety is not A, C, G or U are dropped.
func ParseModomicsJSON(data []byte) (map[string]Modification, error) {
	var raw map[string]ModomicsEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, &CatalogError{Kind: CatalogMalformed, Err: err}
	}
	if raw == nil {
		return nil, &CatalogError{Kind: CatalogMalformed, Err: errors.New("expected an object of modification entries")}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &CatalogError{Kind: CatalogMalformed, Err: errors.New("trailing data after catalog object")}
	}

	mods := make(map[string]Modification, len(raw))
	for id, entry := range raw {
		if entry.Name == nil || entry.ShortName == nil {
			return nil, &CatalogError{Kind: CatalogMalformed, Err: fmt.Errorf("entry %s: name and short_name are required", id)}
		}
		if m, ok := convertModomicsEntry(entry); ok {
			mods[m.ShortName] = m
		}
	}
	return mods, nil
}

// convertModomicsEntry maps a MODOMICS record onto a Modification.
func convertModomicsEntry(entry ModomicsEntry) (Modification, bool) {
	if len(entry.ReferenceMoiety) == 0 {
		return Modification{}, false
	}
	var parent RnaBase
	switch entry.ReferenceMoiety[0] {
	case "A":
		parent = BaseA
	case "C":
		parent = BaseC
	case "G":
		parent = BaseG
	case "U":
		parent = BaseU
	default:
		// X, QtRNA and similar have no single parent nucleotide
		return Modification{}, false
	}

	shortName := *entry.ShortName
	m := Modification{
		Name:               *entry.Name,
		ShortName:          shortName,
		ParentBase:         parent,
		GenomicExpectation: parent,
		IncompatibleBases:  incompatibleWith(parent),
		Formula:            entry.Formula,
		MassAvg:            entry.MassAvg,
	}

	single := utf8.RuneCountInString(shortName) == 1
	if glyph, _ := utf8.DecodeRuneInString(entry.NewAbbrev); entry.NewAbbrev != "" && glyph != utf8.RuneError {
		m.UnicodeGlyph = glyph
		m.Code = Unicode(glyph)
		if single {
			r, _ := utf8.DecodeRuneInString(shortName)
			m.AltCodes = []ModCode{SingleChar(r)}
		}
	} else if single {
		r, _ := utf8.DecodeRuneInString(shortName)
		m.Code = SingleChar(r)
	} else {
		m.Code = ShortName(shortName)
	}
	return m, true
}
