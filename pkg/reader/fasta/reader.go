// Package fasta provides streaming readers for tRNA hits stored as FASTA
package fasta

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	biofasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"

	"github.com/ChrisMcGann/trnakey/pkg/core"
)

// Reader provides streaming access to FASTA hit files.
//
// The header line carries the hit ID followed by optional key=value fields:
//
//	>tRNA-Ala-AGC-1 seq=chr6 start=28795964 end=28796035 strand=- score=71.5 isotype=Ala anticodon=AGC
//
// A sequence containing gap characters is treated as an alignment row: it
// becomes the hit structure and the gaps are removed from the sequence.
type Reader struct {
	scanner    *seqio.Scanner
	recordNum  int
	currentHit *core.TRNAHit
	err        error
}

// NewReader creates a new FASTA hit reader
func NewReader(r io.Reader) *Reader {
	template := linear.NewSeq("", nil, alphabet.DNAgapped)
	return &Reader{
		scanner: seqio.NewScanner(biofasta.NewReader(r, template)),
	}
}

// Next advances to the next hit. Returns false when no more hits or error.
func (r *Reader) Next() bool {
	r.currentHit = nil

	if !r.scanner.Next() {
		if err := r.scanner.Error(); err != nil && err != io.EOF {
			r.err = fmt.Errorf("record %d: %w", r.recordNum+1, err)
		}
		return false
	}
	r.recordNum++

	hit, err := r.parseRecord(r.scanner.Seq())
	if err != nil {
		r.err = fmt.Errorf("record %d: %w", r.recordNum, err)
		return false
	}

	r.currentHit = hit
	return true
}

// Hit returns the current hit
func (r *Reader) Hit() *core.TRNAHit {
	return r.currentHit
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// parseRecord converts one FASTA record into a hit
func (r *Reader) parseRecord(s seq.Sequence) (*core.TRNAHit, error) {
	ls, ok := s.(*linear.Seq)
	if !ok {
		return nil, fmt.Errorf("unexpected sequence type %T", s)
	}

	hit := &core.TRNAHit{
		ID:     ls.Name(),
		Strand: core.StrandPlus,
	}
	if hit.ID == "" {
		return nil, fmt.Errorf("missing sequence ID")
	}

	raw := lettersToString(ls.Seq)
	if strings.ContainsAny(raw, "-.") {
		hit.Structure = raw
		hit.Sequence = strings.NewReplacer("-", "", ".", "").Replace(raw)
	} else {
		hit.Sequence = raw
	}

	if err := parseDescription(hit, ls.Description()); err != nil {
		return nil, fmt.Errorf("%s: %w", hit.ID, err)
	}

	// Without coordinates the hit spans its own sequence
	if hit.Start == 0 {
		hit.Start = 1
	}
	if hit.End == 0 {
		hit.End = hit.Start + len(hit.Sequence) - 1
	}

	return hit, nil
}

// parseDescription fills hit fields from key=value tokens. Tokens without
// '=' and unknown keys are ignored.
func parseDescription(hit *core.TRNAHit, desc string) error {
	for _, field := range strings.Fields(desc) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "seq", "seq_name", "chrom":
			hit.SeqName = value
		case "start":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid start '%s': %w", value, err)
			}
			hit.Start = n
		case "end":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid end '%s': %w", value, err)
			}
			hit.End = n
		case "strand":
			strand, err := core.ParseStrand(value)
			if err != nil {
				return err
			}
			hit.Strand = strand
		case "score":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid score '%s': %w", value, err)
			}
			hit.Score = f
		case "isotype":
			hit.Isotype = value
		case "anticodon":
			hit.Anticodon = strings.ToUpper(value)
		case "structure":
			hit.Structure = value
		}
	}
	return nil
}

func lettersToString(letters alphabet.Letters) string {
	var b strings.Builder
	b.Grow(len(letters))
	for _, l := range letters {
		c := byte(l)
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ReadAll reads every remaining hit
func ReadAll(r io.Reader) ([]core.TRNAHit, error) {
	reader := NewReader(r)
	var out []core.TRNAHit
	for reader.Next() {
		out = append(out, *reader.Hit())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
