// Package hits provides streaming readers for tRNA hit records in JSON form
package hits

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ChrisMcGann/trnakey/pkg/core"
)

// record accepts either a bare hit or a saved analysis result with the hit
// nested under "hit".
type record struct {
	core.TRNAHit
	Hit *core.TRNAHit `json:"hit"`
}

// Reader provides streaming access to a JSON array of hits or to
// newline-delimited JSON (one hit per line)
type Reader struct {
	br         *bufio.Reader
	dec        *json.Decoder
	array      bool
	started    bool
	recordNum  int
	currentHit *core.TRNAHit
	err        error
}

// NewReader creates a new hit reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		br: bufio.NewReader(r),
	}
}

// Next advances to the next hit. Returns false when no more hits or error.
func (r *Reader) Next() bool {
	r.currentHit = nil

	hit, err := r.readHit()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
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

// start detects the layout from the first non-space byte
func (r *Reader) start() error {
	r.started = true

	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := r.br.UnreadByte(); err != nil {
			return err
		}
		r.array = b == '['
		break
	}

	r.dec = json.NewDecoder(r.br)
	if r.array {
		// Consume the opening bracket
		if _, err := r.dec.Token(); err != nil {
			return fmt.Errorf("invalid hit array: %w", err)
		}
	}
	return nil
}

// readHit decodes a single record
func (r *Reader) readHit() (*core.TRNAHit, error) {
	if !r.started {
		if err := r.start(); err != nil {
			return nil, err
		}
	}
	if r.dec == nil {
		return nil, io.EOF
	}

	if r.array && !r.dec.More() {
		return nil, io.EOF
	}

	var rec record
	if err := r.dec.Decode(&rec); err != nil {
		if err == io.EOF && !r.array {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("record %d: %w", r.recordNum+1, err)
	}
	r.recordNum++

	if rec.Hit != nil {
		return rec.Hit, nil
	}
	return &rec.TRNAHit, nil
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
