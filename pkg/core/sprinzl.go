package core

import (
	"strconv"
	"sync"
)

// SprinzlPosition is a canonical tRNA position label: "1".."76" or an insertion
// such as "17a" or "e11".
type SprinzlPosition string

// PositionFromNum returns the label for a numeric core position.
func PositionFromNum(n int) SprinzlPosition {
	return SprinzlPosition(strconv.Itoa(n))
}

// BaseNumber returns the leading numeric part of the label (17 for "17a").
// It reports false when the label has no leading digits.
func (p SprinzlPosition) BaseNumber() (int, bool) {
	end := 0
	for end < len(p) && p[end] >= '0' && p[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(p[:end]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsInsertion reports whether the label contains a letter.
func (p SprinzlPosition) IsInsertion() bool {
	for i := 0; i < len(p); i++ {
		c := p[i] | 0x20
		if c >= 'a' && c <= 'z' {
			return true
		}
	}
	return false
}

func (p SprinzlPosition) String() string {
	return string(p)
}

// standardPositions is the covariance-model column order of the canonical tRNA.
var standardPositions = []SprinzlPosition{
	// Acceptor stem
	"1", "2", "3", "4", "5", "6", "7",
	// D-stem/loop
	"8", "9", "10", "11", "12", "13", "14", "15", "16",
	"17", "17a", "18", "19", "20", "20a", "20b",
	"21", "22", "23", "24", "25",
	// Anticodon stem/loop
	"26", "27", "28", "29", "30", "31", "32", "33", "34", "35", "36", "37", "38",
	"39", "40", "41", "42", "43", "44",
	// Variable loop
	"45", "e11", "e12", "e13", "e14", "e15", "e16", "e17", "e1", "e2", "e3", "e4", "e5",
	"e21", "e22", "e23", "e24", "e25", "e26", "e27", "46", "47",
	// T-stem/loop
	"48", "49", "50", "51", "52", "53", "54", "55", "56", "57", "58", "59", "60", "61",
	"62", "63", "64", "65",
	// 3' acceptor stem
	"66", "67", "68", "69", "70", "71", "72",
	// Discriminator and CCA
	"73", "74", "75", "76",
}

// SprinzlMapper maps alignment columns to Sprinzl positions and back.
// A mapper is never modified after construction.
type SprinzlMapper struct {
	labels  []SprinzlPosition
	columns map[SprinzlPosition]int
}

// NewStandardMapper builds the mapper for the canonical tRNA table.
func NewStandardMapper() *SprinzlMapper {
	m := &SprinzlMapper{
		labels:  make([]SprinzlPosition, len(standardPositions)),
		columns: make(map[SprinzlPosition]int, len(standardPositions)),
	}
	copy(m.labels, standardPositions)
	for i, label := range m.labels {
		m.columns[label] = i
	}
	return m
}

var standardMapper = sync.OnceValue(NewStandardMapper)

// StandardMapper returns the shared canonical mapper.
func StandardMapper() *SprinzlMapper {
	return standardMapper()
}

// Len returns the number of canonical positions.
func (m *SprinzlMapper) Len() int {
	return len(m.labels)
}

// Positions returns the canonical labels in column order.
func (m *SprinzlMapper) Positions() []SprinzlPosition {
	out := make([]SprinzlPosition, len(m.labels))
	copy(out, m.labels)
	return out
}

// LabelForColumn returns the label at an alignment column.
func (m *SprinzlMapper) LabelForColumn(column int) (SprinzlPosition, bool) {
	if column < 0 || column >= len(m.labels) {
		return "", false
	}
	return m.labels[column], true
}

// ColumnForLabel returns the alignment column of a label.
func (m *SprinzlMapper) ColumnForLabel(label SprinzlPosition) (int, bool) {
	col, ok := m.columns[label]
	return col, ok
}

// MapAlignment walks a gapped alignment or structure string and returns the
// ungapped sequence index of every residue whose column has a canonical label.
// '-' and '.' are gaps and do not consume a sequence index. Columns beyond the
// table are skipped.
func (m *SprinzlMapper) MapAlignment(alignment string) map[SprinzlPosition]int {
	result := make(map[SprinzlPosition]int)
	seqPos := 0
	for col, c := range []rune(alignment) {
		if c == '-' || c == '.' {
			continue
		}
		if label, ok := m.LabelForColumn(col); ok {
			result[label] = seqPos
		}
		seqPos++
	}
	return result
}

// MapUngapped maps sequence index i to the label of column i, for sequences
// that carry no alignment.
func (m *SprinzlMapper) MapUngapped(seqLen int) map[SprinzlPosition]int {
	result := make(map[SprinzlPosition]int)
	for i := 0; i < seqLen && i < len(m.labels); i++ {
		result[m.labels[i]] = i
	}
	return result
}

// IsCriticalPosition reports whether the position lies in the anticodon loop
// (34-37), the modified D-loop (16, 17, 20, 20a, 20b) or the T-loop (54, 55, 58).
func IsCriticalPosition(p SprinzlPosition) bool {
	switch p {
	case "34", "35", "36", "37",
		"16", "17", "20", "20a", "20b",
		"54", "55", "58":
		return true
	}
	return false
}
