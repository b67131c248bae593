package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/ChrisMcGann/trnakey/pkg/core"
)

func TestAnalyzeBatchScenario(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)
	hits := []core.TRNAHit{
		testHit("good", probeSequence(77, col55, 'U')),
		testHit("bad", probeSequence(77, col55, 'A')),
	}

	batch := a.AnalyzeBatch(hits, 2)
	if batch.TotalTRNAs != 2 {
		t.Errorf("TotalTRNAs = %d, want 2", batch.TotalTRNAs)
	}
	if batch.OddTRNAs != 1 {
		t.Errorf("OddTRNAs = %d, want 1", batch.OddTRNAs)
	}
	if batch.AverageCompatibility != 0.5 {
		t.Errorf("AverageCompatibility = %v, want 0.5", batch.AverageCompatibility)
	}
	if batch.Results[0].Hit.ID != "good" || batch.Results[1].Hit.ID != "bad" {
		t.Error("Results are not in input order")
	}
	if batch.BySeverity[Critical] != 1 || batch.ByPosition["55"] != 1 {
		t.Errorf("BySeverity = %v, ByPosition = %v", batch.BySeverity, batch.ByPosition)
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)
	batch := a.AnalyzeBatch(nil, 4)
	if batch.TotalTRNAs != 0 || batch.OddTRNAs != 0 || batch.AverageCompatibility != 1.0 {
		t.Errorf("empty batch = %+v", batch)
	}
}

func randomHits(n int, rng *rand.Rand) []core.TRNAHit {
	isotypes := []string{"", "Ala", "Ser", "Gly", "Asp", "Phe"}
	letters := []byte("ACGUN")
	hits := make([]core.TRNAHit, n)
	for i := range hits {
		seq := make([]byte, 60+rng.Intn(40))
		for j := range seq {
			seq[j] = letters[rng.Intn(len(letters))]
		}
		hits[i] = testHit(fmt.Sprintf("h%d", i), string(seq))
		hits[i].Isotype = isotypes[rng.Intn(len(isotypes))]
	}
	return hits
}

func TestAnalyzeBatchThreadsMatchSequential(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)
	hits := randomHits(200, rand.New(rand.NewSource(1)))

	seq := a.AnalyzeBatch(hits, 1)
	par := a.AnalyzeBatch(hits, 8)
	if !reflect.DeepEqual(seq, par) {
		t.Error("parallel batch differs from sequential batch")
	}
}

func TestAnalyzeBatchOrderIndependent(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)
	rng := rand.New(rand.NewSource(7))
	hits := randomHits(300, rng)

	base := a.AnalyzeBatch(hits, 4)
	for round := 0; round < 5; round++ {
		shuffled := make([]core.TRNAHit, len(hits))
		copy(shuffled, hits)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := a.AnalyzeBatch(shuffled, 3)
		if got.TotalTRNAs != base.TotalTRNAs || got.OddTRNAs != base.OddTRNAs {
			t.Errorf("round %d: counts %d/%d, want %d/%d", round, got.TotalTRNAs, got.OddTRNAs, base.TotalTRNAs, base.OddTRNAs)
		}
		if math.Abs(got.AverageCompatibility-base.AverageCompatibility) > 1e-9*base.AverageCompatibility {
			t.Errorf("round %d: average %v, want %v", round, got.AverageCompatibility, base.AverageCompatibility)
		}
		if !reflect.DeepEqual(got.BySeverity, base.BySeverity) {
			t.Errorf("round %d: BySeverity %v, want %v", round, got.BySeverity, base.BySeverity)
		}
	}
}

func TestDetectOddTRNAs(t *testing.T) {
	a := NewAnalyzer(core.DefaultModDatabase(), nil)

	seq := []byte(probeSequence(77, col55, 'U'))
	seq[col16] = 'C'
	hits := []core.TRNAHit{
		testHit("good", probeSequence(77, col55, 'U')),
		testHit("half", string(seq)),
		testHit("bad", probeSequence(77, col55, 'A')),
	}

	tests := []struct {
		threshold float64
		want      []string
	}{
		{1.0, []string{"half", "bad"}},
		{0.5, []string{"bad"}},
		{0.0, nil},
	}

	for _, tt := range tests {
		var got []string
		for _, r := range a.DetectOddTRNAs(hits, tt.threshold, 2) {
			got = append(got, r.Hit.ID)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("DetectOddTRNAs(%v) = %v, want %v", tt.threshold, got, tt.want)
		}
	}
}
