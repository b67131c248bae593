package analysis

import (
	"math"
	"runtime"
	"sync"

	"github.com/ChrisMcGann/trnakey/pkg/core"
)

// BatchResult holds per-hit results and summary statistics for a batch.
type BatchResult struct {
	Results              []ModCompatibilityResult     `json:"results"`
	TotalTRNAs           int                          `json:"total_trnas"`
	OddTRNAs             int                          `json:"odd_trnas"`
	AverageCompatibility float64                      `json:"average_compatibility"`
	BySeverity           map[Severity]int             `json:"incompatibilities_by_severity"`
	ByPosition           map[core.SprinzlPosition]int `json:"incompatibilities_by_position"`
}

// AnalyzeBatch analyzes hits on a fixed pool of workers (threads <= 0 uses
// GOMAXPROCS). Results keep the order of hits.
func (a *Analyzer) AnalyzeBatch(hits []core.TRNAHit, threads int) *BatchResult {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if threads > len(hits) {
		threads = len(hits)
	}

	results := make([]ModCompatibilityResult, len(hits))
	if threads <= 1 {
		for i := range hits {
			results[i] = a.Analyze(hits[i])
		}
		return Summarize(results)
	}

	jobs := make(chan int, threads*2)

	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				// each worker writes only its own slot
				results[i] = a.Analyze(hits[i])
			}
		}()
	}

	for i := range hits {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return Summarize(results)
}

// Summarize computes the batch statistics for already analyzed results. The
// average of an empty batch is 1.0.
func Summarize(results []ModCompatibilityResult) *BatchResult {
	batch := &BatchResult{
		Results:              results,
		TotalTRNAs:           len(results),
		AverageCompatibility: 1.0,
		BySeverity:           make(map[Severity]int),
		ByPosition:           make(map[core.SprinzlPosition]int),
	}

	var sum, comp float64
	for i := range results {
		r := &results[i]
		if r.IsOdd {
			batch.OddTRNAs++
		}
		// Neumaier summation
		t := sum + r.CompatibilityScore
		if math.Abs(sum) >= math.Abs(r.CompatibilityScore) {
			comp += (sum - t) + r.CompatibilityScore
		} else {
			comp += (r.CompatibilityScore - t) + sum
		}
		sum = t

		for _, inc := range r.Incompatibilities {
			batch.BySeverity[inc.Severity]++
			batch.ByPosition[inc.Position]++
		}
	}
	if len(results) > 0 {
		batch.AverageCompatibility = (sum + comp) / float64(len(results))
	}
	return batch
}
