package analysis

import "github.com/ChrisMcGann/trnakey/pkg/core"

// DetectOddTRNAs analyzes hits and returns the results whose compatibility
// score is below threshold, in input order.
func (a *Analyzer) DetectOddTRNAs(hits []core.TRNAHit, threshold float64, threads int) []ModCompatibilityResult {
	batch := a.AnalyzeBatch(hits, threads)

	var odd []ModCompatibilityResult
	for _, r := range batch.Results {
		if r.CompatibilityScore < threshold {
			odd = append(odd, r)
		}
	}
	return odd
}
