package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
)

var oddCmd = &cobra.Command{
	Use:   "odd",
	Short: "Report tRNA hits that contradict conserved modifications",
	Long: `Analyze tRNA hits and report only those flagged odd whose compatibility
score falls below the threshold.

Examples:
  trnakey odd --in hits.json
  trnakey odd --in hits.fa --threshold 0.8 --format tsv --out odd.tsv`,
	RunE: runOdd,
}

func runOdd(cmd *cobra.Command, args []string) error {
	if oddThreshold <= 0 || oddThreshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %g", oddThreshold)
	}

	db, err := loadDatabase()
	if err != nil {
		return err
	}

	hitList, skipped, err := readHits(inputFile, inputFormat)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Screening %d hits from %s...\n", len(hitList), inputFile)

	analyzer := analysis.NewAnalyzer(db, nil)
	var odd []analysis.ModCompatibilityResult
	for _, r := range analyzer.DetectOddTRNAs(hitList, oddThreshold, threads) {
		if r.IsOdd {
			odd = append(odd, r)
		}
	}

	if err := writeReport(odd); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nScreen complete!\n")
	fmt.Fprintf(os.Stderr, "Odd tRNAs: %d of %d\n", len(odd), len(hitList))
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped: %d hits (validation errors)\n", skipped)
	}
	return nil
}
