package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
	"github.com/ChrisMcGann/trnakey/pkg/filter"
	"github.com/ChrisMcGann/trnakey/pkg/writer/jsonout"
	"github.com/ChrisMcGann/trnakey/pkg/writer/sqlite"
	"github.com/ChrisMcGann/trnakey/pkg/writer/tsv"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check tRNA hits for modification compatibility",
	Long: `Map each tRNA hit onto Sprinzl positions and check the observed bases
against the modifications expected at those positions.

Examples:
  # Analyze tRNAscan-SE style hits and write a JSON report
  trnakey analyze --in hits.json --out report.json

  # TSV report of odd Ala and Gly hits only
  trnakey analyze --in hits.fa --format tsv --odd-only --isotypes Ala,Gly

  # Use a MODOMICS catalog and keep a SQLite copy of the results
  trnakey analyze --in hits.json --modomics modomics.json --db results.db`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	filterConfig, err := buildFilter()
	if err != nil {
		return err
	}

	db, err := loadDatabase()
	if err != nil {
		return err
	}

	hitList, skipped, err := readHits(inputFile, inputFormat)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Analyzing %d hits from %s...\n", len(hitList), inputFile)
	fmt.Fprintf(os.Stderr, "Modification catalog: %s\n", db.Source())

	analyzer := analysis.NewAnalyzer(db, nil)
	batch := analyzer.AnalyzeBatch(hitList, threads)

	runID := uuid.NewString()
	if dbFile != "" {
		runID, err = writeDatabase(dbFile, db.Source(), batch.Results)
		if err != nil {
			return err
		}
	}

	reported := filterConfig.Results(batch.Results)
	if err := writeReport(reported); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nAnalysis complete!\n")
	printSummary(os.Stderr, jsonout.NewSummary(batch, runID, db.Source()))
	fmt.Fprintf(os.Stderr, "Reported: %d hits\n", len(reported))
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped: %d hits (validation errors)\n", skipped)
	}
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Output: %s\n", outputFile)
	}

	return nil
}

// buildFilter translates the filter flags into a filter config
func buildFilter() (*filter.Config, error) {
	filterConfig := &filter.Config{
		Threshold:    threshold,
		OddOnly:      oddOnly,
		CriticalOnly: criticalOnly,
	}

	if isotypes != "" {
		for _, iso := range strings.Split(isotypes, ",") {
			if iso = strings.TrimSpace(iso); iso != "" {
				filterConfig.Isotypes = append(filterConfig.Isotypes, iso)
			}
		}
	}

	if minSeverity != "" {
		sev, err := analysis.ParseSeverity(strings.ToLower(minSeverity))
		if err != nil {
			return nil, err
		}
		filterConfig.Severities = filter.AtLeast(sev)
	}

	return filterConfig, nil
}

// writeReport writes results in the selected format to --out or stdout
func writeReport(results []analysis.ModCompatibilityResult) error {
	if outputFile == "" {
		return encodeReport(os.Stdout, results)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := encodeReport(f, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func encodeReport(out io.Writer, results []analysis.ModCompatibilityResult) error {
	switch strings.ToLower(outputFormat) {
	case "json":
		return jsonout.WriteResults(out, results)
	case "tsv":
		return tsv.WriteResults(out, results)
	default:
		return fmt.Errorf("unsupported output format %q, must be json or tsv", outputFormat)
	}
}

// writeDatabase stores every result, unfiltered, in a SQLite database
func writeDatabase(path, modSource string, results []analysis.ModCompatibilityResult) (string, error) {
	writer, err := sqlite.NewWriter(path, modSource)
	if err != nil {
		return "", fmt.Errorf("failed to create output database: %w", err)
	}

	for i := range results {
		if err := writer.WriteResult(&results[i]); err != nil {
			writer.Close()
			return "", fmt.Errorf("failed to write result: %w", err)
		}
		if (i+1)%1000 == 0 {
			fmt.Fprintf(os.Stderr, "Stored %d results...\n", i+1)
		}
	}

	if err := writer.Finalize(); err != nil {
		return "", fmt.Errorf("failed to finalize database: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Database: %s (run %s)\n", path, writer.RunID())
	return writer.RunID(), nil
}

// printSummary writes the human-readable batch statistics
func printSummary(w io.Writer, s jsonout.Summary) {
	if s.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", s.RunID)
	}
	fmt.Fprintf(w, "Total tRNAs: %d\n", s.TotalTRNAs)
	fmt.Fprintf(w, "Odd tRNAs: %d\n", s.OddTRNAs)
	fmt.Fprintf(w, "Average compatibility: %.4f\n", s.AverageCompatibility)

	for _, sev := range []analysis.Severity{analysis.Critical, analysis.Major, analysis.Minor} {
		if n := s.BySeverity[sev]; n > 0 {
			fmt.Fprintf(w, "  %s incompatibilities: %d\n", sev, n)
		}
	}
	for _, pos := range sortedPositions(s.ByPosition) {
		fmt.Fprintf(w, "  position %s: %d\n", pos, s.ByPosition[pos])
	}
}
