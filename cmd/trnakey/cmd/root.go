// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/trnakey/pkg/core"
	"github.com/ChrisMcGann/trnakey/pkg/reader/fasta"
	"github.com/ChrisMcGann/trnakey/pkg/reader/hits"
)

var (
	// Global flags
	modomicsFile string

	// Flags for analyze and odd commands
	inputFile    string
	inputFormat  string
	outputFile   string
	outputFormat string
	dbFile       string
	threads      int
	threshold    float64
	oddOnly      bool
	isotypes     string
	minSeverity  string
	criticalOnly bool
	oddThreshold float64

	// Flags for mods command
	modPosition string
	modIsotype  string
	verbose     bool

	// Flags for summarize command
	summaryJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "trnakey",
	Short: "trnakey - tRNA modification compatibility tool",
	Long: `trnakey maps tRNA gene predictions onto the standard Sprinzl numbering and
checks the genomic base at each position against the modifications known to
occur there.

Hits whose sequence rules out conserved modifications are flagged as odd:
- Universal modifications are critical findings
- Domain and isotype specific modifications are major findings
- Catalogs can be loaded from a MODOMICS JSON export`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(oddCmd)
	rootCmd.AddCommand(modsCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(validateCmd)

	rootCmd.PersistentFlags().StringVar(&modomicsFile, "modomics", "", "MODOMICS modifications JSON (default: built-in catalog)")

	// Analyze command flags
	analyzeCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input hit file (required)")
	analyzeCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: json, fasta (auto-detect if not specified)")
	analyzeCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output report file (default: stdout)")
	analyzeCmd.Flags().StringVar(&outputFormat, "format", "json", "Report format: json or tsv")
	analyzeCmd.Flags().StringVar(&dbFile, "db", "", "Also write results to this SQLite database")
	analyzeCmd.Flags().IntVar(&threads, "threads", 0, "Number of worker threads (0 = all CPUs)")
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", 0, "Report only hits scoring below this (0 = no threshold)")
	analyzeCmd.Flags().BoolVar(&oddOnly, "odd-only", false, "Report only hits flagged odd")
	analyzeCmd.Flags().StringVar(&isotypes, "isotypes", "", "Comma-separated isotypes to report (e.g., 'Ala,Gly')")
	analyzeCmd.Flags().StringVar(&minSeverity, "min-severity", "", "Report only incompatibilities at least this severe: critical, major, minor")
	analyzeCmd.Flags().BoolVar(&criticalOnly, "critical-only", false, "Report only incompatibilities at critical loop positions")
	analyzeCmd.MarkFlagRequired("in")

	// Odd command flags
	oddCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input hit file (required)")
	oddCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: json, fasta (auto-detect if not specified)")
	oddCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output report file (default: stdout)")
	oddCmd.Flags().StringVar(&outputFormat, "format", "json", "Report format: json or tsv")
	oddCmd.Flags().IntVar(&threads, "threads", 0, "Number of worker threads (0 = all CPUs)")
	oddCmd.Flags().Float64Var(&oddThreshold, "threshold", 1.0, "Compatibility score below which a hit is reported")
	oddCmd.MarkFlagRequired("in")

	// Mods command flags
	modsCmd.Flags().StringVarP(&modPosition, "position", "p", "", "Show expectations at this Sprinzl position")
	modsCmd.Flags().StringVar(&modIsotype, "isotype", "", "Restrict expectations to this isotype")
	modsCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show codes, ChEBI IDs and formulas")

	// Validate command flags
	validateCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: json, fasta (auto-detect if not specified)")

	// Summarize command flags
	summarizeCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
}

// loadDatabase returns the MODOMICS-backed database when --modomics is set
func loadDatabase() (*core.ModificationDatabase, error) {
	if modomicsFile == "" {
		return core.DefaultModDatabase(), nil
	}

	db, err := core.LoadModomicsFile(modomicsFile)
	if err != nil {
		return nil, err
	}
	if err := db.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d modifications from %s\n", db.Len(), modomicsFile)
	return db, nil
}

// detectFormat picks the input format from the file extension
func detectFormat(path, format string) (string, error) {
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json", ".jsonl", ".ndjson":
			format = "json"
		case ".fa", ".fasta", ".fna", ".fas":
			format = "fasta"
		default:
			return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
		}
	}

	format = strings.ToLower(format)
	if format != "json" && format != "fasta" {
		return "", fmt.Errorf("invalid input format '%s', must be json or fasta", format)
	}
	return format, nil
}

// hitReader is the streaming contract shared by the input readers
type hitReader interface {
	Next() bool
	Hit() *core.TRNAHit
	Err() error
}

// readHits loads and validates every hit in the input file. Invalid hits are
// reported as warnings and skipped.
func readHits(path, format string) ([]core.TRNAHit, int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, 0, fmt.Errorf("input file does not exist: %s", path)
	}

	format, err := detectFormat(path, format)
	if err != nil {
		return nil, 0, err
	}

	inFile, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	var reader hitReader
	switch format {
	case "json":
		reader = hits.NewReader(inFile)
	case "fasta":
		reader = fasta.NewReader(inFile)
	}

	var (
		out     []core.TRNAHit
		skipped int
	)
	for reader.Next() {
		hit := reader.Hit()
		if err := hit.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid hit %s: %v\n", hit.Name(), err)
			skipped++
			continue
		}
		out = append(out, *hit)
	}
	if err := reader.Err(); err != nil {
		return nil, skipped, fmt.Errorf("error reading input file: %w", err)
	}

	return out, skipped, nil
}
