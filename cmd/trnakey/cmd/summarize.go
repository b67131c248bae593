package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
	"github.com/ChrisMcGann/trnakey/pkg/writer/jsonout"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a saved JSON report",
	Long:  `Print summary statistics for a JSON report written by analyze: hit counts, odd hits, average compatibility, and incompatibilities per severity and Sprinzl position.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	inFile, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer inFile.Close()

	results, err := jsonout.ReadResults(inFile)
	if err != nil {
		return err
	}

	summary := jsonout.NewSummary(analysis.Summarize(results), "", "")
	if summaryJSON {
		return jsonout.WriteSummary(cmd.OutOrStdout(), summary)
	}

	printSummary(cmd.OutOrStdout(), summary)
	return nil
}
