package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a hit file and the modification catalog",
	Long:  `Validate that a hit file is properly formatted and that every hit is usable for analysis. The modification catalog selected by --modomics is checked as well.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return err
	}
	if err := db.Validate(); err != nil {
		return fmt.Errorf("catalog %s: %w", db.Source(), err)
	}

	hitList, skipped, err := readHits(args[0], inputFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Catalog: %s (%d modifications)\n", db.Source(), db.Len())
	fmt.Fprintf(out, "Valid hits: %d\n", len(hitList))
	if skipped > 0 {
		return fmt.Errorf("%d of %d hits failed validation", skipped, skipped+len(hitList))
	}
	return nil
}
