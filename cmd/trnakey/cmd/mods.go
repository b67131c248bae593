package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/trnakey/pkg/core"
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "List modifications and position expectations",
	Long: `Without --position, list every modification in the catalog. With
--position, list the modifications expected at that Sprinzl position.

Examples:
  trnakey mods
  trnakey mods --position 34 --isotype Ala
  trnakey mods --modomics modomics.json -v`,
	Args: cobra.NoArgs,
	RunE: runMods,
}

func runMods(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if modPosition == "" {
		printCatalog(out, db)
		return nil
	}

	pos := core.SprinzlPosition(modPosition)
	if _, ok := core.StandardMapper().ColumnForLabel(pos); !ok {
		return fmt.Errorf("unknown Sprinzl position '%s'", modPosition)
	}

	var expectations []core.PositionModExpectation
	if modIsotype != "" {
		iso, ok := core.ParseIsotype(modIsotype)
		if !ok {
			return fmt.Errorf("invalid isotype '%s'", modIsotype)
		}
		expectations = db.ExpectationsForIsotype(pos, iso)
	} else {
		expectations = db.Expectations(pos)
	}

	printExpectations(out, pos, expectations)
	return nil
}

func printCatalog(w io.Writer, db *core.ModificationDatabase) {
	fmt.Fprintf(w, "Catalog: %s (%d modifications)\n", db.Source(), db.Len())
	for _, m := range db.Modifications() {
		fmt.Fprintf(w, "%-10s %s  %s\n", m.ShortName, m.ParentBase, m.Name)
		if verbose {
			fmt.Fprintf(w, "           codes: %s\n", m.Codes())
			if m.ChEBIID != 0 {
				fmt.Fprintf(w, "           ChEBI: %d\n", m.ChEBIID)
			}
			if m.Formula != "" {
				fmt.Fprintf(w, "           formula: %s  mass: %.4f\n", m.Formula, m.MassAvg)
			}
		}
	}

	if verbose {
		aliases := db.Aliases()
		keys := make([]string, 0, len(aliases))
		for k := range aliases {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fmt.Fprintf(w, "\nAliases:\n")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s -> %s\n", k, aliases[k])
		}
	}
}

func printExpectations(w io.Writer, pos core.SprinzlPosition, expectations []core.PositionModExpectation) {
	critical := ""
	if core.IsCriticalPosition(pos) {
		critical = " (critical)"
	}
	fmt.Fprintf(w, "Position %s%s\n", pos, critical)

	if len(expectations) == 0 {
		fmt.Fprintf(w, "  no modifications expected\n")
		return
	}

	for _, exp := range expectations {
		names := make([]string, len(exp.Modifications))
		for i, m := range exp.Modifications {
			names[i] = m.ShortName
		}
		scope := "all isotypes"
		if len(exp.Isotypes) > 0 {
			isos := make([]string, len(exp.Isotypes))
			for i, iso := range exp.Isotypes {
				isos[i] = string(iso)
			}
			scope = strings.Join(isos, ",")
		}
		fmt.Fprintf(w, "  %-8s %-16s %-22s %s\n", strings.Join(names, "|"), exp.Conservation, exp.FunctionalRole, scope)
		if verbose {
			for _, m := range exp.Modifications {
				fmt.Fprintf(w, "           %s: genomic %s, incompatible with %s\n", m.ShortName, m.GenomicExpectation, formatBases(m.IncompatibleBases))
			}
		}
	}
}

func formatBases(bases []core.RnaBase) string {
	parts := make([]string, len(bases))
	for i, b := range bases {
		parts[i] = b.String()
	}
	return strings.Join(parts, ",")
}

// sortedPositions orders positions by the standard table, unknown labels last
func sortedPositions(counts map[core.SprinzlPosition]int) []core.SprinzlPosition {
	mapper := core.StandardMapper()
	out := make([]core.SprinzlPosition, 0, len(counts))
	for pos := range counts {
		out = append(out, pos)
	}
	slices.SortFunc(out, func(a, b core.SprinzlPosition) int {
		ca, okA := mapper.ColumnForLabel(a)
		cb, okB := mapper.ColumnForLabel(b)
		switch {
		case okA && okB:
			return ca - cb
		case okA:
			return -1
		case okB:
			return 1
		}
		return strings.Compare(string(a), string(b))
	})
	return out
}
