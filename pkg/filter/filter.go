// Package filter provides result filtering for compatibility reports
package filter

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/trnakey/pkg/analysis"
	"github.com/ChrisMcGann/trnakey/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	Threshold    float64             // Keep only results scoring below this (0 = no threshold)
	OddOnly      bool                // Keep only results flagged odd
	Isotypes     []string            // Keep only these isotypes (nil = all)
	Severities   []analysis.Severity // Report only these severities (nil = all)
	CriticalOnly bool                // Report only incompatibilities at critical positions
}

// Apply trims the incompatibility list of a result and reports whether the
// result should be kept. The score and odd verdict are never changed.
func (c *Config) Apply(r *analysis.ModCompatibilityResult) bool {
	// Trim the reported findings first
	if len(c.Severities) > 0 || c.CriticalOnly {
		c.filterIncompatibilities(r)
	}

	if c.OddOnly && !r.IsOdd {
		return false
	}

	if c.Threshold > 0 && r.CompatibilityScore >= c.Threshold {
		return false
	}

	if len(c.Isotypes) > 0 && !matchesIsotype(r.Hit.Isotype, c.Isotypes) {
		return false
	}

	return true
}

// filterIncompatibilities keeps only findings matching the severity and
// position settings
func (c *Config) filterIncompatibilities(r *analysis.ModCompatibilityResult) {
	var filtered []analysis.ModificationIncompatibility
	for _, inc := range r.Incompatibilities {
		if c.CriticalOnly && !core.IsCriticalPosition(inc.Position) {
			continue
		}
		if len(c.Severities) > 0 && !containsSeverity(c.Severities, inc.Severity) {
			continue
		}
		filtered = append(filtered, inc)
	}
	r.Incompatibilities = filtered
}

func containsSeverity(list []analysis.Severity, s analysis.Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// matchesIsotype compares isotype labels after canonicalization
func matchesIsotype(isotype string, allowed []string) bool {
	iso, ok := core.ParseIsotype(isotype)
	if !ok {
		return false
	}
	for _, a := range allowed {
		if want, ok := core.ParseIsotype(a); ok && want == iso {
			return true
		}
	}
	return false
}

// ParseSeverities parses a comma-separated severity list (e.g., "critical,major")
func ParseSeverities(list string) ([]analysis.Severity, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	var out []analysis.Severity
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		s, err := analysis.ParseSeverity(part)
		if err != nil {
			return nil, fmt.Errorf("invalid severity list '%s': %w", list, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// AtLeast returns every severity at least as severe as floor
func AtLeast(floor analysis.Severity) []analysis.Severity {
	var out []analysis.Severity
	for _, s := range []analysis.Severity{analysis.Critical, analysis.Major, analysis.Minor} {
		if s <= floor {
			out = append(out, s)
		}
	}
	return out
}

// Results applies the config to each result and returns the kept ones
func (c *Config) Results(results []analysis.ModCompatibilityResult) []analysis.ModCompatibilityResult {
	var kept []analysis.ModCompatibilityResult
	for i := range results {
		r := results[i]
		if c.Apply(&r) {
			kept = append(kept, r)
		}
	}
	return kept
}
