// Package filter implements the sample filtering stage: only peptides
// observed in the sample are kept and exact duplicate rows are collapsed.
package filter

import (
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

// Config holds filtering configuration
type Config struct {
	MinQuantity float64 // drop rows quantified below this value (0 = keep all observed rows)
}

// Stats reports what Apply removed
type Stats struct {
	Input      int
	Missing    int // rows without a quantity
	BelowMin   int
	Duplicates int
	Output     int
}

// Apply removes unobserved rows, then collapses exact duplicates keeping the
// first occurrence. The input slice is not modified.
func (c *Config) Apply(rows []table.Row) ([]table.Row, Stats) {
	stats := Stats{Input: len(rows)}

	observed := RemoveMissing(rows)
	stats.Missing = len(rows) - len(observed)

	if c.MinQuantity > 0 {
		kept := make([]table.Row, 0, len(observed))
		for _, r := range observed {
			if r.Quantity >= c.MinQuantity {
				kept = append(kept, r)
			}
		}
		stats.BelowMin = len(observed) - len(kept)
		observed = kept
	}

	unique := Deduplicate(observed)
	stats.Duplicates = len(observed) - len(unique)
	stats.Output = len(unique)

	return unique, stats
}

// RemoveMissing keeps only rows that carry a quantity
func RemoveMissing(rows []table.Row) []table.Row {
	var filtered []table.Row
	for _, r := range rows {
		if r.Observed() {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Deduplicate drops rows identical in every field to an earlier row
func Deduplicate(rows []table.Row) []table.Row {
	seen := make(map[table.Row]struct{}, len(rows))
	var filtered []table.Row
	for _, r := range rows {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		filtered = append(filtered, r)
	}
	return filtered
}
