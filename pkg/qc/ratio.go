package qc

import (
	"fmt"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/index"
)

// FragmentRow is the fragment-pair analysis of one unique MC1 peptide.
type FragmentRow struct {
	PeptideRow

	Pep1, Pep2                     string
	Pep1Uniqueness, Pep2Uniqueness core.Uniqueness
	Pep1Quantity, Pep2Quantity     float64

	NMCQuantity float64 // best fully-cleaved counterpart quantity, 0 if none
	Inferred    bool    // no quantified counterpart: MCR is 100 by definition
	MCR         float64 // missed-cleavage ratio in percent
}

// MissedCleavageRatio returns 100·observed/(observed+candidate), or 100 when
// there is no candidate counterpart quantity.
func MissedCleavageRatio(observed, candidate float64) float64 {
	if candidate > 0 {
		return 100 * observed / (observed + candidate)
	}
	return 100
}

// Fragment splits an MC1 peptide at its site and quantifies both halves.
// quantities maps peptide sequence to its quantity in the same sample.
func Fragment(row PeptideRow, idx index.Index, quantities map[string]float64) (FragmentRow, error) {
	if row.Sites.Count() != 1 {
		return FragmentRow{}, &core.ValidationError{
			Field:   "Missed.Cleavages.Count",
			Message: fmt.Sprintf("peptide %s has %d sites, fragment analysis needs exactly 1", row.Peptide, row.Sites.Count()),
		}
	}
	pos := row.Sites[0].Pos
	if pos < 0 || pos >= len(row.Peptide)-1 {
		return FragmentRow{}, &core.MalformedRowError{
			Field:  "Missed.Cleavages.Sites",
			Value:  row.Sites.String(),
			Reason: fmt.Sprintf("site outside peptide %s", row.Peptide),
		}
	}

	fr := FragmentRow{
		PeptideRow: row,
		Pep1:       row.Peptide[:pos+1],
		Pep2:       row.Peptide[pos+1:],
	}

	var err error
	if fr.Pep1Uniqueness, err = idx.Lookup(fr.Pep1); err != nil {
		return FragmentRow{}, err
	}
	if fr.Pep2Uniqueness, err = idx.Lookup(fr.Pep2); err != nil {
		return FragmentRow{}, err
	}
	fr.Pep1Quantity = quantities[fr.Pep1]
	fr.Pep2Quantity = quantities[fr.Pep2]

	// Unknown halves never count as unique evidence
	if fr.Pep1Uniqueness == core.Unique && fr.Pep1Quantity > 0 {
		fr.NMCQuantity = fr.Pep1Quantity
	}
	if fr.Pep2Uniqueness == core.Unique && fr.Pep2Quantity > fr.NMCQuantity {
		fr.NMCQuantity = fr.Pep2Quantity
	}

	fr.Inferred = fr.NMCQuantity == 0
	fr.MCR = MissedCleavageRatio(row.Quantity, fr.NMCQuantity)
	return fr, nil
}
