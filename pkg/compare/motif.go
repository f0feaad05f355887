package compare

import (
	"errors"
	"fmt"

	"github.com/ChrisMcGann/mcqc/pkg/core"
)

// AminoAcids is the 20-residue alphabet of the motif table, sorted
var AminoAcids = []byte("ACDEFGHIKLMNPQRSTVWY")

// MotifResidues are the residues before the uncut bond that are tabulated
var MotifResidues = []byte("KR")

// MotifRow counts MC1 sites of one sample with one residue before the uncut
// bond, by the residue after it (AminoAcids order).
type MotifRow struct {
	Sample string
	Pre    byte
	Counts []int
}

// Motifs tabulates the residue pairs around the single site of every MC1
// row. Rows whose site field cannot be parsed are returned as skipped, or
// abort the tabulation when strict is set. Every sample gets one row per
// motif residue even when it has no sites.
func Motifs(samples []*Sample, strict bool) ([]MotifRow, []*core.MalformedRowError, error) {
	post := make(map[byte]int, len(AminoAcids))
	for i, aa := range AminoAcids {
		post[aa] = i
	}

	var out []MotifRow
	var skipped []*core.MalformedRowError
	for _, s := range samples {
		rows := make(map[byte]*MotifRow, len(MotifResidues))
		for _, pre := range MotifResidues {
			rows[pre] = &MotifRow{Sample: s.Name, Pre: pre, Counts: make([]int, len(AminoAcids))}
		}

		for _, r := range s.Rows {
			if r.Count != 1 {
				continue
			}
			site, err := singleSite(r)
			if err != nil {
				var mre *core.MalformedRowError
				if strict || !errors.As(err, &mre) {
					return nil, nil, fmt.Errorf("sample %s: %w", s.Name, err)
				}
				skipped = append(skipped, mre)
				continue
			}
			mr, ok := rows[r.Peptide[site.Pos]]
			if !ok {
				continue
			}
			if i, ok := post[site.Next]; ok {
				mr.Counts[i]++
			}
		}

		for _, pre := range MotifResidues {
			out = append(out, *rows[pre])
		}
	}
	return out, skipped, nil
}

func singleSite(r Row) (core.Site, error) {
	sites, err := core.ParseSites(r.Sites)
	if err != nil {
		var mre *core.MalformedRowError
		if errors.As(err, &mre) {
			mre.Line = r.Line
		}
		return core.Site{}, err
	}
	if len(sites) != 1 || sites[0].Pos >= len(r.Peptide) {
		return core.Site{}, &core.MalformedRowError{
			Field:  "Missed.Cleavages.Sites",
			Value:  r.Sites,
			Reason: fmt.Sprintf("expected one site inside %s", r.Peptide),
			Line:   r.Line,
		}
	}
	return sites[0], nil
}
