// Package digest performs in-silico enzymatic digestion of a protein database
package digest

import (
	"context"
	"fmt"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/enzyme"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
	"github.com/ChrisMcGann/mcqc/pkg/reader/fasta"
	"go.uber.org/zap"
)

// Engine enumerates candidate peptides under one cleavage configuration.
type Engine struct {
	Enzyme           enzyme.Enzyme
	MissedCleavages  int  // maximum internal cleavage sites per peptide
	MinLength        int  // inclusive
	MaxLength        int  // inclusive
	ExciseMethionine bool // also digest every protein without its first residue
}

// Validate checks the digestion parameters
func (e Engine) Validate() error {
	if e.Enzyme.Residues == "" {
		return &core.ValidationError{Field: "enzyme", Message: "no target residues"}
	}
	if e.MissedCleavages < 0 {
		return &core.ValidationError{Field: "missed-cleavages", Message: "must be >= 0"}
	}
	if e.MinLength < 1 {
		return &core.ValidationError{Field: "min-length", Message: "must be >= 1"}
	}
	if e.MaxLength < e.MinLength {
		return &core.ValidationError{Field: "max-length", Message: fmt.Sprintf("%d is below min-length %d", e.MaxLength, e.MinLength)}
	}
	return nil
}

// Digest returns one Peptide per digestion event of the protein. In
// methionine-excision mode the excised digest is appended to the full one.
func (e Engine) Digest(protein string, seq []byte) []core.Peptide {
	out := e.digestFrom(protein, seq, 0, nil)
	if e.ExciseMethionine && len(seq) > 1 {
		out = e.digestFrom(protein, seq, 1, out)
	}
	return out
}

// digestFrom digests seq[offset:] and reports offsets and flanking residues
// relative to the full sequence.
func (e Engine) digestFrom(protein string, seq []byte, offset int, out []core.Peptide) []core.Peptide {
	sub := seq[offset:]
	if len(sub) < e.MinLength {
		return out
	}

	bounds := make([]int, 0, 8)
	bounds = append(bounds, 0)
	bounds = append(bounds, e.Enzyme.CutPoints(sub)...)
	bounds = append(bounds, len(sub))

	for i := 0; i < len(bounds)-1; i++ {
		last := i + e.MissedCleavages + 1
		if last > len(bounds)-1 {
			last = len(bounds) - 1
		}
		for j := i + 1; j <= last; j++ {
			ln := bounds[j] - bounds[i]
			if ln > e.MaxLength {
				break
			}
			if ln < e.MinLength {
				continue
			}
			start := offset + bounds[i]
			end := offset + bounds[j]
			out = append(out, core.Peptide{
				Sequence: string(seq[start:end]),
				Occurrence: core.Occurrence{
					Protein:   protein,
					Start:     start,
					Preceding: flank(seq, start-1),
					Following: flank(seq, end),
				},
			})
		}
	}
	return out
}

func flank(seq []byte, i int) byte {
	if i < 0 || i >= len(seq) {
		return core.Boundary
	}
	return seq[i]
}

// Source yields proteins; *fasta.Reader implements it.
type Source interface {
	Next() bool
	Protein() *fasta.Protein
	Err() error
}

// Sink receives digestion events. Sinks deduplicate identical occurrences.
type Sink interface {
	Add(p core.Peptide) error
}

// Stats summarizes one Build run
type Stats struct {
	Proteins    int
	Occurrences int
	Empty       int // proteins that produced no peptide
}

// Build digests every protein of src into sink.
func (e Engine) Build(ctx context.Context, src Source, sink Sink) (Stats, error) {
	var stats Stats
	if err := e.Validate(); err != nil {
		return stats, err
	}

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		p := src.Protein()
		peps := e.Digest(p.ID, p.Seq)
		if len(peps) == 0 {
			stats.Empty++
			logger.Debug("Protein yields no peptides", zap.String("protein", p.ID), zap.Int("length", len(p.Seq)))
		}
		for _, pep := range peps {
			if err := sink.Add(pep); err != nil {
				return stats, fmt.Errorf("failed to store peptide %s of %s: %w", pep.Sequence, p.ID, err)
			}
		}
		stats.Proteins++
		stats.Occurrences += len(peps)
		if stats.Proteins%5000 == 0 {
			logger.Info("Digesting proteins...", zap.Int("proteins", stats.Proteins), zap.Int("occurrences", stats.Occurrences))
		}
	}
	if err := src.Err(); err != nil {
		return stats, fmt.Errorf("error reading protein database: %w", err)
	}
	if stats.Proteins == 0 {
		return stats, &core.EmptyInputError{What: "protein entries"}
	}
	return stats, nil
}
