// Package qc computes per-sample missed-cleavage statistics: site
// detection, fragment-pair quantification and the summary record.
package qc

import (
	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/enzyme"
	"github.com/ChrisMcGann/mcqc/pkg/index"
)

// Detector finds the missed-cleavage sites of an observed peptide.
// Implementations are pure: the same peptide always yields the same sites.
type Detector interface {
	Sites(peptide string) (core.Sites, error)
}

// NewDetector picks the detector variant for an enzyme. Context-aware
// enzymes need the index; the generic variant ignores it.
func NewDetector(e enzyme.Enzyme, idx index.Index) Detector {
	if e.ContextAware {
		return ContextDetector{Enzyme: e, Index: idx}
	}
	return GenericDetector{Enzyme: e}
}

// GenericDetector applies the enzyme rule to the bare peptide string, with
// the same directionality and blocker the digestion uses.
type GenericDetector struct {
	Enzyme enzyme.Enzyme
}

// Sites returns the internal cleavage sites the enzyme would have cut.
func (d GenericDetector) Sites(peptide string) (core.Sites, error) {
	seq := peptide
	e := d.Enzyme
	var sites core.Sites

	switch e.Terminus {
	case enzyme.CTerm:
		for i := 0; i < len(seq)-1; i++ {
			if e.IsTarget(seq[i]) && (e.Blocker == 0 || seq[i+1] != e.Blocker) {
				sites = append(sites, core.Site{Pos: i, Next: seq[i+1]})
			}
		}
	case enzyme.NTerm:
		for i := 1; i < len(seq); i++ {
			if e.IsTarget(seq[i]) && (e.Blocker == 0 || seq[i-1] != e.Blocker) {
				sites = append(sites, core.Site{Pos: i - 1, Next: seq[i]})
			}
		}
	}
	return sites, nil
}

// ContextDetector classifies sites using where the peptide sits in its
// protein. Every target residue before the last position counts, except a
// leading target residue that follows a target residue in the protein, and a
// penultimate target residue directly before a final target residue.
type ContextDetector struct {
	Enzyme enzyme.Enzyme
	Index  index.Index
}

// Sites returns the internal sites annotated with their following residue.
// A peptide absent from the index has no sites.
func (d ContextDetector) Sites(peptide string) (core.Sites, error) {
	occs, err := d.Index.Occurrences(peptide)
	if err != nil {
		return nil, err
	}
	if len(occs) == 0 {
		return nil, nil
	}

	seq := peptide
	n := len(seq)
	e := d.Enzyme
	pre := occs[0].Preceding

	var sites core.Sites
	for i := 0; i < n-1; i++ {
		if !e.IsTarget(seq[i]) {
			continue
		}
		if i == 0 && e.IsTarget(pre) {
			continue
		}
		if i == n-2 && e.IsTarget(seq[n-1]) {
			continue
		}
		sites = append(sites, core.Site{Pos: i, Next: seq[i+1]})
	}
	return sites, nil
}
