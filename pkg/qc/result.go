package qc

import (
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

// Columns of the per-sample MC1 fragment table
const (
	ColProteinGroup   = table.ProteinGroupColumn
	ColPeptide        = table.PeptideColumn
	ColQuantity       = "MC.PEP.Quantity"
	ColSites          = "Missed.Cleavages.Sites"
	ColCount          = "Missed.Cleavages.Count"
	ColNotP           = "Missed.Cleavages.notP"
	ColUniqueness     = "Uniqueness"
	ColPep1           = "PEP.1"
	ColPep2           = "PEP.2"
	ColPep1Uniqueness = "PEP.1.Uniqueness"
	ColPep2Uniqueness = "PEP.2.Uniqueness"
	ColPep1Quantity   = "PEP.1.Quantity"
	ColPep2Quantity   = "PEP.2.Quantity"
	ColNMCQuantity    = "NMC.PEP.Quantity"
	ColRatio          = "Missed.Cleavage.Ratio"
	ColInferred       = "Missed.Cleavage.Inferred"
)

// FragmentHeader is the column order of FragmentRow.Record
var FragmentHeader = []string{
	ColProteinGroup, ColPeptide, ColQuantity,
	ColSites, ColCount, ColNotP, ColUniqueness,
	ColPep1, ColPep2, ColPep1Uniqueness, ColPep2Uniqueness,
	ColPep1Quantity, ColPep2Quantity, ColNMCQuantity,
	ColRatio, ColInferred,
}

// Record renders the row in FragmentHeader order
func (f FragmentRow) Record() []string {
	return []string{
		f.ProteinGroup,
		f.Peptide,
		core.FormatFloat(f.Quantity),
		f.Sites.String(),
		strconv.Itoa(f.Sites.Count()),
		formatBool(f.NotP),
		f.Uniqueness.String(),
		f.Pep1,
		f.Pep2,
		f.Pep1Uniqueness.String(),
		f.Pep2Uniqueness.String(),
		core.FormatFloat(f.Pep1Quantity),
		core.FormatFloat(f.Pep2Quantity),
		core.FormatFloat(f.NMCQuantity),
		core.FormatFloat(f.MCR),
		formatBool(f.Inferred),
	}
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// OrganismCount is the number of protein groups tagged with one organism
// suffix, e.g. "_HUMAN".
type OrganismCount struct {
	Tag   string
	Count int
}

// Result is the summary record of one sample. It is built once by Summarize.
type Result struct {
	SampleName   string
	PeptideCount int
	ProteinCount int
	Organisms    []OrganismCount

	MCPepCountWithP int // peptides with any internal site
	MCPepCount      int // same, excluding sites only before the exception residue
	MCRPep          core.Fraction

	RatioPeptideUniqueness    core.Fraction
	RatioMultiproteinsInGroup core.Fraction
	RatioUniquenessMC1Peptide core.Fraction

	SumMCPepQuant float64
	SumPepQuant   float64
	MCRPepQuant   core.Fraction

	RatioMC1AndUniqPeptide core.Fraction
	MC1PeptideCount        int
	MC2PeptideCount        int

	MC100PepCount    core.Fraction
	MC100PepCountLen core.Fraction
	MC100PepInferred core.Fraction
}

// Header returns the column names of Record. Organism columns depend on the
// tags the result was computed with.
func (r *Result) Header() []string {
	h := []string{"sample_name", "peptide_count", "protein_count"}
	for _, o := range r.Organisms {
		h = append(h, "protein_"+strings.ToLower(o.Tag)+"_count")
	}
	return append(h,
		"mc_pep_count_withP",
		"mc_pep_count",
		"mcr_pep",
		"ratio_peptide_uniqueness",
		"ratio_multiproteins_in_group",
		"ratio_uniqueness_mc1_peptide",
		"sum_mc_pep_quant",
		"sum_pep_quant",
		"mcr_pep_quant",
		"ratio_mc1_and_uniq_peptide",
		"mc1_peptide_count",
		"mc2_peptide_count",
		"mc100_pep_count",
		"mc100_pep_count_len",
		"mc100_pep_inferred",
	)
}

// Record renders the result in Header order
func (r *Result) Record() []string {
	rec := []string{r.SampleName, strconv.Itoa(r.PeptideCount), strconv.Itoa(r.ProteinCount)}
	for _, o := range r.Organisms {
		rec = append(rec, strconv.Itoa(o.Count))
	}
	return append(rec,
		strconv.Itoa(r.MCPepCountWithP),
		strconv.Itoa(r.MCPepCount),
		r.MCRPep.String(),
		r.RatioPeptideUniqueness.String(),
		r.RatioMultiproteinsInGroup.String(),
		r.RatioUniquenessMC1Peptide.String(),
		core.FormatFloat(r.SumMCPepQuant),
		core.FormatFloat(r.SumPepQuant),
		r.MCRPepQuant.String(),
		r.RatioMC1AndUniqPeptide.String(),
		strconv.Itoa(r.MC1PeptideCount),
		strconv.Itoa(r.MC2PeptideCount),
		r.MC100PepCount.String(),
		r.MC100PepCountLen.String(),
		r.MC100PepInferred.String(),
	)
}

// Undefined lists the ratios whose denominator was zero
func (r *Result) Undefined() []string {
	var names []string
	for _, f := range []core.Fraction{
		r.MCRPep, r.RatioPeptideUniqueness, r.RatioMultiproteinsInGroup,
		r.RatioUniquenessMC1Peptide, r.MCRPepQuant, r.RatioMC1AndUniqPeptide,
		r.MC100PepCount, r.MC100PepCountLen, r.MC100PepInferred,
	} {
		if !f.Defined() {
			names = append(names, f.Name)
		}
	}
	return names
}
