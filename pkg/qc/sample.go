package qc

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/enzyme"
	"github.com/ChrisMcGann/mcqc/pkg/filter"
	"github.com/ChrisMcGann/mcqc/pkg/index"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

// MinFragmentLength is the length at which a fragment counts toward
// mc100_pep_count_len.
const MinFragmentLength = 7

// DefaultOrganismTags are the protein name suffixes counted per sample
var DefaultOrganismTags = []string{"HUMAN", "MOUSE"}

// Stage names one step of the per-sample state machine
type Stage int

const (
	StageLoadIndex Stage = iota
	StageFilterSample
	StageClassifySites
	StageComputeUniqueness
	StageComputeRatios
	StageSummarize
)

var stageNames = [...]string{
	"LoadIndex",
	"FilterSample",
	"ClassifySites",
	"ComputeUniqueness",
	"ComputeRatios",
	"Summarize",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageError is the error a sample aborts with
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Options configures Analyze
type Options struct {
	Enzyme       enzyme.Enzyme
	OrganismTags []string
	Filter       filter.Config
	StrictRows   bool // abort on a malformed row instead of skipping it
}

// PeptideRow is an observed peptide after site classification
type PeptideRow struct {
	table.Row
	Sites      core.Sites
	NotP       bool
	RawSites   int // internal target residues, blocker ignored
	Uniqueness core.Uniqueness
}

// Output is everything one sample produces
type Output struct {
	Result    Result
	Fragments []FragmentRow
	Skipped   []string // peptides dropped as malformed
}

// LoadIndex opens the read-only index for one sample's worker
func LoadIndex(path, driver string) (*index.Store, error) {
	s, err := index.OpenStore(path, driver)
	if err != nil {
		return nil, &StageError{Stage: StageLoadIndex, Err: err}
	}
	return s, nil
}

// Analyze runs FilterSample through Summarize over one sample's rows. rows is
// not modified.
func Analyze(sample string, rows []table.Row, idx index.Index, opt Options) (*Output, error) {
	if idx == nil {
		return nil, &StageError{Stage: StageLoadIndex, Err: errors.New("no index")}
	}
	tags := opt.OrganismTags
	if tags == nil {
		tags = DefaultOrganismTags
	}

	filtered, fstats := opt.Filter.Apply(rows)
	logger.Debug("Filtered sample",
		zap.String("sample", sample),
		zap.Int("input", fstats.Input),
		zap.Int("missing", fstats.Missing),
		zap.Int("duplicates", fstats.Duplicates),
		zap.Int("output", fstats.Output))
	counts := countObserved(filtered, tags)

	det := NewDetector(opt.Enzyme, idx)
	classified, skipped, err := ClassifySites(filtered, det, opt.Enzyme, opt.StrictRows)
	if err != nil {
		return nil, &StageError{Stage: StageClassifySites, Err: err}
	}
	for _, p := range skipped {
		logger.Warn("Skipped malformed row", zap.String("sample", sample), zap.String("peptide", p))
	}

	classified, err = ComputeUniqueness(classified, idx)
	if err != nil {
		return nil, &StageError{Stage: StageComputeUniqueness, Err: err}
	}

	quantities, dups := QuantityMap(classified)
	for _, p := range dups {
		logger.Debug("Duplicate peptide quantity, keeping first", zap.String("sample", sample), zap.String("peptide", p))
	}

	frags, err := ComputeRatios(classified, idx, quantities)
	if err != nil {
		return nil, &StageError{Stage: StageComputeRatios, Err: err}
	}

	result, err := Summarize(sample, counts, classified, frags)
	if err != nil {
		return nil, &StageError{Stage: StageSummarize, Err: err}
	}
	if undef := result.Undefined(); len(undef) > 0 {
		logger.Warn("Ratios undefined, written as NA",
			zap.String("sample", sample),
			zap.Strings("statistics", undef))
	}

	return &Output{Result: result, Fragments: frags, Skipped: skipped}, nil
}

// Observed holds the identification counts taken before classification
type Observed struct {
	Peptides  int
	Proteins  int
	Organisms []OrganismCount
}

func countObserved(rows []table.Row, tags []string) Observed {
	peptides := make(map[string]struct{})
	groups := make(map[string]struct{})
	for _, r := range rows {
		peptides[r.Peptide] = struct{}{}
		groups[r.ProteinGroup] = struct{}{}
	}

	obs := Observed{Peptides: len(peptides), Proteins: len(groups)}
	for _, tag := range tags {
		n := 0
		for g := range groups {
			if strings.Contains(g, "_"+tag) {
				n++
			}
		}
		obs.Organisms = append(obs.Organisms, OrganismCount{Tag: tag, Count: n})
	}
	return obs
}

// ClassifySites annotates each row with its missed-cleavage sites. A
// malformed row is skipped and its peptide returned, unless strict is set.
func ClassifySites(rows []table.Row, det Detector, e enzyme.Enzyme, strict bool) ([]PeptideRow, []string, error) {
	out := make([]PeptideRow, 0, len(rows))
	var skipped []string
	for _, r := range rows {
		sites, err := det.Sites(r.Peptide)
		if err != nil {
			var mre *core.MalformedRowError
			if !strict && errors.As(err, &mre) {
				skipped = append(skipped, r.Peptide)
				continue
			}
			return nil, nil, fmt.Errorf("peptide %s: %w", r.Peptide, err)
		}
		out = append(out, PeptideRow{
			Row:      r,
			Sites:    sites,
			NotP:     sites.NotP(e.Exception),
			RawSites: RawSiteCount(e, r.Peptide, sites),
		})
	}
	return out, skipped, nil
}

// RawSiteCount counts the internal sites of a peptide with the enzyme's
// blocker lifted, so a K before P still counts for trypsin. Context-aware
// detectors already report those sites and their count is returned as is.
func RawSiteCount(e enzyme.Enzyme, peptide string, sites core.Sites) int {
	if e.ContextAware || e.Blocker == 0 {
		return sites.Count()
	}
	e.Blocker = 0
	raw, _ := GenericDetector{Enzyme: e}.Sites(peptide)
	return raw.Count()
}

// ComputeUniqueness returns a copy of rows with Uniqueness set from the index
func ComputeUniqueness(rows []PeptideRow, idx index.Index) ([]PeptideRow, error) {
	out := make([]PeptideRow, len(rows))
	for i, r := range rows {
		u, err := idx.Lookup(r.Peptide)
		if err != nil {
			return nil, fmt.Errorf("peptide %s: %w", r.Peptide, err)
		}
		r.Uniqueness = u
		out[i] = r
	}
	return out, nil
}

// QuantityMap maps each peptide to its first quantity. Peptides seen again
// with another row are returned in dups.
func QuantityMap(rows []PeptideRow) (map[string]float64, []string) {
	m := make(map[string]float64, len(rows))
	var dups []string
	for _, r := range rows {
		if _, ok := m[r.Peptide]; ok {
			dups = append(dups, r.Peptide)
			continue
		}
		m[r.Peptide] = r.Quantity
	}
	return m, dups
}

// ComputeRatios fragments every unique peptide with exactly one site, in row order
func ComputeRatios(rows []PeptideRow, idx index.Index, quantities map[string]float64) ([]FragmentRow, error) {
	var frags []FragmentRow
	for _, r := range rows {
		if r.Uniqueness != core.Unique || r.Sites.Count() != 1 {
			continue
		}
		fr, err := Fragment(r, idx, quantities)
		if err != nil {
			return nil, fmt.Errorf("peptide %s: %w", r.Peptide, err)
		}
		frags = append(frags, fr)
	}
	return frags, nil
}

// Summarize builds the sample record. Zero observed peptides make mcr_pep
// undefined and fail the sample; other empty denominators stay NA.
func Summarize(sample string, obs Observed, rows []PeptideRow, frags []FragmentRow) (Result, error) {
	if obs.Peptides == 0 {
		return Result{}, &core.DivisionUndefinedError{Statistic: "mcr_pep"}
	}

	r := Result{
		SampleName:   sample,
		PeptideCount: obs.Peptides,
		ProteinCount: obs.Proteins,
		Organisms:    obs.Organisms,
	}

	var uniq, multi, mc1NotP, mc1NotPUniq, uniqMC1 int
	for _, row := range rows {
		n := row.Sites.Count()
		unique := row.Uniqueness == core.Unique

		r.SumPepQuant += row.Quantity
		if row.RawSites > 0 {
			r.MCPepCountWithP++
		}
		if n > 0 && row.NotP {
			r.MCPepCount++
			r.SumMCPepQuant += row.Quantity
		}
		if unique {
			uniq++
		}
		if strings.Contains(row.ProteinGroup, ";") {
			multi++
		}
		if n == 1 && row.NotP {
			mc1NotP++
			if unique {
				mc1NotPUniq++
			}
		}
		if unique && n == 1 {
			uniqMC1++
		}
		if unique && row.NotP {
			switch n {
			case 1:
				r.MC1PeptideCount++
			case 2:
				r.MC2PeptideCount++
			}
		}
	}

	var mc100, mc100Len, inferred int
	for _, f := range frags {
		if f.Inferred {
			inferred++
		}
		if f.MCR == 100 && f.NotP {
			mc100++
			if len(f.Pep1) >= MinFragmentLength || len(f.Pep2) >= MinFragmentLength {
				mc100Len++
			}
		}
	}

	total := float64(len(rows))
	nfrags := float64(len(frags))
	r.MCRPep = core.NewFraction("mcr_pep", float64(r.MCPepCount), float64(obs.Peptides))
	r.RatioPeptideUniqueness = core.NewFraction("ratio_peptide_uniqueness", float64(uniq), total)
	r.RatioMultiproteinsInGroup = core.NewFraction("ratio_multiproteins_in_group", float64(multi), total)
	r.RatioUniquenessMC1Peptide = core.NewFraction("ratio_uniqueness_mc1_peptide", float64(mc1NotPUniq), float64(mc1NotP))
	r.MCRPepQuant = core.NewFraction("mcr_pep_quant", r.SumMCPepQuant, r.SumPepQuant)
	r.RatioMC1AndUniqPeptide = core.NewFraction("ratio_mc1_and_uniq_peptide", float64(uniqMC1), float64(uniq))
	r.MC100PepCount = core.NewFraction("mc100_pep_count", float64(mc100), nfrags)
	r.MC100PepCountLen = core.NewFraction("mc100_pep_count_len", float64(mc100Len), nfrags)
	r.MC100PepInferred = core.NewFraction("mc100_pep_inferred", float64(inferred), nfrags)

	return r, nil
}
