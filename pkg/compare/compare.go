package compare

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
)

// Comparison holds every cross-sample table
type Comparison struct {
	Samples []string
	Common  []string
	Medians []SampleMedian
	Long    []LongRow
	Matrix  *Matrix
	Motifs  []MotifRow
	Skipped int // MC1 rows with an unusable site field
}

// Compare runs all comparison steps over the samples in the given order.
// The first sample seeds the common-peptide intersection.
func Compare(samples []*Sample, strict bool) (*Comparison, error) {
	c := &Comparison{}
	for _, s := range samples {
		c.Samples = append(c.Samples, s.Name)
	}

	c.Common = CommonPeptides(samples)
	c.Medians = Medians(samples, c.Common)
	c.Long = Long(samples)

	var dups []Duplicate
	c.Matrix, dups = Pivot(samples)
	for _, d := range dups {
		logger.Warn("Duplicate peptide in sample, keeping first ratio",
			zap.String("sample", d.Sample), zap.String("peptide", d.Peptide))
	}

	var skipped []*core.MalformedRowError
	var err error
	c.Motifs, skipped, err = Motifs(samples, strict)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		logger.Warn("Skipped row with malformed site", zap.Int("line", s.Line), zap.String("value", s.Value))
	}
	c.Skipped = len(skipped)

	return c, nil
}

// CommonPeptides intersects the peptide sets of all samples, starting from the
// first one. The result is sorted; no samples or an empty first sample give
// an empty set.
func CommonPeptides(samples []*Sample) []string {
	if len(samples) == 0 {
		return nil
	}
	common := samples[0].Peptides()
	for _, s := range samples[1:] {
		next := s.Peptides()
		for p := range common {
			if _, ok := next[p]; !ok {
				delete(common, p)
			}
		}
	}

	out := make([]string, 0, len(common))
	for p := range common {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SampleMedian is the median ratio of one sample over the common peptides
type SampleMedian struct {
	Sample string
	Rows   int
	Median float64 // NaN when the sample has no common rows
}

// Medians restricts each sample to the common peptides and takes the median MCR
func Medians(samples []*Sample, common []string) []SampleMedian {
	keep := make(map[string]struct{}, len(common))
	for _, p := range common {
		keep[p] = struct{}{}
	}

	out := make([]SampleMedian, 0, len(samples))
	for _, s := range samples {
		var vals []float64
		for _, r := range s.Rows {
			if _, ok := keep[r.Peptide]; ok {
				vals = append(vals, r.MCR)
			}
		}
		out = append(out, SampleMedian{Sample: s.Name, Rows: len(vals), Median: Median(vals)})
	}
	return out
}

// Median of the non-NaN values; NaN if there are none
func Median(values []float64) float64 {
	v := make([]float64, 0, len(values))
	for _, x := range values {
		if !math.IsNaN(x) {
			v = append(v, x)
		}
	}
	if len(v) == 0 {
		return math.NaN()
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return (v[mid-1] + v[mid]) / 2
}

// LongRow is one sample's ratio for one MC1 peptide
type LongRow struct {
	Condition   string
	Peptide     string
	Quantity    float64
	NMCQuantity float64
	MCR         float64
}

// Long stacks the ratio rows of all samples
func Long(samples []*Sample) []LongRow {
	var out []LongRow
	for _, s := range samples {
		for _, r := range s.Rows {
			out = append(out, LongRow{
				Condition:   s.Name,
				Peptide:     r.Peptide,
				Quantity:    r.Quantity,
				NMCQuantity: r.NMCQuantity,
				MCR:         r.MCR,
			})
		}
	}
	return out
}

// Matrix is the peptide by sample ratio table. Only peptides with a measured
// ratio in every sample are rows.
type Matrix struct {
	Samples  []string
	Peptides []string
	Values   [][]float64 // Values[peptide][sample]
}

// Duplicate is a second ratio for the same peptide in one sample
type Duplicate struct {
	Sample  string
	Peptide string
}

// Pivot builds the Matrix from measured ratios. Inferred 100% ratios are
// left out, so a peptide lacking counterpart evidence in any sample drops.
func Pivot(samples []*Sample) (*Matrix, []Duplicate) {
	m := &Matrix{}
	cells := make(map[string][]float64)
	var dups []Duplicate

	for j, s := range samples {
		m.Samples = append(m.Samples, s.Name)
		for _, r := range s.Rows {
			if !r.Measured() || math.IsNaN(r.MCR) {
				continue
			}
			row, ok := cells[r.Peptide]
			if !ok {
				row = make([]float64, len(samples))
				for k := range row {
					row[k] = math.NaN()
				}
				cells[r.Peptide] = row
			}
			if !math.IsNaN(row[j]) {
				dups = append(dups, Duplicate{Sample: s.Name, Peptide: r.Peptide})
				continue
			}
			row[j] = r.MCR
		}
	}

	for p, row := range cells {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			m.Peptides = append(m.Peptides, p)
		}
	}
	sort.Strings(m.Peptides)
	for _, p := range m.Peptides {
		m.Values = append(m.Values, cells[p])
	}
	return m, dups
}
