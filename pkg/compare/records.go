package compare

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

// MergeQC concatenates per-sample summary tables. All tables must share the
// same header, which differs only when samples were run with other organism tags.
func MergeQC(tables []*table.Records) (*table.Records, error) {
	if len(tables) == 0 {
		return nil, &core.EmptyInputError{What: "QC summary tables"}
	}
	merged := &table.Records{Header: tables[0].Header}
	for i, t := range tables {
		if !sameHeader(t.Header, merged.Header) {
			return nil, &core.ValidationError{
				Field:   "header",
				Message: fmt.Sprintf("summary table %d has columns %v, expected %v", i+1, t.Header, merged.Header),
			}
		}
		merged.Rows = append(merged.Rows, t.Rows...)
	}
	return merged, nil
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Table headers of the comparison outputs
var (
	MedianHeader = []string{"Sample", "Common_Peptides", "Median_MCR"}
	LongHeader   = []string{"Condition", "MC_PEP", "NMC_PEP", "MC_PEP_Quant", "NMC_PEP_Quant", "MCR", "Log2MC_PEP_Quant", "Log2NMC_PEP_Quant"}
)

// MedianRecords renders the per-sample medians
func (c *Comparison) MedianRecords() [][]string {
	out := make([][]string, len(c.Medians))
	for i, m := range c.Medians {
		out[i] = []string{m.Sample, strconv.Itoa(m.Rows), core.FormatFloat(m.Median)}
	}
	return out
}

// LongRecords renders the stacked ratio rows. The counterpart peptide is not
// tracked per row and is always NA.
func (c *Comparison) LongRecords() [][]string {
	out := make([][]string, len(c.Long))
	for i, r := range c.Long {
		out[i] = []string{
			r.Condition,
			r.Peptide,
			"NA",
			core.FormatFloat(r.Quantity),
			core.FormatFloat(r.NMCQuantity),
			core.FormatFloat(r.MCR),
			core.FormatFloat(log2(r.Quantity)),
			core.FormatFloat(log2(r.NMCQuantity)),
		}
	}
	return out
}

func log2(v float64) float64 {
	if v <= 0 {
		return math.NaN()
	}
	return math.Log2(v)
}

// WideHeader is the header of WideRecords
func (c *Comparison) WideHeader() []string {
	return append([]string{"MC_PEP"}, c.Matrix.Samples...)
}

// WideRecords renders the peptide by sample matrix
func (c *Comparison) WideRecords() [][]string {
	out := make([][]string, len(c.Matrix.Peptides))
	for i, p := range c.Matrix.Peptides {
		rec := []string{p}
		for _, v := range c.Matrix.Values[i] {
			rec = append(rec, core.FormatFloat(v))
		}
		out[i] = rec
	}
	return out
}

// MotifHeader is the header of MotifRecords
func MotifHeader() []string {
	h := []string{"Sample", "PRE_AA"}
	for _, aa := range AminoAcids {
		h = append(h, string(aa))
	}
	return h
}

// MotifRecords renders the motif counts
func (c *Comparison) MotifRecords() [][]string {
	out := make([][]string, len(c.Motifs))
	for i, m := range c.Motifs {
		rec := []string{m.Sample, string(m.Pre)}
		for _, n := range m.Counts {
			rec = append(rec, strconv.Itoa(n))
		}
		out[i] = rec
	}
	return out
}
