// Package compare merges per-sample QC outputs: common-peptide medians, the
// peptide by sample ratio matrix and missed-cleavage motif counts.
package compare

import (
	"math"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/qc"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

// Row is one MC1 ratio row read back from a sample's fragment table
type Row struct {
	Peptide     string
	Quantity    float64
	NMCQuantity float64
	MCR         float64
	Count       int
	Sites       string // raw site field, parsed only for motifs
	Line        int
}

// Measured reports whether both the missed-cleaved form and its counterpart
// were quantified, i.e. the ratio is not an inferred 100.
func (r Row) Measured() bool {
	return r.Quantity > 0 && r.NMCQuantity > 0
}

// Sample is the fragment table of one sample
type Sample struct {
	Name string
	Rows []Row
}

// Peptides returns the distinct peptides of the sample
func (s *Sample) Peptides() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Rows))
	for _, r := range s.Rows {
		set[r.Peptide] = struct{}{}
	}
	return set
}

// LoadSample reads a fragment table written by the QC stage
func LoadSample(name, path string) (*Sample, error) {
	rec, err := table.ReadRecordsFile(path)
	if err != nil {
		return nil, err
	}
	cols, err := rec.Columns(qc.ColPeptide, qc.ColQuantity, qc.ColNMCQuantity, qc.ColRatio, qc.ColCount, qc.ColSites)
	if err != nil {
		return nil, err
	}

	s := &Sample{Name: name, Rows: make([]Row, 0, len(rec.Rows))}
	for i, fields := range rec.Rows {
		line := i + 2
		r := Row{Peptide: fields[cols[0]], Sites: fields[cols[5]], Line: line}
		if r.Quantity, err = parseFloat(qc.ColQuantity, fields[cols[1]], line); err != nil {
			return nil, err
		}
		if r.NMCQuantity, err = parseFloat(qc.ColNMCQuantity, fields[cols[2]], line); err != nil {
			return nil, err
		}
		if r.MCR, err = parseFloat(qc.ColRatio, fields[cols[3]], line); err != nil {
			return nil, err
		}
		if r.Count, err = strconv.Atoi(strings.TrimSpace(fields[cols[4]])); err != nil {
			return nil, &core.MalformedRowError{Field: qc.ColCount, Value: fields[cols[4]], Reason: "not an integer", Line: line}
		}
		s.Rows = append(s.Rows, r)
	}
	return s, nil
}

func parseFloat(field, s string, line int) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "NA") || s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &core.MalformedRowError{Field: field, Value: s, Reason: "not a number", Line: line}
	}
	return v, nil
}
