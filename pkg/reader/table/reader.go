// Package table provides streaming readers for tab-separated peptide quantity tables
package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
)

// Column names of the DIA export
const (
	ProteinGroupColumn = "PG.ProteinNames"
	PeptideColumn      = "PEP.StrippedSequence"
)

const maxLineSize = 16 << 20

// Row is one peptide quantity in one sample. Quantity is NaN when the
// peptide was not observed.
type Row struct {
	ProteinGroup string
	Peptide      string
	Quantity     float64
}

// Observed reports whether the row carries a quantity.
func (r Row) Observed() bool { return !math.IsNaN(r.Quantity) }

// Reader provides streaming access to a per-sample split table
type Reader struct {
	scanner    *bufio.Scanner
	lineNum    int
	sample     string
	groupIdx   int
	peptideIdx int
	quantIdx   int
	ncols      int
	current    Row
	err        error
}

// NewReader reads and validates the header of a per-sample table. The
// quantity column is the last column and must not be one of the named columns.
func NewReader(r io.Reader) (*Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading header: %w", err)
		}
		return nil, &core.EmptyInputError{What: "header"}
	}
	header := splitLine(scanner.Text())

	rd := &Reader{scanner: scanner, lineNum: 1, ncols: len(header)}
	var err error
	if rd.groupIdx, err = columnIndex(header, ProteinGroupColumn); err != nil {
		return nil, err
	}
	if rd.peptideIdx, err = columnIndex(header, PeptideColumn); err != nil {
		return nil, err
	}

	rd.quantIdx = len(header) - 1
	if rd.quantIdx == rd.groupIdx || rd.quantIdx == rd.peptideIdx {
		return nil, &core.ValidationError{Field: "header", Message: "last column must be the sample quantity column"}
	}
	rd.sample = header[rd.quantIdx]

	return rd, nil
}

// Sample returns the name of the quantity column
func (r *Reader) Sample() string {
	return r.sample
}

// Next advances to the next row. Returns false at end of input or on error.
func (r *Reader) Next() bool {
	for r.scanner.Scan() {
		r.lineNum++
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line)
		if len(fields) != r.ncols {
			r.err = &core.MalformedRowError{
				Line:   r.lineNum,
				Field:  "row",
				Value:  line,
				Reason: fmt.Sprintf("expected %d fields, got %d", r.ncols, len(fields)),
			}
			return false
		}

		q, err := ParseQuantity(fields[r.quantIdx])
		if err != nil {
			var mr *core.MalformedRowError
			if errors.As(err, &mr) {
				mr.Line = r.lineNum
			}
			r.err = err
			return false
		}

		r.current = Row{
			ProteinGroup: fields[r.groupIdx],
			Peptide:      strings.TrimSpace(fields[r.peptideIdx]),
			Quantity:     q,
		}
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = err
	}
	return false
}

// Row returns the current row
func (r *Reader) Row() Row {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads a whole per-sample table.
func ReadAll(r io.Reader) (string, []Row, error) {
	rd, err := NewReader(r)
	if err != nil {
		return "", nil, err
	}
	var rows []Row
	for rd.Next() {
		rows = append(rows, rd.Row())
	}
	if err := rd.Err(); err != nil {
		return "", nil, err
	}
	return rd.Sample(), rows, nil
}

var missingTokens = map[string]bool{
	"":         true,
	"NA":       true,
	"N/A":      true,
	"NAN":      true,
	"FILTERED": true,
}

// ParseQuantity parses a quantity cell; missing-value tokens give NaN.
// A non-numeric or negative value is a *core.MalformedRowError.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if missingTokens[strings.ToUpper(s)] {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &core.MalformedRowError{Field: "quantity", Value: s, Reason: "not a number"}
	}
	if v < 0 || math.IsInf(v, 0) {
		return 0, &core.MalformedRowError{Field: "quantity", Value: s, Reason: "quantity must be a finite non-negative number"}
	}
	return v, nil
}

func splitLine(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r"), "\t")
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, &core.ValidationError{Field: "header", Message: fmt.Sprintf("required column %q not found", name)}
}
