package table

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
)

var (
	sampleColumnPattern = regexp.MustCompile(`\.PEP\.Quantity$`)
	runPrefixPattern    = regexp.MustCompile(`^\[\d+\]\s+`)
)

// SampleColumn is one quantity column of a wide export.
type SampleColumn struct {
	Name   string // sample name derived from the column header
	Header string
	Index  int
}

// Wide is a multi-sample DIA export held in memory.
type Wide struct {
	Header  []string
	Samples []SampleColumn
	Rows    [][]string

	groupIdx   int
	peptideIdx int
}

// ReadWide reads a wide export and locates its sample quantity columns.
// No sample columns is an EmptyInputError.
func ReadWide(r io.Reader) (*Wide, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading header: %w", err)
		}
		return nil, &core.EmptyInputError{What: "header"}
	}

	w := &Wide{Header: splitLine(scanner.Text())}
	var err error
	if w.groupIdx, err = columnIndex(w.Header, ProteinGroupColumn); err != nil {
		return nil, err
	}
	if w.peptideIdx, err = columnIndex(w.Header, PeptideColumn); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i, h := range w.Header {
		if !sampleColumnPattern.MatchString(h) {
			continue
		}
		name := SampleName(h)
		if seen[name] {
			return nil, &core.ValidationError{Field: "header", Message: fmt.Sprintf("duplicate sample name %q", name)}
		}
		seen[name] = true
		w.Samples = append(w.Samples, SampleColumn{Name: name, Header: h, Index: i})
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line)
		if len(fields) != len(w.Header) {
			return nil, &core.MalformedRowError{
				Line:   lineNum,
				Field:  "row",
				Value:  line,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(w.Header), len(fields)),
			}
		}
		w.Rows = append(w.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading wide table: %w", err)
	}

	if len(w.Samples) == 0 {
		return w, &core.EmptyInputError{What: "sample quantity columns"}
	}
	return w, nil
}

// Project returns the narrow [protein group, peptide, quantity] rows of one sample.
func (w *Wide) Project(s SampleColumn) [][]string {
	out := make([][]string, len(w.Rows))
	for i, fields := range w.Rows {
		out[i] = []string{fields[w.groupIdx], fields[w.peptideIdx], fields[s.Index]}
	}
	return out
}

// SampleName derives a sample name from a quantity column header:
// "[3] S1_rep2.PEP.Quantity" → "S1_rep2".
func SampleName(header string) string {
	name := runPrefixPattern.ReplaceAllString(strings.TrimSpace(header), "")
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}
