package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
)

// Records is a small tab-separated table addressed by column name, used for
// the per-sample outputs read back by the comparison step.
type Records struct {
	Header []string
	Rows   [][]string
}

// ReadRecords reads a header line and rows of the same width.
func ReadRecords(r io.Reader) (*Records, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading header: %w", err)
		}
		return nil, &core.EmptyInputError{What: "header"}
	}

	rec := &Records{Header: splitLine(scanner.Text())}
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := splitLine(text)
		if len(fields) != len(rec.Header) {
			return nil, &core.MalformedRowError{
				Line:   line,
				Field:  "row",
				Value:  text,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(rec.Header), len(fields)),
			}
		}
		rec.Rows = append(rec.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReadRecordsFile opens and reads a TSV file
func ReadRecordsFile(path string) (*Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rec, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Columns resolves column names to indexes. A missing column is a
// *core.ValidationError.
func (r *Records) Columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, err := columnIndex(r.Header, name)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	return idx, nil
}
