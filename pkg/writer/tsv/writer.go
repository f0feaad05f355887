// Package tsv writes the tab-separated result tables
package tsv

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
)

// Writer writes one TSV file. Output goes to a temporary file that Close
// renames into place, so a failed sample never leaves a partial table.
type Writer struct {
	file       *os.File
	buf        *bufio.Writer
	outputPath string
	ncols      int
	closed     bool
}

// NewWriter creates the parent directory and writes the header line
func NewWriter(path string, header []string) (*Writer, error) {
	if len(header) == 0 {
		return nil, &core.ValidationError{Field: "header", Message: "no columns"}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := &Writer{file: f, buf: bufio.NewWriter(f), outputPath: path, ncols: len(header)}
	if err := w.writeLine(header); err != nil {
		w.Abort()
		return nil, err
	}
	return w, nil
}

// Write appends one record. It must have as many fields as the header.
func (w *Writer) Write(record []string) error {
	if len(record) != w.ncols {
		return &core.ValidationError{
			Field:   "record",
			Message: fmt.Sprintf("%d fields, header has %d", len(record), w.ncols),
		}
	}
	return w.writeLine(record)
}

func (w *Writer) writeLine(fields []string) error {
	for _, f := range fields {
		if strings.ContainsAny(f, "\t\r\n") {
			return &core.MalformedRowError{Field: "field", Value: f, Reason: "contains a tab or line break"}
		}
	}
	_, err := w.buf.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// Close flushes the file and moves it to its final path
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		os.Remove(w.file.Name())
		return fmt.Errorf("failed to write %s: %w", w.outputPath, err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.file.Name())
		return err
	}
	if err := os.Chmod(w.file.Name(), 0o644); err != nil {
		os.Remove(w.file.Name())
		return err
	}
	if err := os.Rename(w.file.Name(), w.outputPath); err != nil {
		os.Remove(w.file.Name())
		return fmt.Errorf("failed to move %s into place: %w", w.outputPath, err)
	}
	return nil
}

// Abort discards everything written so far
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.file.Close()
	return os.Remove(w.file.Name())
}

// WriteFile writes a complete table in one call
func WriteFile(path string, header []string, records [][]string) error {
	w, err := NewWriter(path, header)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}
