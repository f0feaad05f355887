// Package fasta provides a streaming reader for protein sequence databases
package fasta

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// Protein is one database entry.
type Protein struct {
	ID     string // identifier used in occurrence descriptors
	Header string // full header line without '>'
	Seq    []byte // upper-case residues
}

// Reader provides streaming access to a FASTA protein database (plain or gzipped)
type Reader struct {
	path    string
	fx      *fastx.Reader
	count   int
	current *Protein
	err     error
}

// NewReader opens path for reading. "-" reads from stdin.
func NewReader(path string) (*Reader, error) {
	if path != "-" {
		if _, err := os.Stat(path); err != nil {
			return nil, &core.MissingArtifactError{Artifact: "protein database", Path: path}
		}
	}
	fx, err := fastx.NewReader(seq.Protein, path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open protein database: %w", err)
	}
	return &Reader{path: path, fx: fx}, nil
}

// Next advances to the next protein. Returns false at end of input or on error.
func (r *Reader) Next() bool {
	r.current = nil
	if r.err != nil {
		return false
	}

	rec, err := r.fx.Read()
	if err != nil {
		if err != io.EOF {
			r.err = fmt.Errorf("%s: entry %d: %w", r.path, r.count+1, err)
		}
		return false
	}
	r.count++

	header := string(rec.Name)
	id, err := ProteinID(header)
	if err != nil {
		r.err = fmt.Errorf("%s: entry %d: %w", r.path, r.count, err)
		return false
	}

	// records are reused by fastx; copy the residues out
	r.current = &Protein{
		ID:     id,
		Header: header,
		Seq:    bytes.ToUpper(append([]byte(nil), rec.Seq.Seq...)),
	}
	return true
}

// Protein returns the current protein
func (r *Reader) Protein() *Protein {
	return r.current
}

// Count returns the number of entries read so far
func (r *Reader) Count() int {
	return r.count
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying file
func (r *Reader) Close() {
	r.fx.Close()
}

// ProteinID extracts the identifier from a header: the last pipe-delimited
// field of the first whitespace-delimited token ("sp|P02768|ALBU_HUMAN ..." → "ALBU_HUMAN").
func ProteinID(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return "", &core.MalformedRowError{Field: "header", Value: header, Reason: "empty header"}
	}
	parts := strings.Split(fields[0], "|")
	id := parts[len(parts)-1]
	if id == "" {
		return "", &core.MalformedRowError{Field: "header", Value: header, Reason: "no protein identifier after the last '|'"}
	}
	return id, nil
}
