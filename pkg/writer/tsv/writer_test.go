package tsv

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step2-qc", "S1_qc.tsv")
	header := []string{"sample_name", "peptide_count", "mcr_pep"}
	records := [][]string{{"S1", "3", "0.5"}, {"S2", "0", "NA"}}

	if err := WriteFile(path, header, records); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := table.ReadRecordsFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Header, header) || !reflect.DeepEqual(got.Rows, records) {
		t.Errorf("read back %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestWriterRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		target interface{}
	}{
		{"width", []string{"a"}, new(*core.ValidationError)},
		{"tab in field", []string{"a\tb", "c"}, new(*core.MalformedRowError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.tsv")
			w, err := NewWriter(path, []string{"x", "y"})
			if err != nil {
				t.Fatal(err)
			}
			err = w.Write(tt.record)
			if !errors.As(err, tt.target) {
				t.Errorf("Write(%q) error = %v", tt.record, err)
			}
			w.Abort()
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("aborted writer left an output file")
			}
		})
	}
}
