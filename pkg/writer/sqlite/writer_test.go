package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/index"
)

func pep(seq, protein string, start int, pre, post byte) core.Peptide {
	return core.Peptide{
		Sequence:   seq,
		Occurrence: core.Occurrence{Protein: protein, Start: start, Preceding: pre, Following: post},
	}
}

func buildIndex(t *testing.T, path string, batchSize int, peps []core.Peptide) {
	t.Helper()
	w, err := NewWriter(path, batchSize)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	for _, p := range peps {
		if err := w.Add(p); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := w.Finalize(index.Info{Enzyme: "trypsin/p", MissedCleavages: 1, MinLength: 2, MaxLength: 8}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	peps := []core.Peptide{
		pep("PR", "TEST", 2, 'K', 'T'),
		pep("TKAA", "TEST", 4, 'R', '_'),
		pep("TKAA", "P2", 3, 'R', '_'),
		pep("PR", "TEST", 2, 'K', 'T'), // duplicate across batches
		pep("AA", "TEST", 6, 'K', '_'),
	}

	for _, driver := range []string{index.DriverCGO, index.DriverPure} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "peptides.sqlite")
			buildIndex(t, path, 2, peps)

			store, err := index.OpenStore(path, driver)
			if err != nil {
				t.Fatalf("OpenStore() error = %v", err)
			}
			defer store.Close()

			n, err := store.Count()
			if err != nil || n != 3 {
				t.Errorf("Count() = %d, %v; want 3", n, err)
			}

			descs, err := store.Descriptors("TKAA")
			if err != nil {
				t.Fatal(err)
			}
			if len(descs) != 2 || descs[0] != "P2:3:R:_" || descs[1] != "TEST:4:R:_" {
				t.Errorf("Descriptors(TKAA) = %v", descs)
			}

			tests := []struct {
				peptide string
				want    core.Uniqueness
			}{
				{"PR", core.Unique},
				{"TKAA", core.NonUnique},
				{"MISSING", core.Unknown},
			}
			for _, tt := range tests {
				got, err := store.Lookup(tt.peptide)
				if err != nil || got != tt.want {
					t.Errorf("Lookup(%s) = %v, %v; want %v", tt.peptide, got, err, tt.want)
				}
			}

			info, err := store.Info()
			if err != nil {
				t.Fatal(err)
			}
			if info.Enzyme != "trypsin/p" || info.RunID == "" || info.MaxLength != 8 {
				t.Errorf("Info() = %+v", info)
			}

			mem, err := index.Load(store)
			if err != nil {
				t.Fatal(err)
			}
			if mem.Len() != 3 || mem.OccurrenceCount() != 4 {
				t.Errorf("Load() = %d peptides, %d occurrences; want 3, 4", mem.Len(), mem.OccurrenceCount())
			}
		})
	}
}

func TestWriterStoresSortedDescriptors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peptides.sqlite")
	buildIndex(t, path, 1, []core.Peptide{
		pep("TKAA", "ZZZ", 4, 'R', '_'),
		pep("TKAA", "MMM", 9, 'K', 'G'),
		pep("TKAA", "AAA", 3, 'R', '_'),
	})

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var joined string
	if err := db.QueryRow(`SELECT protein FROM `+index.PeptideTable+` WHERE peptide = ?`, "TKAA").Scan(&joined); err != nil {
		t.Fatal(err)
	}
	if want := "AAA:3:R:_;MMM:9:K:G;ZZZ:4:R:_"; joined != want {
		t.Errorf("protein column = %q, want %q", joined, want)
	}
}

func TestWriterRebuildsFromScratch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peptides.sqlite")
	buildIndex(t, path, 10, []core.Peptide{pep("OLDK", "P9", 0, '_', '_')})
	buildIndex(t, path, 10, []core.Peptide{pep("NEWK", "P1", 0, '_', '_')})

	store, err := index.OpenStore(path, "")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if u, _ := store.Lookup("OLDK"); u != core.Unknown {
		t.Errorf("peptide from previous build survived: %v", u)
	}
	if u, _ := store.Lookup("NEWK"); u != core.Unique {
		t.Errorf("Lookup(NEWK) = %v, want Unique", u)
	}
}

func TestWriterCloseWithoutFinalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peptides.sqlite")
	w, err := NewWriter(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	w.Add(pep("PEPK", "P1", 0, '_', '_'))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, index.PeptideTable).Scan(&name)
	if err != sql.ErrNoRows {
		t.Errorf("unfinished index should have no peptides table, got %q, %v", name, err)
	}
}
