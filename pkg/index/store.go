package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQL driver names accepted by OpenStore
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// Table names shared with the index writer
const (
	PeptideTable = "peptides"
	InfoTable    = "digest_info"
)

// Info describes the digestion run that produced an index
type Info struct {
	RunID            string
	Enzyme           string
	MissedCleavages  int
	MinLength        int
	MaxLength        int
	ExciseMethionine bool
	CreationDate     string
}

// Map returns the key/value form stored in the digest_info table
func (i Info) Map() map[string]string {
	return map[string]string{
		"run_id":            i.RunID,
		"enzyme":            i.Enzyme,
		"missed_cleavages":  strconv.Itoa(i.MissedCleavages),
		"min_length":        strconv.Itoa(i.MinLength),
		"max_length":        strconv.Itoa(i.MaxLength),
		"excise_methionine": strconv.FormatBool(i.ExciseMethionine),
		"creation_date":     i.CreationDate,
	}
}

func infoFromMap(m map[string]string) Info {
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	excise, _ := strconv.ParseBool(m["excise_methionine"])
	return Info{
		RunID:            m["run_id"],
		Enzyme:           m["enzyme"],
		MissedCleavages:  atoi(m["missed_cleavages"]),
		MinLength:        atoi(m["min_length"]),
		MaxLength:        atoi(m["max_length"]),
		ExciseMethionine: excise,
		CreationDate:     m["creation_date"],
	}
}

// Store is a read-only view of a persisted index. Each QC worker opens its own.
type Store struct {
	db     *sql.DB
	path   string
	lookup *sql.Stmt

	mu    sync.Mutex
	cache map[string][]string
}

// OpenStore opens the index at path read-only with the given driver
// (DriverCGO or DriverPure; empty means DriverCGO).
func OpenStore(path, driver string) (*Store, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPure {
		return nil, &core.ValidationError{Field: "sqlite-driver", Message: fmt.Sprintf("unknown driver %q", driver)}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &core.MissingArtifactError{Artifact: "occurrence index", Path: path, Hint: "run 'mcqc digest' first"}
	}

	db, err := sql.Open(driver, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, PeptideTable).Scan(&name)
	if err != nil {
		db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &core.MissingArtifactError{Artifact: "peptides table", Path: path, Hint: "index build did not finish"}
		}
		return nil, fmt.Errorf("failed to inspect index: %w", err)
	}

	stmt, err := db.Prepare(`SELECT protein FROM ` + PeptideTable + ` WHERE peptide = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare lookup statement: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		lookup: stmt,
		cache:  make(map[string][]string),
	}, nil
}

// Path returns the file the store was opened from
func (s *Store) Path() string {
	return s.path
}

// Descriptors returns the sorted occurrence descriptors of a peptide, nil when absent
func (s *Store) Descriptors(peptide string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if descs, ok := s.cache[peptide]; ok {
		return descs, nil
	}

	var joined string
	err := s.lookup.QueryRow(peptide).Scan(&joined)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		joined = ""
	case err != nil:
		return nil, fmt.Errorf("failed to look up peptide %s: %w", peptide, err)
	}

	descs := core.SplitDescriptors(joined)
	s.cache[peptide] = descs
	return descs, nil
}

// Lookup classifies a peptide by its distinct occurrence count
func (s *Store) Lookup(peptide string) (core.Uniqueness, error) {
	descs, err := s.Descriptors(peptide)
	if err != nil {
		return core.Unknown, err
	}
	return core.UniquenessOf(len(descs)), nil
}

// Occurrences returns the parsed occurrences of a peptide, nil when absent
func (s *Store) Occurrences(peptide string) ([]core.Occurrence, error) {
	descs, err := s.Descriptors(peptide)
	if err != nil {
		return nil, err
	}
	return parseDescriptors(descs)
}

// Count returns the number of indexed peptides
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + PeptideTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count peptides: %w", err)
	}
	return n, nil
}

// Info returns the digestion metadata. An index without a metadata table
// yields a zero Info.
func (s *Store) Info() (Info, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, InfoTable).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Info{}, nil
	case err != nil:
		return Info{}, fmt.Errorf("failed to inspect index: %w", err)
	}

	rows, err := s.db.Query(`SELECT key, value FROM ` + InfoTable)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read digest info: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Info{}, fmt.Errorf("failed to read digest info: %w", err)
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return Info{}, fmt.Errorf("failed to read digest info: %w", err)
	}
	return infoFromMap(m), nil
}

// Close releases the statement and connection
func (s *Store) Close() error {
	if s.lookup != nil {
		s.lookup.Close()
	}
	return s.db.Close()
}

// Load copies the whole store into an in-memory snapshot.
func Load(s *Store) (*Memory, error) {
	rows, err := s.db.Query(`SELECT peptide, protein FROM ` + PeptideTable)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	defer rows.Close()

	m := NewMemory()
	for rows.Next() {
		var pep, joined string
		if err := rows.Scan(&pep, &joined); err != nil {
			return nil, fmt.Errorf("failed to read index row: %w", err)
		}
		for _, d := range core.SplitDescriptors(joined) {
			m.AddDescriptor(pep, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return m, nil
}
