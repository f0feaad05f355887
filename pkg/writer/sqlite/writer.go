// Package sqlite provides SQLite database writing for the occurrence index
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/index"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for digest_info (ISO 8601)
	creationDateFormat = "2006-01-02T15:04:05Z07:00"

	// DefaultBatchSize bounds the number of buffered occurrences per transaction
	DefaultBatchSize = 5000

	stagingTable = "occurrences"
)

type occurrenceRow struct {
	peptide    string
	descriptor string
}

// Writer builds the occurrence index. Occurrences are staged in batched
// transactions and folded into one row per peptide by Finalize.
type Writer struct {
	db         *sql.DB
	outputPath string
	runID      string
	batchSize  int
	batch      []occurrenceRow
	finalized  bool
}

// NewWriter drops and recreates the index tables at outputPath
func NewWriter(outputPath string, batchSize int) (*Writer, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps staging writes and the final fold on one lock holder
	db.SetMaxOpenConns(1)

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.New().String(),
		batchSize:  batchSize,
		batch:      make([]occurrenceRow, 0, batchSize),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables drops any previous index and creates the schema
func (w *Writer) createTables() error {
	schema := `
	PRAGMA synchronous = OFF;

	DROP TABLE IF EXISTS ` + index.PeptideTable + `;
	DROP TABLE IF EXISTS ` + stagingTable + `;
	DROP TABLE IF EXISTS ` + index.InfoTable + `;

	CREATE TABLE ` + stagingTable + ` (
		peptide TEXT NOT NULL,
		descriptor TEXT NOT NULL,
		PRIMARY KEY (peptide, descriptor)
	) WITHOUT ROWID;

	CREATE TABLE ` + index.InfoTable + ` (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// RunID returns the identifier recorded for this digestion run
func (w *Writer) RunID() string {
	return w.runID
}

// Add buffers one occurrence, flushing a full batch in a single transaction
func (w *Writer) Add(p core.Peptide) error {
	w.batch = append(w.batch, occurrenceRow{peptide: p.Sequence, descriptor: p.Occurrence.String()})
	if len(w.batch) >= w.batchSize {
		return w.flush()
	}
	return nil
}

// flush writes the buffered occurrences; duplicates are ignored by the primary key
func (w *Writer) flush() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO ` + stagingTable + ` (peptide, descriptor) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare occurrence statement: %w", err)
	}
	for _, row := range w.batch {
		if _, err := stmt.Exec(row.peptide, row.descriptor); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to insert occurrence %s %s: %w", row.peptide, row.descriptor, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Finalize folds the staged occurrences into the peptides table, writes the
// digest metadata and closes the database
func (w *Writer) Finalize(info index.Info) error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	if err := w.flush(); err != nil {
		w.db.Close()
		return err
	}

	fold := `
	CREATE TABLE ` + index.PeptideTable + ` (
		peptide TEXT PRIMARY KEY,
		protein TEXT NOT NULL
	);

	INSERT INTO ` + index.PeptideTable + ` (peptide, protein)
	SELECT peptide, group_concat(descriptor, ';' ORDER BY descriptor)
	FROM ` + stagingTable + `
	GROUP BY peptide;

	DROP TABLE ` + stagingTable + `;
	`
	if _, err := w.db.Exec(fold); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to build peptides table: %w", err)
	}

	if info.RunID == "" {
		info.RunID = w.runID
	}
	if info.CreationDate == "" {
		info.CreationDate = time.Now().Format(creationDateFormat)
	}
	if err := w.writeInfo(info); err != nil {
		w.db.Close()
		return err
	}

	if _, err := w.db.Exec(`VACUUM`); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to compact database: %w", err)
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (w *Writer) writeInfo(info index.Info) error {
	m := info.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := w.db.Exec(`INSERT INTO `+index.InfoTable+` (key, value) VALUES (?, ?)`, k, m[k]); err != nil {
			return fmt.Errorf("failed to insert digest info %s: %w", k, err)
		}
	}
	return nil
}

// Close discards an unfinished index. After Finalize it is a no-op.
func (w *Writer) Close() error {
	if w.finalized {
		return nil
	}
	w.finalized = true
	return w.db.Close()
}
