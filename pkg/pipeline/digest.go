package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/digest"
	"github.com/ChrisMcGann/mcqc/pkg/index"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
	"github.com/ChrisMcGann/mcqc/pkg/reader/fasta"
	"github.com/ChrisMcGann/mcqc/pkg/writer/sqlite"
)

// DigestResult summarizes one index build
type DigestResult struct {
	digest.Stats
	RunID string
	Path  string
}

// Digest builds the occurrence index from cfg.FastaPath, replacing any
// previous index. An empty protein database gives an empty index and a warning.
func Digest(ctx context.Context, cfg Config) (*DigestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.FastaPath == "" {
		return nil, &core.ValidationError{Field: "fasta", Message: "protein database is required"}
	}
	eng, err := cfg.Engine()
	if err != nil {
		return nil, err
	}
	layout := cfg.layout()
	if err := os.MkdirAll(layout.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	reader, err := fasta.NewReader(cfg.FastaPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	writer, err := sqlite.NewWriter(layout.Index(), cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	defer writer.Close()

	logger.Info("Digesting protein database",
		zap.String("path", cfg.FastaPath),
		zap.String("enzyme", eng.Enzyme.Name),
		zap.Int("missed_cleavages", eng.MissedCleavages),
		zap.Int("min_length", eng.MinLength),
		zap.Int("max_length", eng.MaxLength),
		zap.Bool("excise_methionine", eng.ExciseMethionine))

	stats, err := eng.Build(ctx, reader, writer)
	if err != nil {
		if !errors.Is(err, core.ErrEmptyInput) {
			return nil, err
		}
		logger.Warn("Protein database is empty, writing an empty index", zap.String("path", cfg.FastaPath))
	}

	info := index.Info{
		RunID:            writer.RunID(),
		Enzyme:           eng.Enzyme.Name,
		MissedCleavages:  eng.MissedCleavages,
		MinLength:        eng.MinLength,
		MaxLength:        eng.MaxLength,
		ExciseMethionine: eng.ExciseMethionine,
	}
	if err := writer.Finalize(info); err != nil {
		return nil, fmt.Errorf("failed to finalize index: %w", err)
	}

	logger.Info("Index written",
		zap.String("path", layout.Index()),
		zap.String("run_id", info.RunID),
		zap.Int("proteins", stats.Proteins),
		zap.Int("occurrences", stats.Occurrences))

	return &DigestResult{Stats: stats, RunID: info.RunID, Path: layout.Index()}, nil
}
