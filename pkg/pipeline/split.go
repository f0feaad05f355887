package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
	"github.com/ChrisMcGann/mcqc/pkg/writer/tsv"
)

// SplitResult lists the per-sample tables written
type SplitResult struct {
	Samples []string
	Dir     string
}

// Split projects the wide export at cfg.InputTable into one narrow table per
// sample under step1-split. No sample columns is a warning, not an error.
func Split(ctx context.Context, cfg Config) (*SplitResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.InputTable == "" {
		return nil, &core.ValidationError{Field: "input", Message: "wide export table is required"}
	}
	layout := cfg.layout()
	res := &SplitResult{Dir: layout.SplitDir()}

	f, err := os.Open(cfg.InputTable)
	if err != nil {
		return nil, &core.MissingArtifactError{Artifact: "input table", Path: cfg.InputTable}
	}
	defer f.Close()

	wide, err := table.ReadWide(f)
	if err != nil {
		if errors.Is(err, core.ErrEmptyInput) {
			logger.Warn("No sample quantity columns found", zap.String("path", cfg.InputTable))
			return res, nil
		}
		return nil, fmt.Errorf("%s: %w", cfg.InputTable, err)
	}

	if err := os.MkdirAll(layout.SplitDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create split directory: %w", err)
	}

	for _, s := range wide.Samples {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := safeName(s.Name)
		header := []string{table.ProteinGroupColumn, table.PeptideColumn, s.Header}
		if err := tsv.WriteFile(layout.Split(name), header, wide.Project(s)); err != nil {
			return res, fmt.Errorf("failed to write sample %s: %w", name, err)
		}
		res.Samples = append(res.Samples, name)
		logger.Info("Sample table written", zap.String("sample", name), zap.String("path", layout.Split(name)))
	}
	return res, nil
}
