package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/mcqc/pkg/compare"
	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
	"github.com/ChrisMcGann/mcqc/pkg/writer/tsv"
)

// Compare merges the per-sample summaries and compares the MC1 ratio tables
// found under step2-qc, in sample-name order.
func Compare(ctx context.Context, cfg Config) (*compare.Comparison, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout := cfg.layout()
	if _, err := os.Stat(layout.QCDir()); err != nil {
		return nil, &core.MissingArtifactError{Artifact: "QC outputs", Path: layout.QCDir(), Hint: "run mcqc qc first"}
	}
	if err := os.MkdirAll(layout.CompareDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create compare directory: %w", err)
	}

	if err := mergeQC(layout); err != nil {
		return nil, err
	}

	files, err := listSamples(layout.QCDir(), FragmentSuffix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Warn("No MC1 ratio tables found", zap.String("path", layout.QCDir()))
	}

	samples := make([]*compare.Sample, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := compare.LoadSample(f.Sample, f.Path)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	c, err := compare.Compare(samples, cfg.StrictRows)
	if err != nil {
		return nil, err
	}
	logger.Info("Common peptides", zap.Int("count", len(c.Common)), zap.Int("samples", len(samples)))

	outputs := []struct {
		name    string
		header  []string
		records [][]string
	}{
		{MediansFile, compare.MedianHeader, c.MedianRecords()},
		{LongFile, compare.LongHeader, c.LongRecords()},
		{WideFile, c.WideHeader(), c.WideRecords()},
		{MotifFile, compare.MotifHeader(), c.MotifRecords()},
	}
	for _, o := range outputs {
		if err := tsv.WriteFile(layout.Compare(o.name), o.header, o.records); err != nil {
			return nil, err
		}
	}
	logger.Info("Comparison written",
		zap.String("path", layout.CompareDir()),
		zap.Int("matrix_peptides", len(c.Matrix.Peptides)))

	return c, nil
}

func mergeQC(layout Layout) error {
	files, err := listSamples(layout.QCDir(), QCSuffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("No QC summary files found, skipping merge", zap.String("path", layout.QCDir()))
		return nil
	}

	tables := make([]*table.Records, 0, len(files))
	for _, f := range files {
		t, err := table.ReadRecordsFile(f.Path)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}
	merged, err := compare.MergeQC(tables)
	if err != nil {
		return err
	}
	if err := tsv.WriteFile(layout.Compare(MergedQCFile), merged.Header, merged.Rows); err != nil {
		return err
	}
	logger.Info("Merged QC written", zap.String("path", layout.Compare(MergedQCFile)), zap.Int("samples", len(merged.Rows)))
	return nil
}
