package pipeline

import (
	"context"

	"github.com/ChrisMcGann/mcqc/pkg/compare"
)

// RunResult collects the results of every stage
type RunResult struct {
	Digest     *DigestResult
	Split      *SplitResult
	QC         *Report
	Comparison *compare.Comparison
}

// Run executes Digest, Split, QC and Compare in order. Split is skipped when
// no input table is configured and the split directory is used as is.
// Compare starts only after every QC worker has finished.
func Run(ctx context.Context, cfg Config) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res := &RunResult{}

	var err error
	if res.Digest, err = Digest(ctx, cfg); err != nil {
		return res, err
	}
	if cfg.InputTable != "" {
		if res.Split, err = Split(ctx, cfg); err != nil {
			return res, err
		}
	}
	if res.QC, err = QC(ctx, cfg); err != nil {
		return res, err
	}
	if res.Comparison, err = Compare(ctx, cfg); err != nil {
		return res, err
	}
	return res, nil
}
