package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/index"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
	"github.com/ChrisMcGann/mcqc/pkg/qc"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
	"github.com/ChrisMcGann/mcqc/pkg/writer/tsv"
)

// Report is the outcome of a QC run. A failed sample has no outputs.
type Report struct {
	Succeeded []string
	Failed    []*core.WorkerFailure
}

type sampleResult struct {
	job    sampleFile
	output *qc.Output
	err    error
}

// QC analyzes every split table on a pool of cfg.Workers goroutines. Each
// worker opens its own read-only index, unless cfg.PreloadIndex shares one
// in-memory copy. Missing upstream artifacts stop the stage before any worker
// starts; a failing sample is logged and reported.
func QC(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout := cfg.layout()

	if _, err := os.Stat(layout.Index()); err != nil {
		return nil, &core.MissingArtifactError{Artifact: "occurrence index", Path: layout.Index(), Hint: "run mcqc digest first"}
	}
	jobs, err := listSamples(layout.SplitDir(), SplitSuffix)
	if err != nil || len(jobs) == 0 {
		return nil, &core.MissingArtifactError{Artifact: "split tables", Path: layout.SplitDir(), Hint: "run mcqc split first"}
	}
	if err := checkIndex(layout.Index(), cfg); err != nil {
		return nil, err
	}
	var shared index.Index
	if cfg.PreloadIndex {
		mem, err := preloadIndex(layout.Index(), cfg.SQLiteDriver)
		if err != nil {
			return nil, err
		}
		shared = mem
	}
	if err := os.MkdirAll(layout.QCDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create QC directory: %w", err)
	}

	opts := cfg.qcOptions()
	workers := cfg.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	logger.Info("Running QC", zap.Int("samples", len(jobs)), zap.Int("workers", workers))

	jobCh := make(chan sampleFile, workers*2)
	results := make(chan sampleResult, workers*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			idx := shared
			var openErr error
			if idx == nil {
				store, err := qc.LoadIndex(layout.Index(), cfg.SQLiteDriver)
				if err == nil {
					defer store.Close()
					idx = store
				}
				openErr = err
			}
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobCh:
					if !ok {
						return
					}
					res := sampleResult{job: j, err: openErr}
					if openErr == nil {
						res.output, res.err = runSample(j, idx, opts, layout)
					}
					select {
					case results <- res:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector
	report := &Report{}
	var cwg sync.WaitGroup
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for res := range results {
			if res.err != nil {
				wf := &core.WorkerFailure{Sample: res.job.Sample, Path: res.job.Path, Err: res.err}
				logger.Error("Sample failed", zap.String("sample", wf.Sample), zap.String("path", wf.Path), zap.Error(wf.Err))
				report.Failed = append(report.Failed, wf)
				continue
			}
			r := res.output.Result
			logger.Info("Sample done",
				zap.String("sample", r.SampleName),
				zap.Int("peptides", r.PeptideCount),
				zap.Int("mc1_rows", len(res.output.Fragments)),
				zap.Int("skipped_rows", len(res.output.Skipped)),
				zap.String("path", layout.QC(res.job.Sample)))
			report.Succeeded = append(report.Succeeded, res.job.Sample)
		}
	}()

	// Feed work
feed:
	for _, j := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case jobCh <- j:
		}
	}

	close(jobCh)
	wg.Wait()
	close(results)
	cwg.Wait()

	sort.Strings(report.Succeeded)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Sample < report.Failed[j].Sample })

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// checkIndex warns when the index was built with other digestion settings
func checkIndex(path string, cfg Config) error {
	store, err := index.OpenStore(path, cfg.SQLiteDriver)
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := store.Info()
	if err != nil {
		return err
	}
	if info.Enzyme != "" && info.Enzyme != cfg.Enzyme {
		logger.Warn("Index was built with a different enzyme",
			zap.String("path", store.Path()),
			zap.String("index_enzyme", info.Enzyme),
			zap.String("enzyme", cfg.Enzyme),
			zap.String("run_id", info.RunID))
	}
	n, err := store.Count()
	if err != nil {
		return err
	}
	if n == 0 {
		logger.Warn("Index is empty, every peptide will be Unknown", zap.String("path", store.Path()))
	}
	return nil
}

// preloadIndex copies the persisted index into memory for all workers to share
func preloadIndex(path, driver string) (*index.Memory, error) {
	store, err := qc.LoadIndex(path, driver)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	mem, err := index.Load(store)
	if err != nil {
		return nil, &qc.StageError{Stage: qc.StageLoadIndex, Err: err}
	}
	logger.Info("Index loaded into memory",
		zap.String("path", store.Path()),
		zap.Int("peptides", mem.Len()),
		zap.Int("occurrences", mem.OccurrenceCount()))
	return mem, nil
}

// runSample reads one split table, analyzes it and writes its two outputs.
// Outputs of an earlier run are removed first so a failure leaves none behind.
func runSample(j sampleFile, idx index.Index, opts qc.Options, layout Layout) (*qc.Output, error) {
	qcPath, fragPath := layout.QC(j.Sample), layout.Fragments(j.Sample)
	for _, p := range []string{qcPath, fragPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	f, err := os.Open(j.Path)
	if err != nil {
		return nil, &core.MissingArtifactError{Artifact: "split table", Path: j.Path}
	}
	_, rows, err := table.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read sample table: %w", err)
	}

	out, err := qc.Analyze(j.Sample, rows, idx, opts)
	if err != nil {
		return nil, err
	}

	frags := make([][]string, len(out.Fragments))
	for i, fr := range out.Fragments {
		frags[i] = fr.Record()
	}
	if err := tsv.WriteFile(fragPath, qc.FragmentHeader, frags); err != nil {
		return nil, err
	}
	if err := tsv.WriteFile(qcPath, out.Result.Header(), [][]string{out.Result.Record()}); err != nil {
		os.Remove(fragPath)
		return nil, err
	}
	return out, nil
}
