package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File and directory names under the output directory
const (
	IndexFile  = "peptides.sqlite"
	SplitDir   = "step1-split"
	QCDir      = "step2-qc"
	CompareDir = "step3-compare"

	SplitSuffix    = ".split.tsv"
	QCSuffix       = "_qc.tsv"
	FragmentSuffix = "_mc2.tsv"

	MergedQCFile = "merged_qc.tsv"
	MediansFile  = "common_medians.tsv"
	LongFile     = "mcr_long.tsv"
	WideFile     = "mcr_wide.tsv"
	MotifFile    = "mc_aa_count.tsv"
)

// Layout resolves artifact paths under one output directory
type Layout struct {
	Root string
}

func (l Layout) Index() string      { return filepath.Join(l.Root, IndexFile) }
func (l Layout) SplitDir() string   { return filepath.Join(l.Root, SplitDir) }
func (l Layout) QCDir() string      { return filepath.Join(l.Root, QCDir) }
func (l Layout) CompareDir() string { return filepath.Join(l.Root, CompareDir) }

func (l Layout) Split(sample string) string {
	return filepath.Join(l.SplitDir(), sample+SplitSuffix)
}

func (l Layout) QC(sample string) string {
	return filepath.Join(l.QCDir(), sample+QCSuffix)
}

func (l Layout) Fragments(sample string) string {
	return filepath.Join(l.QCDir(), sample+FragmentSuffix)
}

func (l Layout) Compare(name string) string {
	return filepath.Join(l.CompareDir(), name)
}

// sampleFile is an artifact of one sample
type sampleFile struct {
	Sample string
	Path   string
}

// listSamples returns the files in dir ending in suffix, sorted by name.
// Sorting fixes which sample seeds the common-peptide intersection.
func listSamples(dir, suffix string) ([]sampleFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []sampleFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) || strings.HasPrefix(name, ".") {
			continue
		}
		out = append(out, sampleFile{
			Sample: strings.TrimSuffix(name, suffix),
			Path:   filepath.Join(dir, name),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sample < out[j].Sample })
	return out, nil
}

// safeName makes a sample name usable as a file name
func safeName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_")
	name = strings.TrimSpace(r.Replace(name))
	if name == "" || name == "." || name == ".." {
		return "sample"
	}
	return name
}
