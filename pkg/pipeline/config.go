// Package pipeline runs the QC stages over the on-disk layout: digest the
// protein database, split the wide export, QC every sample on a bounded
// worker pool, then compare the samples.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/digest"
	"github.com/ChrisMcGann/mcqc/pkg/enzyme"
	"github.com/ChrisMcGann/mcqc/pkg/filter"
	"github.com/ChrisMcGann/mcqc/pkg/index"
	"github.com/ChrisMcGann/mcqc/pkg/qc"
)

// Config is everything the stages need. The CLI fills it from flags and
// environment defaults.
type Config struct {
	OutputDir  string
	FastaPath  string // protein database, used by Digest
	InputTable string // wide DIA export, used by Split

	Enzyme           string
	MissedCleavages  int
	MinLength        int
	MaxLength        int
	ExciseMethionine bool

	Workers      int
	OrganismTags []string
	StrictRows   bool
	MinQuantity  float64
	SQLiteDriver string // driver QC workers read the index with
	PreloadIndex bool   // load the index into memory once and share it between workers
	BatchSize    int    // index writer transaction size
}

// DefaultConfig returns the settings used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		OutputDir:       "mcqc-out",
		Enzyme:          "trypsin/p",
		MissedCleavages: 2,
		MinLength:       7,
		MaxLength:       50,
		Workers:         4,
		OrganismTags:    append([]string(nil), qc.DefaultOrganismTags...),
		SQLiteDriver:    index.DriverCGO,
	}
}

// Validate checks the settings shared by all stages
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return &core.ValidationError{Field: "output", Message: "output directory is required"}
	}
	if _, ok := enzyme.Get(c.Enzyme); !ok {
		return &core.ValidationError{
			Field:   "enzyme",
			Message: fmt.Sprintf("unknown enzyme %q (known: %s)", c.Enzyme, strings.Join(enzyme.Names(), ", ")),
		}
	}
	if c.Workers < 1 {
		return &core.ValidationError{Field: "workers", Message: fmt.Sprintf("must be at least 1, got %d", c.Workers)}
	}
	if c.MinQuantity < 0 {
		return &core.ValidationError{Field: "min-quantity", Message: "must not be negative"}
	}
	switch c.SQLiteDriver {
	case "", index.DriverCGO, index.DriverPure:
	default:
		return &core.ValidationError{
			Field:   "sqlite-driver",
			Message: fmt.Sprintf("unknown driver %q, use %s or %s", c.SQLiteDriver, index.DriverCGO, index.DriverPure),
		}
	}
	_, err := c.Engine()
	return err
}

// Engine returns the validated digestion engine
func (c *Config) Engine() (digest.Engine, error) {
	e, ok := enzyme.Get(c.Enzyme)
	if !ok {
		return digest.Engine{}, &core.ValidationError{Field: "enzyme", Message: fmt.Sprintf("unknown enzyme %q", c.Enzyme)}
	}
	eng := digest.Engine{
		Enzyme:           e,
		MissedCleavages:  c.MissedCleavages,
		MinLength:        c.MinLength,
		MaxLength:        c.MaxLength,
		ExciseMethionine: c.ExciseMethionine,
	}
	if err := eng.Validate(); err != nil {
		return digest.Engine{}, err
	}
	return eng, nil
}

func (c *Config) qcOptions() qc.Options {
	return qc.Options{
		Enzyme:       enzyme.MustGet(c.Enzyme),
		OrganismTags: c.OrganismTags,
		Filter:       filter.Config{MinQuantity: c.MinQuantity},
		StrictRows:   c.StrictRows,
	}
}

func (c *Config) layout() Layout {
	return Layout{Root: c.OutputDir}
}
