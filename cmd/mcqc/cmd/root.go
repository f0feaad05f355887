// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ChrisMcGann/mcqc/pkg/enzyme"
	"github.com/ChrisMcGann/mcqc/pkg/logger"
	"github.com/ChrisMcGann/mcqc/pkg/pipeline"
)

// Environment variables that provide flag defaults
const (
	envOutputDir    = "MCQC_OUTPUT_DIR"
	envEnzyme       = "MCQC_ENZYME"
	envWorkers      = "MCQC_WORKERS"
	envSQLiteDriver = "MCQC_SQLITE_DRIVER"
)

var defaults = pipeline.DefaultConfig()

var (
	// Persistent flags
	outputDir    string
	enzymeName   string
	workers      int
	sqliteDriver string
	verbose      bool

	// Digestion flags
	fastaPath        string
	missedCleavages  int
	minLength        int
	maxLength        int
	exciseMethionine bool
	batchSize        int

	// Split flags
	inputTable string

	// QC flags
	organisms    string
	strictRows   bool
	minQuantity  float64
	preloadIndex bool
)

var rootCmd = &cobra.Command{
	Use:   "mcqc",
	Short: "mcqc - Missed-cleavage QC for DIA peptide tables",
	Long: `mcqc measures digestion efficiency in DIA proteomics experiments.

It digests a protein database in silico into a peptide occurrence index, then
uses the index to compute per-sample missed-cleavage statistics and compare
them across samples:
- digest:  protein FASTA -> peptides.sqlite
- split:   wide DIA export -> one table per sample
- qc:      per-sample missed-cleavage ratios and summary
- compare: common-peptide medians, ratio matrix and motif counts
- run:     all of the above`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(qcCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(runCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&outputDir, "out", "o", defaults.OutputDir, "Output directory (env "+envOutputDir+")")
	pf.StringVarP(&enzymeName, "enzyme", "e", defaults.Enzyme, "Enzyme: "+strings.Join(enzyme.Names(), ", ")+" (env "+envEnzyme+")")
	pf.IntVarP(&workers, "workers", "w", defaults.Workers, "Number of QC worker goroutines (env "+envWorkers+")")
	pf.StringVar(&sqliteDriver, "sqlite-driver", defaults.SQLiteDriver, "SQLite driver for reading the index: sqlite3 (cgo) or sqlite (pure Go) (env "+envSQLiteDriver+")")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func addDigestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&fastaPath, "fasta", "f", "", "Protein database in FASTA format (required)")
	cmd.Flags().IntVar(&missedCleavages, "missed-cleavages", defaults.MissedCleavages, "Maximum missed cleavages per peptide")
	cmd.Flags().IntVar(&minLength, "min-length", defaults.MinLength, "Minimum peptide length")
	cmd.Flags().IntVar(&maxLength, "max-length", defaults.MaxLength, "Maximum peptide length")
	cmd.Flags().BoolVar(&exciseMethionine, "excise-met", false, "Also digest every protein without its initiator methionine")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Occurrences per index transaction (0 = default)")
}

func addSplitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputTable, "in", "i", "", "Wide DIA export with <sample>.PEP.Quantity columns")
}

func addQCFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&organisms, "organisms", strings.Join(defaults.OrganismTags, ","), "Comma-separated protein name suffixes to count per sample")
	cmd.Flags().Float64Var(&minQuantity, "min-quantity", 0, "Ignore peptides quantified below this value (0 = keep all)")
	cmd.Flags().BoolVar(&preloadIndex, "preload-index", false, "Load the index into memory once and share it between workers")
	addStrictFlag(cmd)
}

func addStrictFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&strictRows, "strict", false, "Abort on a malformed row instead of skipping it")
}

// setup loads .env defaults and initializes logging
func setup(cmd *cobra.Command, args []string) error {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	if err := logger.InitLogger(level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env found, using local environment")
	}

	flags := cmd.Flags()
	if v := os.Getenv(envOutputDir); v != "" && !flags.Changed("out") {
		outputDir = v
	}
	if v := os.Getenv(envEnzyme); v != "" && !flags.Changed("enzyme") {
		enzymeName = v
	}
	if v := os.Getenv(envSQLiteDriver); v != "" && !flags.Changed("sqlite-driver") {
		sqliteDriver = v
	}
	if v := os.Getenv(envWorkers); v != "" && !flags.Changed("workers") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envWorkers, v, err)
		}
		workers = n
	}

	logger.Debug("Configuration",
		zap.String("command", cmd.Name()),
		zap.String("out", outputDir),
		zap.String("enzyme", enzymeName),
		zap.Int("workers", workers),
		zap.String("sqlite_driver", sqliteDriver))
	return nil
}

// buildConfig assembles the pipeline configuration from the parsed flags
func buildConfig() pipeline.Config {
	cfg := defaults
	cfg.OutputDir = outputDir
	cfg.Enzyme = strings.ToLower(strings.TrimSpace(enzymeName))
	cfg.Workers = workers
	cfg.SQLiteDriver = sqliteDriver

	cfg.FastaPath = fastaPath
	cfg.MissedCleavages = missedCleavages
	cfg.MinLength = minLength
	cfg.MaxLength = maxLength
	cfg.ExciseMethionine = exciseMethionine
	cfg.BatchSize = batchSize

	cfg.InputTable = inputTable

	cfg.OrganismTags = parseList(organisms)
	cfg.StrictRows = strictRows
	cfg.MinQuantity = minQuantity
	cfg.PreloadIndex = preloadIndex
	return cfg
}

func parseList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
