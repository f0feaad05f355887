package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mcqc/pkg/compare"
	"github.com/ChrisMcGann/mcqc/pkg/pipeline"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare missed-cleavage ratios across samples",
	Long: `Merge the per-sample summaries and compare the MC1 ratio tables of
<out>/step2-qc. Writes to <out>/step3-compare:
  merged_qc.tsv       all sample summaries
  common_medians.tsv  median ratio per sample over the common peptides
  mcr_long.tsv        every MC1 ratio, one row per sample and peptide
  mcr_wide.tsv        peptide x sample ratios measured in every sample
  mc_aa_count.tsv     K/R site counts by following residue

Samples are taken in file-name order; the first one seeds the common-peptide
intersection.`,
	RunE: runCompare,
}

func init() {
	addStrictFlag(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	fmt.Printf("Comparing samples in %s...\n", cfg.OutputDir)
	c, err := pipeline.Compare(context.Background(), cfg)
	if err != nil {
		return err
	}
	printComparison(c, cfg)
	return nil
}

func printComparison(c *compare.Comparison, cfg pipeline.Config) {
	fmt.Printf("\nComparison complete!\n")
	fmt.Printf("Samples: %d\n", len(c.Samples))
	fmt.Printf("Common peptides: %d\n", len(c.Common))
	fmt.Printf("Peptides measured in every sample: %d\n", len(c.Matrix.Peptides))
	if c.Skipped > 0 {
		fmt.Printf("Skipped: %d rows (malformed sites)\n", c.Skipped)
	}
	fmt.Printf("Output: %s\n", pipeline.Layout{Root: cfg.OutputDir}.CompareDir())
}
