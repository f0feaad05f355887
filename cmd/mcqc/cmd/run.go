package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mcqc/pkg/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run digest, split, qc and compare in one go",
	Long: `Run the whole pipeline. Without --in, the existing <out>/step1-split tables
are used.

Examples:
  mcqc run --fasta uniprot_human.fasta --in report.tsv --out results --workers 8`,
	RunE: runAll,
}

func init() {
	addDigestFlags(runCmd)
	addSplitFlags(runCmd)
	addQCFlags(runCmd)
	runCmd.MarkFlagRequired("fasta")
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	fmt.Printf("Running mcqc with %s on %s...\n", cfg.Enzyme, cfg.FastaPath)
	res, err := pipeline.Run(context.Background(), cfg)
	if res != nil {
		if res.Digest != nil {
			printDigest(res.Digest)
		}
		if res.Split != nil {
			printSplit(res.Split)
		}
		if res.QC != nil {
			printReport(res.QC)
		}
		if res.Comparison != nil {
			printComparison(res.Comparison, cfg)
		}
	}
	return err
}
