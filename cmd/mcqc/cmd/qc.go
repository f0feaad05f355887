package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mcqc/pkg/pipeline"
)

var qcCmd = &cobra.Command{
	Use:   "qc",
	Short: "Compute missed-cleavage statistics for every sample",
	Long: `Analyze every <out>/step1-split/*.split.tsv against the occurrence index and
write <sample>_qc.tsv (summary) and <sample>_mc2.tsv (MC1 fragment ratios) to
<out>/step2-qc. Samples run in parallel; a failing sample is reported and
left out without affecting the others.

Examples:
  mcqc qc --out results --workers 8
  mcqc qc --out results --organisms HUMAN,YEAST --strict`,
	RunE: runQC,
}

func init() {
	addQCFlags(qcCmd)
}

func runQC(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	fmt.Printf("Running QC in %s with %d workers...\n", cfg.OutputDir, cfg.Workers)
	report, err := pipeline.QC(context.Background(), cfg)
	if err != nil {
		return err
	}
	printReport(report)
	if len(report.Succeeded) == 0 && len(report.Failed) > 0 {
		return fmt.Errorf("all %d samples failed", len(report.Failed))
	}
	return nil
}

func printReport(report *pipeline.Report) {
	fmt.Printf("\nQC complete!\n")
	fmt.Printf("Processed: %d samples\n", len(report.Succeeded))
	if len(report.Failed) > 0 {
		fmt.Printf("Failed: %d samples\n", len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(os.Stderr, "  %s (%s): %v\n", f.Sample, f.Path, f.Err)
		}
	}
}
