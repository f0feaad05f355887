package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mcqc/pkg/pipeline"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a wide DIA export into one table per sample",
	Long: `Write one table per <sample>.PEP.Quantity column of a wide DIA export to
<out>/step1-split/<sample>.split.tsv, keeping the protein group and stripped
sequence columns.`,
	RunE: runSplit,
}

func init() {
	addSplitFlags(splitCmd)
	splitCmd.MarkFlagRequired("in")
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	fmt.Printf("Splitting %s...\n", cfg.InputTable)
	res, err := pipeline.Split(context.Background(), cfg)
	if err != nil {
		return err
	}
	printSplit(res)
	return nil
}

func printSplit(res *pipeline.SplitResult) {
	fmt.Printf("\nSplit complete!\n")
	fmt.Printf("Samples: %d\n", len(res.Samples))
	fmt.Printf("Output: %s\n", res.Dir)
}
