package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mcqc/pkg/pipeline"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digest a protein database into the peptide occurrence index",
	Long: `Digest every protein of a FASTA database in silico and store each peptide with
its occurrences (protein:start:preceding:following) in <out>/peptides.sqlite.
The index is rebuilt from scratch on every run.

Examples:
  # Trypsin/P, up to 2 missed cleavages, peptides of 7-50 residues
  mcqc digest --fasta uniprot_human.fasta --out results

  # Lys-C with initiator methionine excision
  mcqc digest --fasta db.fasta --out results --enzyme lys-c --excise-met`,
	RunE: runDigest,
}

func init() {
	addDigestFlags(digestCmd)
	digestCmd.MarkFlagRequired("fasta")
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	fmt.Printf("Digesting %s with %s...\n", cfg.FastaPath, cfg.Enzyme)
	fmt.Printf("Missed cleavages: %d\n", cfg.MissedCleavages)
	fmt.Printf("Peptide length: %d-%d\n", cfg.MinLength, cfg.MaxLength)
	if cfg.ExciseMethionine {
		fmt.Printf("Initiator methionine excision: on\n")
	}

	res, err := pipeline.Digest(context.Background(), cfg)
	if err != nil {
		return err
	}
	printDigest(res)
	return nil
}

func printDigest(res *pipeline.DigestResult) {
	fmt.Printf("\nDigestion complete!\n")
	fmt.Printf("Processed: %d proteins\n", res.Proteins)
	fmt.Printf("Occurrences: %d\n", res.Occurrences)
	if res.Empty > 0 {
		fmt.Printf("Proteins without peptides: %d\n", res.Empty)
	}
	fmt.Printf("Run ID: %s\n", res.RunID)
	fmt.Printf("Output: %s\n", res.Path)
}
