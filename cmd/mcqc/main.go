// mcqc - missed-cleavage QC for DIA peptide tables
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/mcqc/cmd/mcqc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
