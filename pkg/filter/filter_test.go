package filter

import (
	"math"
	"testing"

	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

func TestApply(t *testing.T) {
	rows := []table.Row{
		{ProteinGroup: "A_HUMAN", Peptide: "PEPK", Quantity: 10},
		{ProteinGroup: "A_HUMAN", Peptide: "PEPK", Quantity: 10},
		{ProteinGroup: "A_HUMAN", Peptide: "PEPK", Quantity: 11},
		{ProteinGroup: "B_HUMAN", Peptide: "PEPR", Quantity: math.NaN()},
		{ProteinGroup: "B_HUMAN", Peptide: "LOWK", Quantity: 0.5},
	}

	tests := []struct {
		name   string
		cfg    Config
		output int
		stats  Stats
	}{
		{"defaults", Config{}, 3, Stats{Input: 5, Missing: 1, Duplicates: 1, Output: 3}},
		{"min quantity", Config{MinQuantity: 1}, 2, Stats{Input: 5, Missing: 1, BelowMin: 1, Duplicates: 1, Output: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats := tt.cfg.Apply(rows)
			if len(got) != tt.output {
				t.Fatalf("Apply() kept %d rows, want %d", len(got), tt.output)
			}
			if stats != tt.stats {
				t.Errorf("Apply() stats = %+v, want %+v", stats, tt.stats)
			}
			for _, r := range got {
				if !r.Observed() {
					t.Errorf("unobserved row survived: %+v", r)
				}
			}
		})
	}

	if len(rows) != 5 || rows[1].Quantity != 10 {
		t.Error("Apply() modified its input")
	}
}

func TestDeduplicateKeepsOrder(t *testing.T) {
	rows := []table.Row{
		{Peptide: "B", Quantity: 1},
		{Peptide: "A", Quantity: 1},
		{Peptide: "B", Quantity: 1},
	}
	got := Deduplicate(rows)
	if len(got) != 2 || got[0].Peptide != "B" || got[1].Peptide != "A" {
		t.Errorf("Deduplicate() = %+v", got)
	}
}
