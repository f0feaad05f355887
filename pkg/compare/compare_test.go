package compare

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/qc"
	"github.com/ChrisMcGann/mcqc/pkg/reader/table"
)

func row(pep string, q, nmc float64, sites string) Row {
	return Row{Peptide: pep, Quantity: q, NMCQuantity: nmc, MCR: qc.MissedCleavageRatio(q, nmc), Count: 1, Sites: sites}
}

func fixture() []*Sample {
	return []*Sample{
		{Name: "A", Rows: []Row{
			row("AAKBB", 10, 5, "2,B"),
			row("LLKAAR", 4, 4, "2,A"),
			row("GGRPK", 3, 0, "2,P"),
		}},
		{Name: "B", Rows: []Row{
			row("AAKBB", 10, 10, "2,B"),
			row("GGRPK", 6, 2, "2,P"),
			row("ONLYKK", 1, 1, "4,K"),
		}},
	}
}

func TestCommonPeptides(t *testing.T) {
	samples := fixture()
	got := CommonPeptides(samples)
	if !reflect.DeepEqual(got, []string{"AAKBB", "GGRPK"}) {
		t.Errorf("CommonPeptides() = %v", got)
	}

	for _, s := range samples {
		if len(got) > len(s.Peptides()) {
			t.Errorf("common set larger than sample %s", s.Name)
		}
	}

	empty := append([]*Sample{{Name: "E"}}, samples...)
	if got := CommonPeptides(empty); len(got) != 0 {
		t.Errorf("empty first sample should give no common peptides, got %v", got)
	}
	if got := CommonPeptides(nil); got != nil {
		t.Errorf("CommonPeptides(nil) = %v", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"nan skipped", []float64{math.NaN(), 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.in); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if !math.IsNaN(Median(nil)) {
		t.Error("Median(nil) should be NaN")
	}
}

func TestPivotKeepsOnlyCompleteMeasuredRows(t *testing.T) {
	samples := fixture()
	samples[1].Rows = append(samples[1].Rows, row("AAKBB", 1, 1, "2,B"))

	m, dups := Pivot(samples)
	// GGRPK is inferred in A, ONLYKK and LLKAAR are single-sample
	if !reflect.DeepEqual(m.Peptides, []string{"AAKBB"}) {
		t.Fatalf("Pivot() peptides = %v", m.Peptides)
	}
	want := []float64{100 * 10.0 / 15.0, 50}
	if math.Abs(m.Values[0][0]-want[0]) > 1e-9 || m.Values[0][1] != want[1] {
		t.Errorf("Pivot() values = %v, want %v", m.Values[0], want)
	}
	if len(dups) != 1 || dups[0].Sample != "B" {
		t.Errorf("duplicates = %+v", dups)
	}
}

func TestMotifs(t *testing.T) {
	samples := fixture()
	samples = append(samples, &Sample{Name: "C"})
	samples[0].Rows = append(samples[0].Rows, Row{Peptide: "BADK", Count: 1, Sites: "x", Line: 7})

	_, _, err := Motifs(samples, true)
	var mre *core.MalformedRowError
	if !errors.As(err, &mre) || mre.Line != 7 {
		t.Fatalf("strict Motifs() error = %v", err)
	}

	rows, skipped, err := Motifs(samples, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 1 {
		t.Errorf("skipped = %d, want 1", len(skipped))
	}
	if len(rows) != 6 {
		t.Fatalf("got %d motif rows, want 2 per sample", len(rows))
	}

	count := func(sample string, pre, post byte) int {
		for _, r := range rows {
			if r.Sample == sample && r.Pre == pre {
				return r.Counts[strings.IndexByte(string(AminoAcids), post)]
			}
		}
		return -1
	}
	tests := []struct {
		sample    string
		pre, post byte
		want      int
	}{
		{"A", 'K', 'A', 1},
		{"A", 'R', 'P', 1},
		{"B", 'K', 'K', 1},
		{"C", 'R', 'P', 0},
	}
	for _, tt := range tests {
		if got := count(tt.sample, tt.pre, tt.post); got != tt.want {
			t.Errorf("%s %c>%c = %d, want %d", tt.sample, tt.pre, tt.post, got, tt.want)
		}
	}

	// AAKBB is followed by B, which is outside the alphabet
	total := 0
	for _, n := range rows[0].Counts {
		total += n
	}
	if rows[0].Pre != 'K' || total != 1 {
		t.Errorf("sample A K row = %+v", rows[0])
	}
}

func TestCompareRecords(t *testing.T) {
	c, err := Compare(fixture(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.MedianRecords()) != 2 || len(c.LongRecords()) != 6 {
		t.Errorf("records: %d medians, %d long", len(c.MedianRecords()), len(c.LongRecords()))
	}
	for _, rec := range c.LongRecords() {
		if len(rec) != len(LongHeader) {
			t.Fatalf("long record %v does not match header", rec)
		}
	}
	if got := c.LongRecords()[2][7]; got != "NA" {
		t.Errorf("log2 of zero counterpart = %s, want NA", got)
	}
	if len(c.WideHeader()) != 3 || len(c.MotifRecords()[0]) != len(MotifHeader()) {
		t.Errorf("wide header %v, motif header %v", c.WideHeader(), MotifHeader())
	}
}

func TestLoadSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A_mc2.tsv")
	header := strings.Join(qc.FragmentHeader, "\t")
	line := "G1_HUMAN\tAAKBB\t10\t2,B\t1\tTRUE\tTRUE\tAAK\tBB\tTRUE\tTRUE\t5\t0\t5\t66.66666666666667\tFALSE"
	if err := os.WriteFile(path, []byte(header+"\n"+line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSample("A", path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Rows) != 1 {
		t.Fatalf("got %d rows", len(s.Rows))
	}
	r := s.Rows[0]
	if r.Peptide != "AAKBB" || r.Quantity != 10 || r.NMCQuantity != 5 || r.Count != 1 || r.Sites != "2,B" || r.Line != 2 {
		t.Errorf("row = %+v", r)
	}
}

func TestMergeQC(t *testing.T) {
	a := &table.Records{Header: []string{"sample_name", "mcr_pep"}, Rows: [][]string{{"A", "0.1"}}}
	b := &table.Records{Header: []string{"sample_name", "mcr_pep"}, Rows: [][]string{{"B", "0.2"}}}

	merged, err := MergeQC([]*table.Records{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(merged.Rows) != 2 || merged.Rows[1][0] != "B" {
		t.Errorf("MergeQC() rows = %v", merged.Rows)
	}

	c := &table.Records{Header: []string{"sample_name"}}
	var ve *core.ValidationError
	if _, err := MergeQC([]*table.Records{a, c}); !errors.As(err, &ve) {
		t.Errorf("mismatched headers: error = %v", err)
	}
	if _, err := MergeQC(nil); !errors.Is(err, core.ErrEmptyInput) {
		t.Errorf("MergeQC(nil) error = %v", err)
	}
}
