package digest

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ChrisMcGann/mcqc/pkg/core"
	"github.com/ChrisMcGann/mcqc/pkg/enzyme"
	"github.com/ChrisMcGann/mcqc/pkg/index"
	"github.com/ChrisMcGann/mcqc/pkg/reader/fasta"
)

type sliceSource struct {
	proteins []fasta.Protein
	pos      int
}

func (s *sliceSource) Next() bool {
	if s.pos >= len(s.proteins) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Protein() *fasta.Protein { return &s.proteins[s.pos-1] }
func (s *sliceSource) Err() error              { return nil }

func descriptors(peps []core.Peptide) []string {
	out := make([]string, len(peps))
	for i, p := range peps {
		out[i] = p.Sequence + "@" + p.Occurrence.String()
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDigestCompleteness(t *testing.T) {
	e := Engine{Enzyme: enzyme.MustGet("trypsin"), MissedCleavages: 1, MinLength: 1, MaxLength: 30}

	got := descriptors(e.Digest("P1", []byte("MKPRTK")))
	// K-P is not a cleavage site, so R is the only internal cut
	want := []string{
		"MKPR@P1:0:_:T",
		"MKPRTK@P1:0:_:_",
		"TK@P1:4:R:_",
	}
	if !equalStrings(got, want) {
		t.Errorf("Digest(MKPRTK) = %v, want %v", got, want)
	}
}

func TestDigestMissedCleavageBudget(t *testing.T) {
	e := Engine{Enzyme: enzyme.MustGet("trypsin/p"), MissedCleavages: 0, MinLength: 1, MaxLength: 30}

	got := descriptors(e.Digest("P1", []byte("MKPRTK")))
	want := []string{"MK@P1:0:_:P", "PR@P1:2:K:T", "TK@P1:4:R:_"}
	if !equalStrings(got, want) {
		t.Errorf("Digest() = %v, want %v", got, want)
	}
}

func TestDigestEndToEndScenario(t *testing.T) {
	e := Engine{Enzyme: enzyme.MustGet("trypsin/p"), MissedCleavages: 1, MinLength: 2, MaxLength: 8}
	peps := e.Digest("TEST", []byte("MKPRTKAA"))

	var foundPR bool
	for _, p := range peps {
		if len(p.Sequence) > 8 || len(p.Sequence) < 2 {
			t.Errorf("peptide %s outside length bounds", p.Sequence)
		}
		if p.Sequence == "PR" {
			foundPR = true
			if p.Preceding != 'K' || p.Following != 'T' || p.Start != 2 {
				t.Errorf("PR occurrence = %+v, want start 2 between K and T", p.Occurrence)
			}
		}
	}
	if !foundPR {
		t.Error("expected peptide PR")
	}

	want := []string{
		"AA@TEST:6:K:_",
		"MK@TEST:0:_:P",
		"MKPR@TEST:0:_:T",
		"PR@TEST:2:K:T",
		"PRTK@TEST:2:K:A",
		"TK@TEST:4:R:A",
		"TKAA@TEST:4:R:_",
	}
	if got := descriptors(peps); !equalStrings(got, want) {
		t.Errorf("Digest(MKPRTKAA) = %v, want %v", got, want)
	}
}

func TestDigestLengthBounds(t *testing.T) {
	e := Engine{Enzyme: enzyme.MustGet("trypsin/p"), MissedCleavages: 2, MinLength: 3, MaxLength: 4}
	for _, p := range e.Digest("P1", []byte("MKPRTKAA")) {
		if len(p.Sequence) < 3 || len(p.Sequence) > 4 {
			t.Errorf("peptide %s outside [3,4]", p.Sequence)
		}
	}

	short := Engine{Enzyme: enzyme.MustGet("trypsin"), MissedCleavages: 1, MinLength: 7, MaxLength: 30}
	if peps := short.Digest("P1", []byte("MKPRTK")); len(peps) != 0 {
		t.Errorf("protein shorter than min length yielded %v", descriptors(peps))
	}
}

func TestDigestMethionineExcision(t *testing.T) {
	e := Engine{Enzyme: enzyme.MustGet("trypsin"), MissedCleavages: 0, MinLength: 1, MaxLength: 30, ExciseMethionine: true}

	got := descriptors(e.Digest("P1", []byte("MKPRTK")))
	want := []string{
		"KPR@P1:1:M:T", // excised: offset re-based by +1, flank from the full sequence
		"MKPR@P1:0:_:T",
		"TK@P1:4:R:_",
		"TK@P1:4:R:_",
	}
	if !equalStrings(got, want) {
		t.Errorf("Digest() = %v, want %v", got, want)
	}
}

func TestDigestNTermEnzyme(t *testing.T) {
	e := Engine{Enzyme: enzyme.MustGet("asp-n"), MissedCleavages: 0, MinLength: 1, MaxLength: 30}
	got := descriptors(e.Digest("P1", []byte("AADAAD")))
	want := []string{"AA@P1:0:_:D", "D@P1:5:A:_", "DAA@P1:2:A:D"}
	if !equalStrings(got, want) {
		t.Errorf("Digest() = %v, want %v", got, want)
	}
}

func TestBuildIntoMemory(t *testing.T) {
	src := &sliceSource{proteins: []fasta.Protein{
		{ID: "P1", Seq: []byte("MKPRTKAA")},
		{ID: "P1", Seq: []byte("MKPRTKAA")}, // repeated entry merges
		{ID: "P2", Seq: []byte("GGRTKAA")},
	}}
	e := Engine{Enzyme: enzyme.MustGet("trypsin/p"), MissedCleavages: 1, MinLength: 2, MaxLength: 8}
	mem := index.NewMemory()

	stats, err := e.Build(context.Background(), src, mem)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if stats.Proteins != 3 {
		t.Errorf("Proteins = %d, want 3", stats.Proteins)
	}

	tests := []struct {
		peptide string
		want    core.Uniqueness
	}{
		{"PR", core.Unique},
		{"MKPR", core.Unique},
		{"TKAA", core.NonUnique}, // P1 and P2
		{"AA", core.NonUnique},
		{"ZZZ", core.Unknown},
	}
	for _, tt := range tests {
		got, _ := mem.Lookup(tt.peptide)
		if got != tt.want {
			t.Errorf("Lookup(%s) = %v, want %v", tt.peptide, got, tt.want)
		}
	}

	// uniqueness invariant over every indexed peptide
	for _, pep := range mem.Peptides() {
		occs, err := mem.Occurrences(pep)
		if err != nil {
			t.Fatalf("Occurrences(%s) error = %v", pep, err)
		}
		u, _ := mem.Lookup(pep)
		if (u == core.Unique) != (len(occs) == 1) || (u == core.NonUnique) != (len(occs) >= 2) {
			t.Errorf("peptide %s: uniqueness %v with %d occurrences", pep, u, len(occs))
		}
	}
}

func TestBuildEmptyDatabase(t *testing.T) {
	e := Engine{Enzyme: enzyme.MustGet("trypsin"), MissedCleavages: 1, MinLength: 1, MaxLength: 30}
	_, err := e.Build(context.Background(), &sliceSource{}, index.NewMemory())
	if !errors.Is(err, core.ErrEmptyInput) {
		t.Errorf("expected empty input error, got %v", err)
	}
}

func TestEngineValidate(t *testing.T) {
	tests := []struct {
		name string
		e    Engine
	}{
		{"no enzyme", Engine{MinLength: 1, MaxLength: 2}},
		{"negative budget", Engine{Enzyme: enzyme.MustGet("trypsin"), MissedCleavages: -1, MinLength: 1, MaxLength: 2}},
		{"zero min", Engine{Enzyme: enzyme.MustGet("trypsin"), MinLength: 0, MaxLength: 2}},
		{"inverted bounds", Engine{Enzyme: enzyme.MustGet("trypsin"), MinLength: 9, MaxLength: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve *core.ValidationError
			if err := tt.e.Validate(); !errors.As(err, &ve) {
				t.Errorf("Validate() = %v, want ValidationError", err)
			}
		})
	}
}
