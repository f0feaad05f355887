package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestOccurrenceRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		occ  Occurrence
		want string
	}{
		{"internal", Occurrence{Protein: "P1", Start: 2, Preceding: 'K', Following: 'T'}, "P1:2:K:T"},
		{"n-terminal", Occurrence{Protein: "ALBU_HUMAN", Start: 0, Preceding: Boundary, Following: 'R'}, "ALBU_HUMAN:0:_:R"},
		{"colon in id", Occurrence{Protein: "db:P1", Start: 7, Preceding: 'R', Following: Boundary}, "db:P1:7:R:_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.occ.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
			back, err := ParseOccurrence(tt.want)
			if err != nil {
				t.Fatalf("ParseOccurrence() error = %v", err)
			}
			if back != tt.occ {
				t.Errorf("ParseOccurrence() = %+v, want %+v", back, tt.occ)
			}
		})
	}
}

func TestParseOccurrenceMalformed(t *testing.T) {
	for _, s := range []string{"", "P1", "P1:x:K:T", "P1:2:KK:T", ":2:K:T"} {
		_, err := ParseOccurrence(s)
		var mr *MalformedRowError
		if !errors.As(err, &mr) {
			t.Errorf("ParseOccurrence(%q) error = %v, want MalformedRowError", s, err)
		}
	}
}

func TestDescriptors(t *testing.T) {
	joined := JoinDescriptors([]string{"P2:0:_:K", "P1:4:R:A", "P2:0:_:K", ""})
	if joined != "P1:4:R:A;P2:0:_:K" {
		t.Errorf("JoinDescriptors() = %q", joined)
	}
	split := SplitDescriptors(joined)
	if !reflect.DeepEqual(split, []string{"P1:4:R:A", "P2:0:_:K"}) {
		t.Errorf("SplitDescriptors() = %v", split)
	}
	if SplitDescriptors("") != nil {
		t.Error("SplitDescriptors(\"\") should be nil")
	}
}

func TestUniquenessOf(t *testing.T) {
	tests := []struct {
		n    int
		want Uniqueness
		str  string
	}{
		{0, Unknown, "NA"},
		{1, Unique, "TRUE"},
		{2, NonUnique, "FALSE"},
		{9, NonUnique, "FALSE"},
	}
	for _, tt := range tests {
		got := UniquenessOf(tt.n)
		if got != tt.want {
			t.Errorf("UniquenessOf(%d) = %v, want %v", tt.n, got, tt.want)
		}
		if got.String() != tt.str {
			t.Errorf("UniquenessOf(%d).String() = %q, want %q", tt.n, got.String(), tt.str)
		}
	}
}

func TestSitesNotP(t *testing.T) {
	tests := []struct {
		name      string
		sites     Sites
		exception byte
		want      bool
	}{
		{"no sites", nil, 'P', false},
		{"only proline", Sites{{Pos: 1, Next: 'P'}}, 'P', false},
		{"mixed", Sites{{Pos: 1, Next: 'P'}, {Pos: 3, Next: 'T'}}, 'P', true},
		{"no exception residue", Sites{{Pos: 1, Next: 'P'}}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sites.NotP(tt.exception); got != tt.want {
				t.Errorf("NotP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSitesStringParse(t *testing.T) {
	sites := Sites{{Pos: 2, Next: 'B'}, {Pos: 5, Next: 'P'}}
	s := sites.String()
	if s != "2,B;5,P" {
		t.Fatalf("String() = %q", s)
	}
	back, err := ParseSites(s)
	if err != nil {
		t.Fatalf("ParseSites() error = %v", err)
	}
	if !reflect.DeepEqual(back, sites) {
		t.Errorf("ParseSites() = %v, want %v", back, sites)
	}

	if got, err := ParseSites(""); err != nil || got != nil {
		t.Errorf("ParseSites(\"\") = %v, %v", got, err)
	}
	for _, bad := range []string{"2", "x,K", "2,KR", "2,K;"} {
		if _, err := ParseSites(bad); err == nil {
			t.Errorf("ParseSites(%q) expected error", bad)
		}
	}
}
