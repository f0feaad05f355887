// Package core provides the domain types shared by digestion, indexing and QC:
// peptide occurrences, uniqueness, missed-cleavage sites and the error taxonomy.
package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Boundary marks a missing flanking residue at either end of a protein.
const Boundary byte = '_'

// Occurrence is one digestion event: where a peptide sits inside a protein.
type Occurrence struct {
	Protein   string
	Start     int  // 0-based offset in the original protein sequence
	Preceding byte // residue before the peptide, Boundary at the N-terminus
	Following byte // residue after the peptide, Boundary at the C-terminus
}

// String returns the descriptor form "protein:start:pre:post".
func (o Occurrence) String() string {
	return fmt.Sprintf("%s:%d:%c:%c", o.Protein, o.Start, o.Preceding, o.Following)
}

// ParseOccurrence parses a descriptor produced by Occurrence.String.
// Fields are taken from the right so protein identifiers may contain ':'.
func ParseOccurrence(s string) (Occurrence, error) {
	fields := strings.Split(s, ":")
	if len(fields) < 4 {
		return Occurrence{}, &MalformedRowError{Field: "protein", Value: s, Reason: "expected protein:start:pre:post"}
	}
	n := len(fields)
	pre, post := fields[n-2], fields[n-1]
	if len(pre) != 1 || len(post) != 1 {
		return Occurrence{}, &MalformedRowError{Field: "protein", Value: s, Reason: "flanking residues must be single characters"}
	}
	start, err := strconv.Atoi(fields[n-3])
	if err != nil || start < 0 {
		return Occurrence{}, &MalformedRowError{Field: "protein", Value: s, Reason: "invalid start offset"}
	}
	protein := strings.Join(fields[:n-3], ":")
	if protein == "" {
		return Occurrence{}, &MalformedRowError{Field: "protein", Value: s, Reason: "empty protein identifier"}
	}
	return Occurrence{Protein: protein, Start: start, Preceding: pre[0], Following: post[0]}, nil
}

// Peptide pairs a peptide sequence with one of its occurrences.
type Peptide struct {
	Sequence string
	Occurrence
}

// JoinDescriptors sorts and deduplicates descriptors and joins them with ';'.
func JoinDescriptors(descs []string) string {
	return strings.Join(NormalizeDescriptors(descs), ";")
}

// SplitDescriptors is the inverse of JoinDescriptors.
func SplitDescriptors(s string) []string {
	if s == "" {
		return nil
	}
	return NormalizeDescriptors(strings.Split(s, ";"))
}

// NormalizeDescriptors returns the sorted distinct non-empty descriptors.
func NormalizeDescriptors(descs []string) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		if d != "" {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	j := 0
	for i := range out {
		if i == 0 || out[i] != out[j-1] {
			out[j] = out[i]
			j++
		}
	}
	return out[:j]
}

// Uniqueness classifies how many distinct occurrences a peptide has.
type Uniqueness int

const (
	// Unknown means the peptide is absent from the index.
	Unknown Uniqueness = iota
	Unique
	NonUnique
)

// UniquenessOf maps a distinct occurrence count to a Uniqueness.
func UniquenessOf(n int) Uniqueness {
	switch {
	case n == 0:
		return Unknown
	case n == 1:
		return Unique
	default:
		return NonUnique
	}
}

func (u Uniqueness) String() string {
	switch u {
	case Unique:
		return "TRUE"
	case NonUnique:
		return "FALSE"
	default:
		return "NA"
	}
}

// Site is a missed-cleavage site inside a peptide. Pos is the index of the
// residue immediately before the uncut bond, Next the residue after it.
type Site struct {
	Pos  int
	Next byte
}

// Sites is the ordered list of missed-cleavage sites of a peptide.
type Sites []Site

// Count returns the missed-cleavage count.
func (s Sites) Count() int { return len(s) }

// NotP reports whether at least one site is followed by a residue other than
// exception. With no exception residue every site counts.
func (s Sites) NotP(exception byte) bool {
	for _, site := range s {
		if exception == 0 || site.Next != exception {
			return true
		}
	}
	return false
}

// String renders sites as "pos,aa;pos,aa".
func (s Sites) String() string {
	parts := make([]string, len(s))
	for i, site := range s {
		parts[i] = fmt.Sprintf("%d,%c", site.Pos, site.Next)
	}
	return strings.Join(parts, ";")
}

// ParseSites parses the String form of Sites.
func ParseSites(s string) (Sites, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var sites Sites
	for _, part := range strings.Split(s, ";") {
		fields := strings.Split(part, ",")
		if len(fields) != 2 || len(fields[1]) != 1 {
			return nil, &MalformedRowError{Field: "Missed.Cleavages.Sites", Value: s, Reason: "expected pos,aa"}
		}
		pos, err := strconv.Atoi(fields[0])
		if err != nil || pos < 0 {
			return nil, &MalformedRowError{Field: "Missed.Cleavages.Sites", Value: s, Reason: "invalid position"}
		}
		sites = append(sites, Site{Pos: pos, Next: fields[1][0]})
	}
	return sites, nil
}
