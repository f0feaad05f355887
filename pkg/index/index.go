// Package index answers peptide uniqueness queries against a digested protein database
package index

import (
	"sort"
	"sync"

	"github.com/ChrisMcGann/mcqc/pkg/core"
)

// Index maps peptide sequences to their distinct occurrences. A peptide
// missing from the index is core.Unknown, never Unique or NonUnique.
type Index interface {
	Lookup(peptide string) (core.Uniqueness, error)
	Occurrences(peptide string) ([]core.Occurrence, error)
}

// Memory is an in-process index. It is also a digest sink.
type Memory struct {
	mu    sync.RWMutex
	peps  map[string]map[string]struct{}
	count int
}

// NewMemory returns an empty in-memory index
func NewMemory() *Memory {
	return &Memory{peps: make(map[string]map[string]struct{})}
}

// Add records one digestion event; repeated occurrences are merged.
func (m *Memory) Add(p core.Peptide) error {
	return m.AddDescriptor(p.Sequence, p.Occurrence.String())
}

// AddDescriptor records a raw occurrence descriptor for a peptide.
func (m *Memory) AddDescriptor(peptide, desc string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.peps[peptide]
	if !ok {
		set = make(map[string]struct{}, 1)
		m.peps[peptide] = set
	}
	if _, dup := set[desc]; !dup {
		set[desc] = struct{}{}
		m.count++
	}
	return nil
}

// Lookup classifies a peptide by its distinct occurrence count
func (m *Memory) Lookup(peptide string) (core.Uniqueness, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return core.UniquenessOf(len(m.peps[peptide])), nil
}

// Occurrences returns the peptide's occurrences sorted by descriptor, nil when absent
func (m *Memory) Occurrences(peptide string) ([]core.Occurrence, error) {
	return parseDescriptors(m.Descriptors(peptide))
}

// Descriptors returns the sorted descriptors of a peptide
func (m *Memory) Descriptors(peptide string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.peps[peptide]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Peptides returns every indexed peptide, sorted
func (m *Memory) Peptides() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.peps))
	for p := range m.peps {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct peptides
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.peps)
}

// OccurrenceCount returns the number of distinct (peptide, occurrence) pairs
func (m *Memory) OccurrenceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

func parseDescriptors(descs []string) ([]core.Occurrence, error) {
	if len(descs) == 0 {
		return nil, nil
	}
	out := make([]core.Occurrence, 0, len(descs))
	for _, d := range descs {
		occ, err := core.ParseOccurrence(d)
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, nil
}
