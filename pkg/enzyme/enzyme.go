// Package enzyme defines protease cleavage specificities
package enzyme

import (
	"fmt"
	"sort"
	"strings"
)

// Terminus says on which side of a target residue the protease cuts.
type Terminus int

const (
	CTerm Terminus = iota // cut after the target residue
	NTerm                 // cut before the target residue
)

// Enzyme describes a cleavage rule.
type Enzyme struct {
	Name     string
	Residues string   // target residues
	Terminus Terminus // side of the target residue that is cut
	// Blocker suppresses cleavage during digestion when it sits on the far
	// side of the bond (after the target for CTerm, before it for NTerm). 0 = none.
	Blocker byte
	// Exception marks sites that do not count toward notP statistics. 0 = none.
	Exception byte
	// ContextAware selects the protein-context missed-cleavage detector.
	ContextAware bool
}

var registry = map[string]Enzyme{
	"trypsin":      {Name: "trypsin", Residues: "KR", Terminus: CTerm, Blocker: 'P', Exception: 'P'},
	"trypsin/p":    {Name: "trypsin/p", Residues: "KR", Terminus: CTerm, Exception: 'P', ContextAware: true},
	"lys-c":        {Name: "lys-c", Residues: "K", Terminus: CTerm, Blocker: 'P', Exception: 'P'},
	"lys-n":        {Name: "lys-n", Residues: "K", Terminus: NTerm},
	"arg-c":        {Name: "arg-c", Residues: "R", Terminus: CTerm, Blocker: 'P', Exception: 'P'},
	"asp-n":        {Name: "asp-n", Residues: "D", Terminus: NTerm},
	"glu-c":        {Name: "glu-c", Residues: "E", Terminus: CTerm, Blocker: 'P', Exception: 'P'},
	"chymotrypsin": {Name: "chymotrypsin", Residues: "FWYL", Terminus: CTerm, Blocker: 'P', Exception: 'P'},
}

// Get looks up an enzyme by name (case-insensitive).
func Get(name string) (Enzyme, bool) {
	e, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// MustGet is Get for names known at compile time.
func MustGet(name string) Enzyme {
	e, ok := Get(name)
	if !ok {
		panic(fmt.Sprintf("enzyme: unknown enzyme %q", name))
	}
	return e
}

// Names returns the registered enzyme names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsTarget reports whether aa is one of the enzyme's target residues.
func (e Enzyme) IsTarget(aa byte) bool {
	return strings.IndexByte(e.Residues, aa) >= 0
}

// CutPoints returns the interior cut offsets of seq in ascending order. A cut
// at c separates seq[c-1] from seq[c]; 0 and len(seq) are never included.
func (e Enzyme) CutPoints(seq []byte) []int {
	var cuts []int
	switch e.Terminus {
	case CTerm:
		for i := 0; i < len(seq)-1; i++ {
			if e.IsTarget(seq[i]) && (e.Blocker == 0 || seq[i+1] != e.Blocker) {
				cuts = append(cuts, i+1)
			}
		}
	case NTerm:
		for i := 1; i < len(seq); i++ {
			if e.IsTarget(seq[i]) && (e.Blocker == 0 || seq[i-1] != e.Blocker) {
				cuts = append(cuts, i)
			}
		}
	}
	return cuts
}

func (e Enzyme) String() string { return e.Name }
