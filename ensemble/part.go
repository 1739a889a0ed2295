package ensemble

import (
	"strings"

	"github.com/cmdkit/ensemble/host"
)

// ---------------------------------------------------------------------------
// Part: one named member of an ensemble
// ---------------------------------------------------------------------------

// PartFlags describe how a part dispatches.
type PartFlags int

const (
	// PartNative parts invoke a registered Go handler.
	PartNative PartFlags = 1 << iota
	// PartScripted parts invoke a stored procedure through the host's
	// namespace-scoped invocation path.
	PartScripted
)

// Handler is the native implementation of a part. clientData is the
// opaque value registered with the part; argv[0] is the name the part
// was invoked under.
type Handler func(in *host.Interp, clientData any, argv []string) (string, error)

// Part is one named member of an ensemble. Parts are owned by exactly
// one ensemble's part store and are kept in strict lexicographic order
// by name.
type Part struct {
	// Name is unique within the owning store.
	Name string
	// MinChars is the smallest prefix length that disambiguates this
	// part from its immediate neighbors in the sorted store.
	MinChars int
	// Usage is the optional argument summary for this part.
	Usage string

	handler    Handler
	clientData any
	deleteProc host.DeleteProc
	flags      PartFlags
	proc       *host.Proc

	owner *Ensemble
	child *Ensemble
	cmd   *host.Command
}

// Owner returns the ensemble containing this part.
func (p *Part) Owner() *Ensemble {
	return p.owner
}

// Child returns the nested ensemble this part is a gateway to, or nil
// for an ordinary part.
func (p *Part) Child() *Ensemble {
	return p.child
}

// Command returns the host command installed for this part.
func (p *Part) Command() *host.Command {
	return p.cmd
}

// Flags returns the part's dispatch flags.
func (p *Part) Flags() PartFlags {
	return p.flags
}

// Proc returns the stored procedure for a scripted part, or nil.
func (p *Part) Proc() *host.Proc {
	return p.proc
}

// ---------------------------------------------------------------------------
// PartStore: sorted part registry
// ---------------------------------------------------------------------------

// PartStore is an ordered, lexicographically sorted sequence of parts.
// Binary search over it is valid at every point between calls.
type PartStore struct {
	parts []*Part
}

// Len returns the number of parts in the store.
func (s *PartStore) Len() int {
	return len(s.parts)
}

// At returns the part at position i.
func (s *PartStore) At(i int) *Part {
	return s.parts[i]
}

// Names returns the part names in store (lexicographic) order.
func (s *PartStore) Names() []string {
	names := make([]string, len(s.parts))
	for i, p := range s.parts {
		names[i] = p.Name
	}
	return names
}

// findIndex binary-searches for an exact name. It reports the position
// of the match, or the insertion point when not found.
func (s *PartStore) findIndex(name string) (int, bool) {
	first, last := 0, len(s.parts)-1
	for last >= first {
		pos := (first + last) / 2
		cmp := strings.Compare(name, s.parts[pos].Name)
		if cmp == 0 {
			return pos, true
		}
		if cmp > 0 {
			first = pos + 1
		} else {
			last = pos - 1
		}
	}
	return first, false
}

// Insert allocates a new part and places it at its sorted position,
// shifting successors and recomputing the abbreviation widths of the
// new part and its two neighbors. Inserting a name that already exists
// fails with ErrDuplicateName; an empty name fails with
// ErrMalformedPath.
func (s *PartStore) Insert(name string) (*Part, error) {
	if name == "" {
		return nil, newErrf(ErrMalformedPath, "part name must not be empty")
	}
	pos, found := s.findIndex(name)
	if found {
		return nil, newErrf(ErrDuplicateName, "part %q already exists in ensemble", name)
	}
	part := &Part{Name: name}
	s.parts = append(s.parts, nil)
	copy(s.parts[pos+1:], s.parts[pos:])
	s.parts[pos] = part

	s.computeMinChars(pos)
	s.computeMinChars(pos - 1)
	s.computeMinChars(pos + 1)
	return part, nil
}

// RemoveExact removes the named part, compacting the store. Neighbor
// abbreviation widths are deliberately left as they were: only an
// insertion recomputes them, so a neighbor may carry a stale, overly
// long MinChars until the next insert touches it.
func (s *PartStore) RemoveExact(name string) (*Part, error) {
	pos, found := s.findIndex(name)
	if !found {
		return nil, newErrf(ErrNotFound, "part %q not found in ensemble", name)
	}
	part := s.parts[pos]
	copy(s.parts[pos:], s.parts[pos+1:])
	s.parts[len(s.parts)-1] = nil
	s.parts = s.parts[:len(s.parts)-1]
	return part, nil
}

// FindExact returns the part with exactly the given name, or nil.
func (s *PartStore) FindExact(name string) *Part {
	pos, found := s.findIndex(name)
	if !found {
		return nil
	}
	return s.parts[pos]
}

// FindByPrefix searches for a part by name or unambiguous leading
// abbreviation. It returns the unique match, or the ordered candidate
// list when the prefix is ambiguous, or (nil, nil) when nothing
// matches. Only the first len(name) characters of each part are
// compared; the MinChars requirement adjudicates ambiguity.
func (s *PartStore) FindByPrefix(name string) (*Part, []*Part) {
	pos := 0
	first, last := 0, len(s.parts)-1
	nlen := len(name)
	found := false
	for last >= first {
		pos = (first + last) / 2
		var cmp int
		if nlen > 0 && name[0] == s.parts[pos].Name[0] {
			cmp = strings.Compare(prefixOf(name, nlen), prefixOf(s.parts[pos].Name, nlen))
			if cmp == 0 {
				found = true
				break
			}
		} else if nlen == 0 || name[0] < s.parts[pos].Name[0] {
			cmp = -1
		} else {
			cmp = 1
		}
		if cmp > 0 {
			first = pos + 1
		} else {
			last = pos - 1
		}
	}
	if !found {
		return nil, nil
	}

	// The match may not be the first part sharing this prefix. Scan
	// back to the top-most sharer so "foo" beats "food" when the name
	// is long enough, and so ambiguity reporting starts at the right
	// place.
	if nlen < s.parts[pos].MinChars {
		for pos > 0 {
			pos--
			if !strings.HasPrefix(s.parts[pos].Name, name) {
				pos++
				break
			}
		}
	}
	if nlen < s.parts[pos].MinChars {
		var candidates []*Part
		for i := pos; i < len(s.parts); i++ {
			if !strings.HasPrefix(s.parts[i].Name, name) {
				break
			}
			candidates = append(candidates, s.parts[i])
		}
		// A MinChars left stale by a removal can demand more characters
		// than the surviving neighborhood needs. When only one part
		// actually shares the prefix, it is the match.
		if len(candidates) == 1 {
			return candidates[0], nil
		}
		return nil, candidates
	}
	return s.parts[pos], nil
}

func prefixOf(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// computeMinChars recomputes the abbreviation width for the part at
// pos: one character, raised to one past the common leading run with
// whichever neighbor shares more, capped at the name length. Because
// the store is sorted, non-adjacent parts cannot share a longer prefix
// than an adjacent one.
func (s *PartStore) computeMinChars(pos int) {
	if pos < 0 || pos >= len(s.parts) {
		return
	}
	part := s.parts[pos]
	part.MinChars = 1

	if pos-1 >= 0 {
		if n := commonRun(part.Name, s.parts[pos-1].Name) + 1; n > part.MinChars {
			part.MinChars = n
		}
	}
	if pos+1 < len(s.parts) {
		if n := commonRun(part.Name, s.parts[pos+1].Name) + 1; n > part.MinChars {
			part.MinChars = n
		}
	}
	if part.MinChars > len(part.Name) {
		part.MinChars = len(part.Name)
	}
}

// commonRun counts the shared leading characters of two names.
func commonRun(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
