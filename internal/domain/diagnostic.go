package domain

import (
	"cmp"
	"hash/fnv"
	"slices"
	"strconv"
)

// DiagnosticKey is the comparable identity of a diagnostic. Diagnostics have
// no stable identity across recompilation, so "the same occurrence" always
// means equal keys, never the same value or slice index.
type DiagnosticKey struct {
	ID       string
	Severity Severity
	File     string
	Span     Span
	Message  string
}

// Key returns the identity key of d.
func Key(d Diagnostic) DiagnosticKey {
	return DiagnosticKey{
		ID:       d.ID,
		Severity: d.Severity,
		File:     d.Location.File,
		Span:     d.Location.Span,
		Message:  d.Message,
	}
}

// Equal reports whether a and b are the same occurrence: id, severity,
// location and message all match exactly.
func Equal(a, b Diagnostic) bool {
	return Key(a) == Key(b)
}

// HashCode returns a hash consistent with Equal.
func HashCode(d Diagnostic) uint64 {
	h := fnv.New64a()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	write(d.ID)
	write(strconv.Itoa(int(d.Severity)))
	write(d.Location.File)
	sp := d.Location.Span
	for _, n := range [...]int{sp.Start, sp.End, sp.StartLine, sp.StartColumn, sp.EndLine, sp.EndColumn} {
		write(strconv.Itoa(n))
	}
	write(d.Message)
	return h.Sum64()
}

// DiagnosticSet is a set of diagnostics under Equal.
type DiagnosticSet map[DiagnosticKey]struct{}

// NewDiagnosticSet builds a set from diagnostics.
func NewDiagnosticSet(diagnostics ...[]Diagnostic) DiagnosticSet {
	s := make(DiagnosticSet)
	for _, ds := range diagnostics {
		s.Add(ds...)
	}
	return s
}

// Add inserts diagnostics into the set.
func (s DiagnosticSet) Add(diagnostics ...Diagnostic) {
	for _, d := range diagnostics {
		s[Key(d)] = struct{}{}
	}
}

// Contains reports whether an equal diagnostic is in the set.
func (s DiagnosticSet) Contains(d Diagnostic) bool {
	_, ok := s[Key(d)]
	return ok
}

// Except returns the distinct diagnostics of a that have no equal in any of
// the excluded slices, in their original order.
func Except(a []Diagnostic, excluded ...[]Diagnostic) []Diagnostic {
	skip := NewDiagnosticSet(excluded...)
	var out []Diagnostic
	for _, d := range a {
		k := Key(d)
		if _, ok := skip[k]; ok {
			continue
		}
		skip[k] = struct{}{}
		out = append(out, d)
	}
	return out
}

// SameDiagnostics reports whether a and b have the same length and hold the
// same diagnostics under Equal.
func SameDiagnostics(a, b []Diagnostic) bool {
	return len(a) == len(b) && len(Except(a, b)) == 0 && len(Except(b, a)) == 0
}

// DescriptorCount is the number of diagnostics reported for one descriptor.
type DescriptorCount struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// CountByDescriptor groups diagnostics by id, most frequent first, ties by id.
func CountByDescriptor(diagnostics []Diagnostic) []DescriptorCount {
	idx := make(map[string]int)
	var out []DescriptorCount
	for _, d := range diagnostics {
		i, ok := idx[d.ID]
		if !ok {
			i = len(out)
			idx[d.ID] = i
			out = append(out, DescriptorCount{ID: d.ID, Title: d.Descriptor.Title})
		}
		out[i].Count++
	}
	slices.SortFunc(out, func(a, b DescriptorCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
