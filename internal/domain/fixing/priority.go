// Package fixing holds the pure decision logic of the fix engine: in which
// order defect classes are fixed and which fix action is applied to them.
package fixing

import (
	"cmp"
	"slices"

	"github.com/openkraft/fixloop/internal/domain"
)

// PriorityComparer orders descriptors so that classes with a batch-capable
// fixer come first, then classes with more occurrences.
type PriorityComparer struct {
	Counts     map[string]int
	FixersByID map[string][]domain.Fixer
}

// Compare returns a negative number when a must be fixed before b.
func (c PriorityComparer) Compare(a, b domain.Descriptor) int {
	ba, bb := c.batchCapable(a.ID), c.batchCapable(b.ID)
	if ba != bb {
		if ba {
			return -1
		}
		return 1
	}
	if n := cmp.Compare(c.Counts[b.ID], c.Counts[a.ID]); n != 0 {
		return n
	}
	return cmp.Compare(a.ID, b.ID)
}

func (c PriorityComparer) batchCapable(id string) bool {
	for _, f := range c.FixersByID[id] {
		if domain.Supports(f.BatchProvider(), id, domain.ScopeProject) {
			return true
		}
	}
	return false
}

// SortDescriptors groups diagnostics by descriptor id and returns the
// descriptors in fixing order.
func SortDescriptors(diagnostics []domain.Diagnostic, fixersByID map[string][]domain.Fixer) []domain.Descriptor {
	counts := make(map[string]int)
	var descriptors []domain.Descriptor
	for _, d := range diagnostics {
		if counts[d.ID] == 0 {
			desc := d.Descriptor
			desc.ID = d.ID
			descriptors = append(descriptors, desc)
		}
		counts[d.ID]++
	}

	c := PriorityComparer{Counts: counts, FixersByID: fixersByID}
	slices.SortStableFunc(descriptors, c.Compare)
	return descriptors
}
