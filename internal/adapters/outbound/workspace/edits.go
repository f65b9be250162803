package workspace

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/openkraft/fixloop/internal/domain"
)

// applyEdits applies edits of a single file to content. Edits must fit the
// content and must not overlap; insertions at the same offset are applied in
// the given order.
func applyEdits(content []byte, edits []domain.TextEdit) ([]byte, error) {
	sorted := make([]domain.TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			return nil, fmt.Errorf("%w: [%d,%d) outside %d bytes", ErrStaleEdit, e.Start, e.End, len(content))
		}
		if i > 0 && domain.Conflicts(sorted[i-1], e) {
			return nil, fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrConflictingEdits,
				sorted[i-1].Start, sorted[i-1].End, e.Start, e.End)
		}
	}

	var buf bytes.Buffer
	buf.Grow(len(content))
	last := 0
	for _, e := range sorted {
		buf.Write(content[last:e.Start])
		buf.WriteString(e.NewText)
		last = e.End
	}
	buf.Write(content[last:])
	return buf.Bytes(), nil
}
