package domain

// Conflicts reports whether two edits of the same file overlap. Spans are
// half-open intervals [Start, End). Two insertions never conflict. An
// insertion conflicts with a replacement when it falls inside it.
func Conflicts(a, b TextEdit) bool {
	if a.File != b.File {
		return false
	}
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start <= a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// ConflictsAny reports whether e conflicts with any of edits.
func ConflictsAny(e TextEdit, edits []TextEdit) bool {
	for _, other := range edits {
		if Conflicts(e, other) {
			return true
		}
	}
	return false
}
