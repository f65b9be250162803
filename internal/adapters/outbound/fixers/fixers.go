// Package fixers turns the fixes analyzers suggest into fix actions, one
// diagnostic at a time or merged over a whole project.
package fixers

import (
	"context"
	"fmt"
	"slices"

	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/logging"
)

// Key is the equivalence key of the i-th fix suggested for diagnostics of id.
func Key(id string, i int) string {
	return fmt.Sprintf("%s.%d", id, i)
}

// Suggested offers the fixes attached to a diagnostic by its analyzer.
type Suggested struct {
	name  string
	ids   []string
	batch *Batch
}

var _ domain.Fixer = (*Suggested)(nil)

// New creates a fixer for diagnostics of ids.
func New(name string, ids ...string) *Suggested {
	return &Suggested{name: name, ids: ids, batch: &Batch{ids: ids}}
}

func (f *Suggested) Name() string                           { return f.name }
func (f *Suggested) FixableIDs() []string                   { return f.ids }
func (f *Suggested) BatchProvider() domain.BatchFixProvider { return f.batch }

// RegisterFixes returns one action per suggested fix.
func (f *Suggested) RegisterFixes(_ context.Context, fc domain.FixContext) ([]domain.FixAction, error) {
	d := fc.Diagnostic
	actions := make([]domain.FixAction, 0, len(d.Fixes))
	for i, fix := range d.Fixes {
		actions = append(actions, &domain.CodeAction{
			Name: fix.Message,
			Key:  Key(d.ID, i),
			Ops:  []domain.Operation{{Title: fix.Message, Edits: fix.Edits}},
		})
	}
	return actions, nil
}

// Batch merges the suggested fixes of many diagnostics into one operation.
// A fix whose edits overlap an already merged fix is left for a later round.
type Batch struct {
	ids []string
}

var _ domain.BatchFixProvider = (*Batch)(nil)

func (b *Batch) SupportedIDs() []string { return b.ids }

func (b *Batch) SupportedScopes() []domain.FixScope {
	return []domain.FixScope{domain.ScopeDocument, domain.ScopeProject}
}

func (b *Batch) BatchFix(ctx context.Context, bc domain.BatchContext) (domain.FixAction, error) {
	log := logging.FromContext(ctx)

	var (
		edits         []domain.TextEdit
		fixed, denied int
		id, file      string
	)
	for _, d := range bc.Diagnostics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if bc.Scope == domain.ScopeDocument {
			if file == "" {
				file = d.Location.File
			}
			if d.Location.File != file {
				continue
			}
		}

		i := fixIndex(d, bc.EquivalenceKey)
		if i < 0 {
			continue
		}

		fix := d.Fixes[i]
		var add []domain.TextEdit
		conflict := false
		for _, e := range fix.Edits {
			if slices.Contains(edits, e) {
				continue
			}
			if domain.ConflictsAny(e, edits) {
				conflict = true
				break
			}
			add = append(add, e)
		}
		if conflict {
			denied++
			continue
		}
		edits = append(edits, add...)
		id = d.ID
		fixed++
	}

	if denied > 0 {
		log.Log(ctx, logging.LevelTrace, "overlapping fixes left for the next round",
			"equivalence_key", bc.EquivalenceKey,
			"count", denied)
	}
	if fixed == 0 {
		return nil, nil
	}

	title := fmt.Sprintf("Fix %d %s diagnostics in %s", fixed, id, bc.Project.Name)
	return &domain.CodeAction{
		Name: title,
		Key:  bc.EquivalenceKey,
		Ops:  []domain.Operation{{Title: title, Edits: edits}},
	}, nil
}

// fixIndex returns the index of the fix of d with the equivalence key, or -1.
func fixIndex(d domain.Diagnostic, key string) int {
	for i := range d.Fixes {
		if Key(d.ID, i) == key {
			return i
		}
	}
	return -1
}
