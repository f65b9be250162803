package fixing

import (
	"context"
	"slices"

	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/logging"
)

// SelectRequest is the input of one selection: diagnostics of a single
// descriptor and the fixers eligible for it, in registration order.
type SelectRequest struct {
	Diagnostics []domain.Diagnostic
	Descriptor  domain.Descriptor
	Fixers      []domain.Fixer
	Project     domain.Project
	Compilation domain.Compilation
}

// Selection is the outcome of a selection. Action is nil when nothing could be
// selected. Conflicting is set when two fixers offered competing actions.
type Selection struct {
	Action      domain.FixAction
	Fixer       domain.Fixer
	Conflicting domain.Fixer
}

// Ambiguous reports whether the selection ended with MultipleFixers.
func (s Selection) Ambiguous() bool {
	return s.Conflicting != nil
}

// Selector picks one fix action for a group of diagnostics.
type Selector struct {
	cfg domain.FixConfig
}

func NewSelector(cfg domain.FixConfig) *Selector {
	return &Selector{cfg: cfg}
}

// Select asks every eligible fixer for a candidate. The first candidate wins
// unless the fixer map names another fixer. A second candidate with another
// equivalence key and no fixer map entry makes the selection ambiguous and
// nothing is selected.
// The only error returned is the context error on cancellation.
func (s *Selector) Select(ctx context.Context, req SelectRequest) (Selection, error) {
	log := logging.FromContext(ctx)
	id := req.Descriptor.ID
	forced, hasForced := s.cfg.FixerMap[id]

	var sel Selection
	for _, fixer := range req.Fixers {
		if err := ctx.Err(); err != nil {
			return Selection{}, err
		}

		candidate, err := s.candidate(ctx, req, fixer)
		if err != nil {
			return Selection{}, err
		}
		if candidate == nil {
			continue
		}

		if sel.Action == nil {
			if !hasForced || fixer.Name() == forced {
				sel.Action = candidate
				sel.Fixer = fixer
			}
			continue
		}

		if !hasForced {
			if candidate.EquivalenceKey() == sel.Action.EquivalenceKey() {
				log.Log(ctx, logging.LevelTrace, "fixers agree on equivalence key",
					"id", id,
					"fixer1", sel.Fixer.Name(),
					"fixer2", fixer.Name(),
					"equivalence_key", candidate.EquivalenceKey())
				continue
			}
			log.Warn("multiple fixers can fix diagnostic",
				"id", id,
				"fixer1", sel.Fixer.Name(),
				"fixer2", fixer.Name())
			return Selection{Fixer: sel.Fixer, Conflicting: fixer}, nil
		}
	}
	return sel, nil
}

// candidate returns the action one fixer offers for the whole group.
func (s *Selector) candidate(ctx context.Context, req SelectRequest, fixer domain.Fixer) (domain.FixAction, error) {
	log := logging.FromContext(ctx)
	id := req.Descriptor.ID

	if len(req.Diagnostics) == 1 {
		return s.single(ctx, req, fixer, req.Diagnostics[0], nil)
	}

	provider := fixer.BatchProvider()
	if provider == nil {
		if s.cfg.IsFixableOneByOne(id) {
			return s.single(ctx, req, fixer, req.Diagnostics[0], nil)
		}
		log.Log(ctx, logging.LevelTrace, "fixer has no batch provider", "fixer", fixer.Name())
		return nil, nil
	}
	if !slices.Contains(provider.SupportedIDs(), id) {
		log.Log(ctx, logging.LevelTrace, "batch provider does not support diagnostic", "fixer", fixer.Name(), "id", id)
		return nil, nil
	}
	if !slices.Contains(provider.SupportedScopes(), domain.ScopeProject) {
		log.Log(ctx, logging.LevelTrace, "batch provider does not support scope", "fixer", fixer.Name(), "scope", domain.ScopeProject)
		return nil, nil
	}

	key, hasKey := s.cfg.FixMap[id]
	reported := make(map[ambiguity]bool)
	// the provider is bound to the supplied snapshot, never to a fresh query
	frozen := slices.Clone(req.Diagnostics)

	for _, d := range req.Diagnostics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trigger, err := s.single(ctx, req, fixer, d, reported)
		if err != nil {
			return nil, err
		}
		if trigger == nil {
			continue
		}
		if hasKey && trigger.EquivalenceKey() != key {
			continue
		}

		action, err := provider.BatchFix(ctx, domain.BatchContext{
			Diagnostics:    frozen,
			Project:        req.Project,
			Scope:          domain.ScopeProject,
			EquivalenceKey: trigger.EquivalenceKey(),
			Compilation:    req.Compilation,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("batch fix failed", "fixer", fixer.Name(), "id", id, "err", err)
			return nil, nil
		}
		if action != nil {
			log.Log(ctx, logging.LevelTrace, "batch fix selected",
				"fixer", fixer.Name(),
				"equivalence_key", trigger.EquivalenceKey())
			return action, nil
		}

		log.Log(ctx, logging.LevelTrace, "fixer registered no action", "fixer", fixer.Name(), "id", id, "count", len(frozen))
	}
	return nil, nil
}

type ambiguity struct {
	id, fixer, key1, key2 string
}

// single asks one fixer for the action fixing one diagnostic. Competing actions
// with different equivalence keys cancel each other out unless the fix map
// names the key to use.
func (s *Selector) single(ctx context.Context, req SelectRequest, fixer domain.Fixer, d domain.Diagnostic, reported map[ambiguity]bool) (domain.FixAction, error) {
	log := logging.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc []byte
	if req.Compilation != nil {
		content, ok := req.Compilation.Document(d.Location.File)
		if !ok {
			log.Log(ctx, logging.LevelTrace, "diagnostic is not in source", "diagnostic", d.String())
			return nil, nil
		}
		doc = content
	}

	actions, err := fixer.RegisterFixes(ctx, domain.FixContext{
		Diagnostic:  d,
		Document:    doc,
		Compilation: req.Compilation,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("fixer failed", "fixer", fixer.Name(), "diagnostic", d.String(), "err", err)
		return nil, nil
	}

	if len(actions) == 0 {
		log.Log(ctx, logging.LevelTrace, "fixer registered no action", "fixer", fixer.Name(), "diagnostic", d.String())
		return nil, nil
	}

	if key, ok := s.cfg.FixMap[d.ID]; ok {
		for _, a := range actions {
			if a.EquivalenceKey() == key {
				return a, nil
			}
		}
	}

	// an unmatched fix map entry is treated as no entry
	first := actions[0]
	for _, a := range actions[1:] {
		if a.EquivalenceKey() == first.EquivalenceKey() {
			continue
		}
		info := ambiguity{id: d.ID, fixer: fixer.Name(), key1: first.EquivalenceKey(), key2: a.EquivalenceKey()}
		if reported == nil || !reported[info] {
			log.Debug("fixer registered multiple actions to fix diagnostic",
				"fixer", info.fixer,
				"id", info.id,
				"equivalence_key1", info.key1,
				"equivalence_key2", info.key2)
			if reported != nil {
				reported[info] = true
			}
		}
		return nil, nil
	}
	return first, nil
}
