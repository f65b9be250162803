package application

import (
	"context"
	"fmt"

	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/logging"
)

// applicator lands a selected fix action in the workspace. Only actions that
// resolve to exactly one operation are applied.
type applicator struct {
	ws domain.Workspace
}

// apply resolves action and applies its operation. targeted is the number of
// diagnostics the action was selected for; batchCapable tells whether the
// selecting fixer has a batch provider. The returned error is fatal for the
// run: it means the workspace may no longer match what later rounds expect.
func (a applicator) apply(ctx context.Context, action domain.FixAction, targeted int, batchCapable bool) (domain.DiagnosticFixKind, error) {
	log := logging.FromContext(ctx)

	ops, err := action.Operations(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return domain.DiagnosticNotFixed, ctx.Err()
		}
		log.Warn("fix action could not be resolved", "title", action.Title(), "err", err)
		return domain.DiagnosticNotFixed, nil
	}

	switch len(ops) {
	case 0:
		log.Debug("fix action has no operations", "title", action.Title())
		return domain.DiagnosticNotFixed, nil
	case 1:
		if err := a.ws.Apply(ctx, ops[0]); err != nil {
			log.Error("cannot apply changes", "title", action.Title(), "err", err)
			return domain.DiagnosticNotFixed, fmt.Errorf("%w: %q: %w", domain.ErrApplyFailed, action.Title(), err)
		}
		if targeted != 1 && !batchCapable {
			return domain.DiagnosticPartiallyFixed, nil
		}
		return domain.DiagnosticFixed, nil
	default:
		log.Warn("code action has multiple operations",
			"title", action.Title(),
			"equivalence_key", action.EquivalenceKey(),
			"operations", len(ops))
		return domain.DiagnosticNotFixed, nil
	}
}
