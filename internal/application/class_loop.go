package application

import (
	"context"

	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/domain/fixing"
	"github.com/openkraft/fixloop/internal/logging"
)

// fixClass fixes every occurrence of one descriptor in a project. Each round
// recompiles the current snapshot, re-reads the occurrences and applies one
// fix. analyzers is nil when the descriptor is a compiler diagnostic.
// Compiler errors absent from the first round end the class even when
// compiler errors are otherwise tolerated.
func (e *Engine) fixClass(ctx context.Context, project domain.Project, desc domain.Descriptor, analyzers []domain.Analyzer, fixers []domain.Fixer) (domain.DiagnosticFixResult, error) {
	var (
		fixed         []domain.Diagnostic
		diagnostics   []domain.Diagnostic
		previous      []domain.Diagnostic
		previousToFix []domain.Diagnostic
		baseline      []domain.Diagnostic
	)
	baselined := false
	length := 0
	kind := domain.DiagnosticNotFixed

	for {
		if err := ctx.Err(); err != nil {
			return domain.DiagnosticFixResult{}, err
		}

		c, err := e.ws.Compile(ctx, project.ID)
		if err != nil {
			return domain.DiagnosticFixResult{}, err
		}

		errs := e.compilerErrors(c.Diagnostics())
		if !baselined {
			baseline, baselined = errs, true
		}
		if !e.verifyCompilerDiagnostics(ctx, project, c.Diagnostics()) {
			kind = domain.DiagnosticCompilerError
			if len(previous) == 0 {
				break
			}
		} else if introduced := domain.Except(errs, baseline); len(introduced) > 0 {
			// tolerated errors are the ones present before this class was touched
			log := logging.FromContext(ctx)
			for _, d := range introduced {
				log.Warn("fix introduced compilation error", "project", project.Name, "id", desc.ID, "diagnostic", d.String())
			}
			kind = domain.DiagnosticCompilerError
		}

		var current []domain.Diagnostic
		if analyzers == nil {
			current = c.Diagnostics()
		} else {
			current, err = analyze(ctx, analyzers, c)
			if err != nil {
				return domain.DiagnosticFixResult{}, err
			}
		}
		diagnostics = e.occurrences(current, desc.ID)

		if kind == domain.DiagnosticCompilerError {
			break
		} else if kind == domain.DiagnosticFixed {
			// a full batch was fixed; keep going only if the previous round was capped
			if e.cfg.BatchSize <= 0 || length <= e.cfg.BatchSize {
				break
			}
		} else if len(previous) > 0 && kind != domain.DiagnosticPartiallyFixed {
			break
		}

		length = len(diagnostics)
		if length == 0 {
			break
		}
		if domain.SameDiagnostics(diagnostics, previous) {
			break
		}

		fixed = append(fixed, domain.Except(previousToFix, diagnostics)...)
		previous = diagnostics

		batch := diagnostics
		if e.cfg.BatchSize > 0 && length > e.cfg.BatchSize {
			batch = diagnostics[:e.cfg.BatchSize]
		}

		kind, err = e.fixDiagnostics(ctx, project, c, desc, batch, fixers)
		if err != nil {
			return domain.DiagnosticFixResult{}, err
		}
		if kind == domain.DiagnosticMultipleFixers {
			break
		}
		previousToFix = batch
	}

	if kind == domain.DiagnosticCompilerError {
		return domain.DiagnosticFixResult{Kind: kind}, nil
	}

	fixed = append(fixed, domain.Except(previousToFix, diagnostics)...)
	return domain.DiagnosticFixResult{Kind: kind, Fixed: domain.Except(fixed)}, nil
}

// occurrences keeps the diagnostics of one descriptor at or above the
// configured severity.
func (e *Engine) occurrences(diagnostics []domain.Diagnostic, id string) []domain.Diagnostic {
	var out []domain.Diagnostic
	for _, d := range diagnostics {
		if d.ID == id && d.Severity >= e.cfg.Severity {
			out = append(out, d)
		}
	}
	return out
}

// fixDiagnostics selects one action for the batch and applies it.
func (e *Engine) fixDiagnostics(ctx context.Context, project domain.Project, c domain.Compilation, desc domain.Descriptor, batch []domain.Diagnostic, fixers []domain.Fixer) (domain.DiagnosticFixKind, error) {
	log := logging.FromContext(ctx)
	log.Info("fix",
		"project", project.Name,
		"id", desc.ID,
		"title", desc.Title,
		"count", len(batch))
	for _, d := range batch {
		log.Debug("diagnostic", "diagnostic", d.String())
	}

	sel, err := e.selector.Select(ctx, fixing.SelectRequest{
		Diagnostics: batch,
		Descriptor:  desc,
		Fixers:      fixers,
		Project:     project,
		Compilation: c,
	})
	if err != nil {
		return domain.DiagnosticNotFixed, err
	}
	if sel.Ambiguous() {
		return domain.DiagnosticMultipleFixers, nil
	}
	if sel.Action == nil {
		return domain.DiagnosticNotFixed, nil
	}

	return e.applicator.apply(ctx, sel.Action, len(batch), sel.Fixer.BatchProvider() != nil)
}
