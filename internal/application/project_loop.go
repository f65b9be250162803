package application

import (
	"context"
	"slices"
	"time"

	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/domain/fixing"
	"github.com/openkraft/fixloop/internal/logging"
)

// maxListedErrors caps how many compiler errors are logged per check.
const maxListedErrors = 10

// Engine runs the fix loops of a single project against a shared workspace.
type Engine struct {
	ws         domain.Workspace
	analyzers  []domain.Analyzer
	fixers     []domain.Fixer
	cfg        domain.FixConfig
	selector   *fixing.Selector
	applicator applicator
}

func NewEngine(ws domain.Workspace, analyzers []domain.Analyzer, fixers []domain.Fixer, cfg domain.FixConfig) *Engine {
	return &Engine{
		ws:         ws,
		analyzers:  analyzers,
		fixers:     fixers,
		cfg:        cfg,
		selector:   fixing.NewSelector(cfg),
		applicator: applicator{ws: ws},
	}
}

// FixProject fixes one project until no fixable diagnostic is left, progress
// stalls, the diagnostics oscillate or the iteration limit is reached, and
// then classifies what remains.
func (e *Engine) FixProject(ctx context.Context, project domain.Project) (domain.ProjectFixResult, error) {
	start := time.Now()

	result, err := e.fixProject(ctx, project)
	if err != nil {
		return domain.ProjectFixResult{}, err
	}
	result.Project = project

	if result.Kind != domain.ProjectCompilerError && result.Kind != domain.ProjectNoAnalyzers {
		if err := e.classify(ctx, project, &result); err != nil {
			return domain.ProjectFixResult{}, err
		}
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

func (e *Engine) fixProject(ctx context.Context, project domain.Project) (domain.ProjectFixResult, error) {
	log := logging.FromContext(ctx).With("project", project.Name)

	if len(e.analyzers) == 0 {
		log.Info("no analyzers found to analyze project")
		return domain.ProjectFixResult{Kind: domain.ProjectNoAnalyzers}, nil
	}

	fixerNames := names(e.fixers, domain.Fixer.Name)
	if len(e.fixers) == 0 {
		log.Info("no fixers found to fix project")
		return domain.ProjectFixResult{
			Kind:      domain.ProjectNoFixers,
			Analyzers: names(e.analyzers, domain.Analyzer.Name),
		}, nil
	}

	fixersByID := e.fixersByID()
	analyzers := fixableAnalyzers(e.analyzers, fixersByID)
	if len(analyzers) == 0 {
		log.Info("no fixable analyzers found to analyze project")
		return domain.ProjectFixResult{Kind: domain.ProjectNoFixableAnalyzers, Fixers: fixerNames}, nil
	}
	analyzersByID := groupAnalyzers(analyzers)

	log.Log(ctx, logging.LevelTrace, "used analyzers", "analyzers", names(analyzers, domain.Analyzer.Name))
	log.Log(ctx, logging.LevelTrace, "used fixers", "fixers", fixerNames)

	result := domain.ProjectFixResult{
		Kind:      domain.ProjectSuccess,
		Analyzers: names(analyzers, domain.Analyzer.Name),
		Fixers:    fixerNames,
	}

	var (
		fixed            []domain.Diagnostic
		previous         []domain.Diagnostic
		previousPrevious []domain.Diagnostic
	)

	iteration := 1
	for {
		if err := ctx.Err(); err != nil {
			return domain.ProjectFixResult{}, err
		}
		result.Iterations = iteration

		log.Info("compile", "iteration", iteration)
		c, err := e.ws.Compile(ctx, project.ID)
		if err != nil {
			return domain.ProjectFixResult{}, err
		}

		compilerDiagnostics := c.Diagnostics()
		if !e.verifyCompilerDiagnostics(ctx, project, compilerDiagnostics) {
			result.Kind = domain.ProjectCompilerError
			result.Fixed = domain.Except(fixed)
			return result, nil
		}

		log.Info("analyze")
		diagnostics, err := analyze(ctx, analyzers, c)
		if err != nil {
			return domain.ProjectFixResult{}, err
		}
		diagnostics = e.fixable(diagnostics, compilerDiagnostics, analyzersByID, fixersByID)

		if len(diagnostics) == 0 {
			break
		}
		if domain.SameDiagnostics(diagnostics, previous) {
			break
		}
		if domain.SameDiagnostics(diagnostics, previousPrevious) {
			log.Warn("infinite loop detected: reported diagnostics were previously fixed",
				"diagnostics", len(diagnostics),
				"previous", len(previous))
			for _, d := range diagnostics {
				log.Debug("diagnostic", "diagnostic", d.String())
			}
			for _, d := range previous {
				log.Debug("previous diagnostic", "diagnostic", d.String())
			}
			result.Kind = domain.ProjectInfiniteLoop
			result.Loop = &domain.InfiniteLoopReport{
				Diagnostics:         diagnostics,
				PreviousDiagnostics: previous,
			}
			break
		}

		log.Info("found diagnostics", "count", len(diagnostics))

		for _, desc := range fixing.SortDescriptors(diagnostics, fixersByID) {
			if err := ctx.Err(); err != nil {
				return domain.ProjectFixResult{}, err
			}

			var classAnalyzers []domain.Analyzer
			if ids, ok := analyzersByID[desc.ID]; ok && !desc.IsCompiler() {
				classAnalyzers = ids
			}

			res, err := e.fixClass(ctx, project, desc, classAnalyzers, fixersByID[desc.ID])
			if err != nil {
				return domain.ProjectFixResult{}, err
			}

			switch res.Kind {
			case domain.DiagnosticCompilerError:
				result.Kind = domain.ProjectCompilerError
				result.Fixed = domain.Except(fixed)
				return result, nil
			case domain.DiagnosticMultipleFixers:
				log.Warn("diagnostic class skipped: multiple fixers", "id", desc.ID)
			}
			fixed = append(fixed, res.Fixed...)
		}

		if iteration == e.cfg.MaxIterations {
			log.Info("maximum number of iterations reached", "iterations", iteration)
			break
		}

		previousPrevious = previous
		previous = diagnostics
		iteration++
	}

	result.Fixed = domain.Except(fixed)
	return result, nil
}

// fixable keeps analyzer diagnostics that are supported by the configuration
// and have a fixer, plus non-error compiler diagnostics that have a fixer.
func (e *Engine) fixable(diagnostics, compilerDiagnostics []domain.Diagnostic, analyzersByID map[string][]domain.Analyzer, fixersByID map[string][]domain.Fixer) []domain.Diagnostic {
	var out []domain.Diagnostic
	for _, d := range diagnostics {
		if !e.cfg.IsSupportedDiagnostic(d) {
			continue
		}
		if _, ok := analyzersByID[d.ID]; !ok {
			continue
		}
		if _, ok := fixersByID[d.ID]; !ok {
			continue
		}
		out = append(out, d)
	}
	for _, d := range compilerDiagnostics {
		if d.Severity == domain.SeverityError || e.cfg.IsIgnoredCompilerID(d.ID) {
			continue
		}
		if _, ok := fixersByID[d.ID]; !ok {
			continue
		}
		out = append(out, d)
	}
	return out
}

// verifyCompilerDiagnostics logs unignored compiler errors and reports
// whether fixing may go on.
func (e *Engine) verifyCompilerDiagnostics(ctx context.Context, project domain.Project, diagnostics []domain.Diagnostic) bool {
	errs := e.compilerErrors(diagnostics)
	if len(errs) == 0 {
		return true
	}

	log := logging.FromContext(ctx)
	log.Warn("compilation errors", "project", project.Name, "count", len(errs))
	for i, d := range errs {
		if i == maxListedErrors {
			log.Warn("and more errors", "count", len(errs)-maxListedErrors)
			break
		}
		log.Warn("compilation error", "diagnostic", d.String())
	}

	return e.cfg.IgnoreCompilerErrors
}

// compilerErrors keeps the error diagnostics whose id is not ignored.
func (e *Engine) compilerErrors(diagnostics []domain.Diagnostic) []domain.Diagnostic {
	var errs []domain.Diagnostic
	for _, d := range diagnostics {
		if d.Severity == domain.SeverityError && !e.cfg.IsIgnoredCompilerID(d.ID) {
			errs = append(errs, d)
		}
	}
	return errs
}

// classify recompiles the project and splits what remains after fixing into
// unfixable (no fixer for the id) and unfixed diagnostics.
func (e *Engine) classify(ctx context.Context, project domain.Project, result *domain.ProjectFixResult) error {
	c, err := e.ws.Compile(ctx, project.ID)
	if err != nil {
		return err
	}
	diagnostics, err := analyze(ctx, e.analyzers, c)
	if err != nil {
		return err
	}

	known := make(map[string]bool)
	for _, a := range e.analyzers {
		for _, d := range a.SupportedDescriptors() {
			known[d.ID] = true
		}
	}
	fixersByID := e.fixersByID()

	var remaining []domain.Diagnostic
	for _, d := range diagnostics {
		if known[d.ID] && e.cfg.IsSupportedDiagnostic(d) {
			remaining = append(remaining, d)
		}
	}

	result.Unfixable, result.Unfixed = nil, nil
	for _, d := range domain.Except(remaining, result.Fixed) {
		if _, ok := fixersByID[d.ID]; ok {
			result.Unfixed = append(result.Unfixed, d)
		} else {
			result.Unfixable = append(result.Unfixable, d)
		}
	}
	return nil
}

// fixersByID maps each fixable id to its fixers in registration order.
func (e *Engine) fixersByID() map[string][]domain.Fixer {
	m := make(map[string][]domain.Fixer)
	for _, f := range e.fixers {
		for _, id := range f.FixableIDs() {
			if !e.cfg.IsSupportedID(id) || slices.Contains(m[id], f) {
				continue
			}
			m[id] = append(m[id], f)
		}
	}
	return m
}

func fixableAnalyzers(analyzers []domain.Analyzer, fixersByID map[string][]domain.Fixer) []domain.Analyzer {
	var out []domain.Analyzer
	for _, a := range analyzers {
		for _, d := range a.SupportedDescriptors() {
			if _, ok := fixersByID[d.ID]; ok {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func groupAnalyzers(analyzers []domain.Analyzer) map[string][]domain.Analyzer {
	m := make(map[string][]domain.Analyzer)
	for _, a := range analyzers {
		for _, d := range a.SupportedDescriptors() {
			if !slices.Contains(m[d.ID], a) {
				m[d.ID] = append(m[d.ID], a)
			}
		}
	}
	return m
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}
