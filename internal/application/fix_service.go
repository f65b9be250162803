package application

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/logging"
)

// FixService orchestrates a solution-wide fix run:
// load projects → dependency order → project loop per project → summary.
type FixService struct {
	ws     domain.Workspace
	engine *Engine
	cfg    domain.FixConfig
}

func NewFixService(ws domain.Workspace, analyzers []domain.Analyzer, fixers []domain.Fixer, cfg domain.FixConfig) *FixService {
	return &FixService{
		ws:     ws,
		engine: NewEngine(ws, analyzers, fixers, cfg),
		cfg:    cfg,
	}
}

// FixSolution fixes every project in dependency order, so that a fix in an
// imported project is visible before its importers are analyzed. Projects run
// one at a time; a compiler error halts the whole run.
func (s *FixService) FixSolution(ctx context.Context) (*domain.SolutionFixResult, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	for _, id := range slices.Sorted(slices.Values(s.cfg.IgnoredCompilerDiagnosticIDs)) {
		log.Debug("ignore compiler diagnostic", "id", id)
	}
	for _, id := range slices.Sorted(slices.Values(s.cfg.IgnoredDiagnosticIDs)) {
		log.Debug("ignore diagnostic", "id", id)
	}

	// 1. Load and order projects
	projects, err := s.ws.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	sorted, err := domain.TopoSort(projects)
	if err != nil {
		return nil, fmt.Errorf("ordering projects: %w", err)
	}

	// 2. Run the project loop for every included project
	result := &domain.SolutionFixResult{}
	last := start
	for i, p := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress := fmt.Sprintf("%d/%d", i+1, len(sorted))

		if !s.cfg.IncludesProject(p.ID) {
			log.Info("skip project", "project", p.Name, "progress", progress)
			result.Projects = append(result.Projects, domain.ProjectFixResult{Project: p, Kind: domain.ProjectSkipped})
			continue
		}

		log.Info("fix project", "project", p.Name, "progress", progress)
		pr, err := s.engine.FixProject(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("fixing project %s: %w", p.ID, err)
		}
		result.Projects = append(result.Projects, pr)

		now := time.Now()
		log.Info("done fixing project",
			"project", p.Name,
			"fixed", len(pr.Fixed),
			"unfixed", len(pr.Unfixed),
			"unfixable", len(pr.Unfixable),
			"elapsed", now.Sub(last).Round(10*time.Millisecond))
		last = now

		// 3. Halt before dependents see a broken dependency
		if pr.Kind == domain.ProjectCompilerError {
			result.Halted = true
			log.Warn("halting: project has compiler errors", "project", p.Name)
			break
		}
	}

	result.Elapsed = time.Since(start)
	log.Info("done fixing solution",
		"fixed", result.FixedCount(),
		"unfixed", result.UnfixedCount(),
		"unfixable", result.UnfixableCount(),
		"elapsed", result.Elapsed.Round(10*time.Millisecond))
	return result, nil
}
