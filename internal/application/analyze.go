package application

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/logging"
)

// analyze runs every analyzer against c in parallel and returns their
// diagnostics consolidated in analyzer registration order. A failing analyzer
// is logged and contributes nothing; only cancellation is returned.
func analyze(ctx context.Context, analyzers []domain.Analyzer, c domain.Compilation) ([]domain.Diagnostic, error) {
	log := logging.FromContext(ctx)
	results := make([][]domain.Diagnostic, len(analyzers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, a := range analyzers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := a.Analyze(gctx, c)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("analyzer exception",
					"analyzer", a.Name(),
					"project", c.Project().ID,
					"err", err)
				return nil
			}
			results[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.Diagnostic
	for _, ds := range results {
		out = append(out, ds...)
	}
	return out, nil
}
