package application

import (
	"slices"

	"github.com/openkraft/fixloop/internal/domain"
)

// Catalog lists every descriptor of analyzers with the fixers eligible for it.
func Catalog(analyzers []domain.Analyzer, fixers []domain.Fixer, cfg domain.FixConfig) []domain.AnalyzerInfo {
	var out []domain.AnalyzerInfo
	for _, a := range analyzers {
		for _, d := range a.SupportedDescriptors() {
			info := domain.AnalyzerInfo{
				Analyzer:   a.Name(),
				Descriptor: d,
				Fixers:     []string{},
				Enabled:    cfg.IsSupportedID(d.ID) && d.DefaultSeverity >= cfg.Severity,
			}
			for _, f := range fixers {
				if slices.Contains(f.FixableIDs(), d.ID) {
					info.Fixers = append(info.Fixers, f.Name())
				}
			}
			out = append(out, info)
		}
	}
	return out
}
