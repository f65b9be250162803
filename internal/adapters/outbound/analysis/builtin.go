package analysis

import (
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/sigchanyzer"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/timeformat"

	"github.com/openkraft/fixloop/internal/adapters/outbound/analysis/initialism"
	"github.com/openkraft/fixloop/internal/domain"
)

// Builtins returns the analyzers shipped with fixloop, in registration order.
func Builtins() []*Analyzer {
	return []*Analyzer{
		New(assign.Analyzer, "correctness", domain.SeverityWarning),
		New(stringintconv.Analyzer, "correctness", domain.SeverityWarning),
		New(sigchanyzer.Analyzer, "correctness", domain.SeverityWarning),
		New(timeformat.Analyzer, "correctness", domain.SeverityWarning),
		New(initialism.Analyzer, "naming", domain.SeverityInfo),
	}
}

// Ports converts analyzers to the domain port.
func Ports(analyzers []*Analyzer) []domain.Analyzer {
	out := make([]domain.Analyzer, len(analyzers))
	for i, a := range analyzers {
		out[i] = a
	}
	return out
}

// IDs returns the descriptor ids of analyzers.
func IDs(analyzers []*Analyzer) []string {
	ids := make([]string, 0, len(analyzers))
	for _, a := range analyzers {
		ids = append(ids, a.desc.ID)
	}
	return ids
}
