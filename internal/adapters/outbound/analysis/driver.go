// Package analysis runs golang.org/x/tools analyzers against workspace
// compilations and converts what they report into domain diagnostics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/packages"

	"github.com/openkraft/fixloop/internal/domain"
)

// ErrNotTyped is returned when a compilation carries no type information.
var ErrNotTyped = errors.New("compilation has no type information")

// Typed is a compilation backed by a type-checked package. The workspace
// adapter's Compilation satisfies it.
type Typed interface {
	domain.Compilation
	Package() *packages.Package
	Location(pos, end token.Pos) domain.Location
	Offset(pos token.Pos) (string, int, bool)
}

// Analyzer adapts one *analysis.Analyzer to the domain port. Every analyzer
// reports a single descriptor whose id is the analyzer name.
type Analyzer struct {
	a    *analysis.Analyzer
	desc domain.Descriptor
}

var _ domain.Analyzer = (*Analyzer)(nil)

// New wraps a. Diagnostics are reported with severity.
func New(a *analysis.Analyzer, category string, severity domain.Severity) *Analyzer {
	return &Analyzer{
		a: a,
		desc: domain.Descriptor{
			ID:              a.Name,
			Title:           title(a.Doc),
			Category:        category,
			DefaultSeverity: severity,
		},
	}
}

func (a *Analyzer) Name() string { return a.a.Name }

func (a *Analyzer) SupportedDescriptors() []domain.Descriptor {
	return []domain.Descriptor{a.desc}
}

// Analyze runs the analyzer and everything it requires on c.
func (a *Analyzer) Analyze(ctx context.Context, c domain.Compilation) (ds []domain.Diagnostic, err error) {
	tc, ok := c.(Typed)
	if !ok || tc.Package() == nil || tc.Package().Types == nil {
		return nil, fmt.Errorf("%s: %w", a.a.Name, ErrNotTyped)
	}
	pkg := tc.Package()
	if len(pkg.TypeErrors) > 0 && !a.a.RunDespiteErrors {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ds, err = nil, fmt.Errorf("%s panicked: %v", a.a.Name, r)
		}
	}()

	r := &run{ctx: ctx, c: tc, results: make(map[*analysis.Analyzer]any)}
	if _, err := r.pass(a.a, func(d analysis.Diagnostic) {
		ds = append(ds, a.convert(tc, d))
	}); err != nil {
		return nil, err
	}
	return ds, nil
}

func (a *Analyzer) convert(c Typed, d analysis.Diagnostic) domain.Diagnostic {
	out := domain.Diagnostic{
		ID:         a.desc.ID,
		Severity:   a.desc.DefaultSeverity,
		Location:   c.Location(d.Pos, d.End),
		Message:    d.Message,
		Descriptor: a.desc,
	}
	for _, f := range d.SuggestedFixes {
		fix := domain.SuggestedFix{Message: f.Message}
		for _, e := range f.TextEdits {
			file, start, ok := c.Offset(e.Pos)
			if !ok {
				fix.Edits = nil
				break
			}
			end := start
			if e.End.IsValid() {
				_, end, _ = c.Offset(e.End)
			}
			fix.Edits = append(fix.Edits, domain.TextEdit{
				File:    file,
				Start:   start,
				End:     end,
				NewText: string(e.NewText),
			})
		}
		if len(fix.Edits) > 0 {
			out.Fixes = append(out.Fixes, fix)
		}
	}
	return out
}

// run executes the requirement graph of one analyzer on one package. Results
// of required analyzers are computed once.
type run struct {
	ctx     context.Context
	c       Typed
	results map[*analysis.Analyzer]any
}

func (r *run) pass(a *analysis.Analyzer, report func(analysis.Diagnostic)) (any, error) {
	if res, ok := r.results[a]; ok {
		return res, nil
	}
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}

	resultOf := make(map[*analysis.Analyzer]any, len(a.Requires))
	for _, req := range a.Requires {
		res, err := r.pass(req, func(analysis.Diagnostic) {})
		if err != nil {
			return nil, err
		}
		resultOf[req] = res
	}

	pkg := r.c.Package()
	p := &analysis.Pass{
		Analyzer:     a,
		Fset:         pkg.Fset,
		Files:        pkg.Syntax,
		OtherFiles:   pkg.OtherFiles,
		IgnoredFiles: pkg.IgnoredFiles,
		Pkg:          pkg.Types,
		TypesInfo:    pkg.TypesInfo,
		TypesSizes:   pkg.TypesSizes,
		TypeErrors:   pkg.TypeErrors,
		ResultOf:     resultOf,
		Report:       report,
		ReadFile:     r.readFile,

		ImportObjectFact:  func(types.Object, analysis.Fact) bool { return false },
		ExportObjectFact:  func(types.Object, analysis.Fact) {},
		ImportPackageFact: func(*types.Package, analysis.Fact) bool { return false },
		ExportPackageFact: func(analysis.Fact) {},
		AllObjectFacts:    func() []analysis.ObjectFact { return nil },
		AllPackageFacts:   func() []analysis.PackageFact { return nil },
	}
	if m := pkg.Module; m != nil {
		p.Module = &analysis.Module{Path: m.Path, Version: m.Version, GoVersion: m.GoVersion}
	}

	res, err := a.Run(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Name, err)
	}
	if a.ResultType != nil && res != nil && reflect.TypeOf(res) != a.ResultType {
		return nil, fmt.Errorf("%s: result of type %T, want %v", a.Name, res, a.ResultType)
	}
	r.results[a] = res
	return res, nil
}

func (r *run) readFile(name string) ([]byte, error) {
	if content, ok := r.c.Document(name); ok {
		return content, nil
	}
	return nil, fmt.Errorf("%s is not part of package %s", name, r.c.Project().ID)
}

// title returns the first line of an analyzer doc string.
func title(doc string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(doc), "\n")
	return strings.TrimSpace(line)
}
