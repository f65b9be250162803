package application_test

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/openkraft/fixloop/internal/domain"
)

// fakeWorkspace keeps, per project, the diagnostics its analyzers report and
// the compiler diagnostics. Applying an operation removes every finding whose
// span matches one of its edits, unless onApply overrides it.
type fakeWorkspace struct {
	mu       sync.Mutex
	version  int
	projects []domain.Project
	findings map[string][]domain.Diagnostic
	compiler map[string][]domain.Diagnostic
	applied  []domain.Operation
	compiled []string
	applyErr error
	onApply  func(ws *fakeWorkspace, op domain.Operation)
}

func newFakeWorkspace(projects ...domain.Project) *fakeWorkspace {
	if len(projects) == 0 {
		projects = []domain.Project{{ID: "example.com/p", Name: "p"}}
	}
	return &fakeWorkspace{
		projects: projects,
		findings: make(map[string][]domain.Diagnostic),
		compiler: make(map[string][]domain.Diagnostic),
	}
}

func (w *fakeWorkspace) Projects(context.Context) ([]domain.Project, error) {
	return w.projects, nil
}

func (w *fakeWorkspace) project(id string) domain.Project {
	for _, p := range w.projects {
		if p.ID == id {
			return p
		}
	}
	panic("unknown project " + id)
}

func (w *fakeWorkspace) Compile(_ context.Context, id string) (domain.Compilation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.compiled = append(w.compiled, id)
	return &fakeCompilation{
		project:  w.project(id),
		version:  w.version,
		findings: slices.Clone(w.findings[id]),
		compiler: slices.Clone(w.compiler[id]),
	}, nil
}

func (w *fakeWorkspace) Apply(_ context.Context, op domain.Operation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.applyErr != nil {
		return w.applyErr
	}
	w.applied = append(w.applied, op)
	w.version++
	if w.onApply != nil {
		w.onApply(w, op)
		return nil
	}
	for id, ds := range w.findings {
		w.findings[id] = slices.DeleteFunc(ds, func(d domain.Diagnostic) bool {
			return slices.ContainsFunc(op.Edits, func(e domain.TextEdit) bool {
				return e.File == d.Location.File && e.Start == d.Location.Span.Start && e.End == d.Location.Span.End
			})
		})
	}
	return nil
}

func (w *fakeWorkspace) Version() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// firstCompiles returns project ids in the order they were first compiled.
func (w *fakeWorkspace) firstCompiles() []string {
	var out []string
	for _, id := range w.compiled {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

type fakeCompilation struct {
	project  domain.Project
	version  int
	findings []domain.Diagnostic
	compiler []domain.Diagnostic
}

func (c *fakeCompilation) Project() domain.Project          { return c.project }
func (c *fakeCompilation) Version() int                     { return c.version }
func (c *fakeCompilation) Diagnostics() []domain.Diagnostic { return c.compiler }
func (c *fakeCompilation) Document(string) ([]byte, bool)   { return []byte("package p\n"), true }

// fakeAnalyzer reports the findings of the ids it supports.
type fakeAnalyzer struct {
	name string
	ids  []string
	err  error
}

func (a *fakeAnalyzer) Name() string { return a.name }

func (a *fakeAnalyzer) SupportedDescriptors() []domain.Descriptor {
	out := make([]domain.Descriptor, len(a.ids))
	for i, id := range a.ids {
		out[i] = domain.Descriptor{ID: id, Title: "title " + id}
	}
	return out
}

func (a *fakeAnalyzer) Analyze(_ context.Context, c domain.Compilation) ([]domain.Diagnostic, error) {
	if a.err != nil {
		return nil, a.err
	}
	var out []domain.Diagnostic
	for _, d := range c.(*fakeCompilation).findings {
		if slices.Contains(a.ids, d.ID) {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeFixer removes the span of each diagnostic. actions overrides what it
// registers; batch adds a project-scoped batch provider.
type fakeFixer struct {
	name    string
	ids     []string
	batch   bool
	key     string
	actions func(d domain.Diagnostic) []domain.FixAction
}

func (f *fakeFixer) Name() string         { return f.name }
func (f *fakeFixer) FixableIDs() []string { return f.ids }

func (f *fakeFixer) RegisterFixes(_ context.Context, fc domain.FixContext) ([]domain.FixAction, error) {
	if f.actions != nil {
		return f.actions(fc.Diagnostic), nil
	}
	return []domain.FixAction{removal(f.key, fc.Diagnostic)}, nil
}

func (f *fakeFixer) BatchProvider() domain.BatchFixProvider {
	if !f.batch {
		return nil
	}
	return fakeBatch{fixer: f}
}

type fakeBatch struct {
	fixer *fakeFixer
}

func (b fakeBatch) SupportedIDs() []string { return b.fixer.ids }

func (b fakeBatch) SupportedScopes() []domain.FixScope {
	return []domain.FixScope{domain.ScopeDocument, domain.ScopeProject}
}

func (b fakeBatch) BatchFix(_ context.Context, bc domain.BatchContext) (domain.FixAction, error) {
	return removal(bc.EquivalenceKey, bc.Diagnostics...), nil
}

func removal(key string, ds ...domain.Diagnostic) domain.FixAction {
	op := domain.Operation{Title: fmt.Sprintf("remove %d", len(ds))}
	for _, d := range ds {
		op.Edits = append(op.Edits, domain.TextEdit{
			File:  d.Location.File,
			Start: d.Location.Span.Start,
			End:   d.Location.Span.End,
		})
	}
	return &domain.CodeAction{Name: op.Title, Key: key, Ops: []domain.Operation{op}}
}

func finding(id string, n int) domain.Diagnostic {
	return domain.Diagnostic{
		ID:       id,
		Severity: domain.SeverityWarning,
		Location: domain.Location{
			File: "p/a.go",
			Span: domain.Span{Start: n * 10, End: n*10 + 4, StartLine: n, StartColumn: 1, EndLine: n, EndColumn: 5},
		},
		Message:    fmt.Sprintf("%s at %d", id, n),
		Descriptor: domain.Descriptor{ID: id, Title: "title " + id},
	}
}

func findings(id string, count int) []domain.Diagnostic {
	out := make([]domain.Diagnostic, count)
	for i := range out {
		out[i] = finding(id, i+1)
	}
	return out
}

func compilerError(n int) domain.Diagnostic {
	d := finding("compile/TypeError", n)
	d.Severity = domain.SeverityError
	d.Descriptor.CustomTags = []string{domain.TagCompiler}
	return d
}
