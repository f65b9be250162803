package domain

import (
	"context"
	"time"
)

// Operation is one atomic workspace edit. Either all of its edits land in the
// workspace or none do.
type Operation struct {
	Title string     `json:"title"`
	Edits []TextEdit `json:"edits"`
}

// FixAction is a named, resolvable unit of change proposed by a fixer.
type FixAction interface {
	Title() string
	EquivalenceKey() string
	Operations(ctx context.Context) ([]Operation, error)
}

// CodeAction is a FixAction whose operations are known up front.
type CodeAction struct {
	Name string
	Key  string
	Ops  []Operation
}

var _ FixAction = (*CodeAction)(nil)

func (a *CodeAction) Title() string          { return a.Name }
func (a *CodeAction) EquivalenceKey() string { return a.Key }

func (a *CodeAction) Operations(_ context.Context) ([]Operation, error) {
	return a.Ops, nil
}

// FixScope is the extent a batch fix covers.
type FixScope int

const (
	ScopeDocument FixScope = iota
	ScopeProject
	ScopeSolution
)

func (s FixScope) String() string {
	switch s {
	case ScopeDocument:
		return "document"
	case ScopeProject:
		return "project"
	case ScopeSolution:
		return "solution"
	default:
		return "unknown"
	}
}

// DiagnosticFixKind is the outcome of fixing one defect class in one project.
type DiagnosticFixKind int

const (
	DiagnosticNotFixed DiagnosticFixKind = iota
	DiagnosticFixed
	DiagnosticPartiallyFixed
	DiagnosticMultipleFixers
	DiagnosticCompilerError
)

func (k DiagnosticFixKind) String() string {
	switch k {
	case DiagnosticFixed:
		return "fixed"
	case DiagnosticPartiallyFixed:
		return "partially_fixed"
	case DiagnosticMultipleFixers:
		return "multiple_fixers"
	case DiagnosticCompilerError:
		return "compiler_error"
	default:
		return "not_fixed"
	}
}

// DiagnosticFixResult is what the defect-class loop reports for a descriptor.
type DiagnosticFixResult struct {
	Kind  DiagnosticFixKind
	Fixed []Diagnostic
}

// ProjectFixKind is the aggregate outcome of fixing a project.
type ProjectFixKind string

const (
	ProjectSuccess            ProjectFixKind = "success"
	ProjectNoAnalyzers        ProjectFixKind = "no_analyzers"
	ProjectNoFixers           ProjectFixKind = "no_fixers"
	ProjectNoFixableAnalyzers ProjectFixKind = "no_fixable_analyzers"
	ProjectCompilerError      ProjectFixKind = "compiler_error"
	ProjectSkipped            ProjectFixKind = "skipped"
	ProjectInfiniteLoop       ProjectFixKind = "infinite_loop"
)

// InfiniteLoopReport holds the two diagnostic sets that proved oscillation.
type InfiniteLoopReport struct {
	Diagnostics         []Diagnostic `json:"diagnostics"`
	PreviousDiagnostics []Diagnostic `json:"previous_diagnostics"`
}

// ProjectFixResult is the outcome of the project loop for one project.
type ProjectFixResult struct {
	Project    Project             `json:"project"`
	Kind       ProjectFixKind      `json:"kind"`
	Fixed      []Diagnostic        `json:"fixed"`
	Unfixed    []Diagnostic        `json:"unfixed"`
	Unfixable  []Diagnostic        `json:"unfixable"`
	Iterations int                 `json:"iterations"`
	Elapsed    time.Duration       `json:"elapsed"`
	Analyzers  []string            `json:"analyzers,omitempty"`
	Fixers     []string            `json:"fixers,omitempty"`
	Loop       *InfiniteLoopReport `json:"infinite_loop,omitempty"`
}

// SolutionFixResult aggregates every project of a run.
type SolutionFixResult struct {
	Root       string             `json:"root"`
	CommitHash string             `json:"commit_hash,omitempty"`
	Projects   []ProjectFixResult `json:"projects"`
	Halted     bool               `json:"halted"`
	Elapsed    time.Duration      `json:"elapsed"`
	// Changed lists the files a run modified, written or not.
	Changed []string `json:"changed_files,omitempty"`
}

func (r *SolutionFixResult) FixedCount() int {
	return r.count(func(p ProjectFixResult) int { return len(p.Fixed) })
}

func (r *SolutionFixResult) UnfixedCount() int {
	return r.count(func(p ProjectFixResult) int { return len(p.Unfixed) })
}

func (r *SolutionFixResult) UnfixableCount() int {
	return r.count(func(p ProjectFixResult) int { return len(p.Unfixable) })
}

func (r *SolutionFixResult) count(f func(ProjectFixResult) int) int {
	n := 0
	for _, p := range r.Projects {
		n += f(p)
	}
	return n
}

// Failed reports whether any project stopped on a compiler error or an
// infinite loop.
func (r *SolutionFixResult) Failed() bool {
	for _, p := range r.Projects {
		if p.Kind == ProjectCompilerError || p.Kind == ProjectInfiniteLoop {
			return true
		}
	}
	return false
}

// AnalyzerInfo describes one descriptor of a registered analyzer.
type AnalyzerInfo struct {
	Analyzer   string     `json:"analyzer"`
	Descriptor Descriptor `json:"descriptor"`
	Fixers     []string   `json:"fixers"`
	// Enabled is false when the configuration never fixes the descriptor.
	Enabled bool `json:"enabled"`
}
