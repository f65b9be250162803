package domain

import (
	"context"
	"errors"
)

// ErrApplyFailed is returned when the workspace rejects an operation. The run
// cannot continue because later rounds would see a stale snapshot.
var ErrApplyFailed = errors.New("workspace rejected the edit")

// Compilation is a compiled snapshot of one project.
type Compilation interface {
	Project() Project
	// Version is the workspace snapshot version this compilation was built from.
	Version() int
	// Diagnostics returns the compiler diagnostics of the project.
	Diagnostics() []Diagnostic
	// Document returns the current content of a project file.
	Document(path string) ([]byte, bool)
}

// Workspace is the shared, versioned source tree.
type Workspace interface {
	// Projects returns every project of the solution with its imports.
	Projects(ctx context.Context) ([]Project, error)
	// Compile compiles the latest snapshot of a project.
	Compile(ctx context.Context, projectID string) (Compilation, error)
	// Apply commits an operation atomically and bumps the snapshot version.
	Apply(ctx context.Context, op Operation) error
	// Version returns the current snapshot version.
	Version() int
}

// Analyzer turns a compiled project into diagnostics.
type Analyzer interface {
	Name() string
	SupportedDescriptors() []Descriptor
	Analyze(ctx context.Context, c Compilation) ([]Diagnostic, error)
}

// FixContext is what a fixer sees when asked for fixes of one diagnostic.
type FixContext struct {
	Diagnostic  Diagnostic
	Document    []byte
	Compilation Compilation
}

// Fixer proposes fix actions for diagnostics of the ids it declares.
type Fixer interface {
	// Name is the fully qualified name used by the fixer map.
	Name() string
	FixableIDs() []string
	RegisterFixes(ctx context.Context, fc FixContext) ([]FixAction, error)
	// BatchProvider returns nil when the fixer can only fix one diagnostic at a time.
	BatchProvider() BatchFixProvider
}

// BatchContext binds a batch fix to a frozen diagnostic snapshot.
type BatchContext struct {
	Diagnostics    []Diagnostic
	Project        Project
	Scope          FixScope
	EquivalenceKey string
	Compilation    Compilation
}

// BatchFixProvider resolves many diagnostics of one descriptor into one action.
type BatchFixProvider interface {
	SupportedIDs() []string
	SupportedScopes() []FixScope
	// BatchFix returns a nil action when nothing could be fixed.
	BatchFix(ctx context.Context, bc BatchContext) (FixAction, error)
}

// Supports reports whether the provider handles id in scope.
func Supports(p BatchFixProvider, id string, scope FixScope) bool {
	if p == nil {
		return false
	}
	idOK := false
	for _, s := range p.SupportedIDs() {
		if s == id {
			idOK = true
			break
		}
	}
	if !idOK {
		return false
	}
	for _, s := range p.SupportedScopes() {
		if s == scope {
			return true
		}
	}
	return false
}
