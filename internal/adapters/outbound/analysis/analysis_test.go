package analysis_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis/passes/assign"

	"github.com/openkraft/fixloop/internal/adapters/outbound/analysis"
	"github.com/openkraft/fixloop/internal/adapters/outbound/workspace"
	"github.com/openkraft/fixloop/internal/domain"
)

const source = `package p

func bump(n int) int {
	n = n
	return n + 1
}
`

func compile(t *testing.T, src string) (*workspace.Workspace, domain.Compilation) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/p\n\ngo 1.22\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.go"), []byte(src), 0o644))

	ws, err := workspace.New(dir)
	require.NoError(t, err)
	c, err := ws.Compile(context.Background(), "example.com/p")
	require.NoError(t, err)
	return ws, c
}

func TestBuiltins(t *testing.T) {
	ids := analysis.IDs(analysis.Builtins())
	assert.Equal(t, []string{"assign", "stringintconv", "sigchanyzer", "timeformat", "initialism"}, ids)

	for _, a := range analysis.Builtins() {
		ds := a.SupportedDescriptors()
		require.Len(t, ds, 1)
		assert.Equal(t, a.Name(), ds[0].ID)
		assert.NotEmpty(t, ds[0].Title)
		assert.False(t, ds[0].IsCompiler())
	}
}

func TestAnalyze_ReportsWithFixes(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	ws, c := compile(t, source)
	a := analysis.New(assign.Analyzer, "correctness", domain.SeverityWarning)

	ds, err := a.Analyze(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, ds, 1)

	d := ds[0]
	assert.Equal(t, "assign", d.ID)
	assert.Equal(t, domain.SeverityWarning, d.Severity)
	assert.Contains(t, d.Message, "self-assignment of n")
	assert.Equal(t, 4, d.Location.Span.StartLine)
	assert.Equal(t, filepath.Join(ws.Root(), "p.go"), d.Location.File)
	require.NotEmpty(t, d.Fixes)
	require.NotEmpty(t, d.Fixes[0].Edits)

	require.NoError(t, ws.Apply(context.Background(), domain.Operation{Edits: d.Fixes[0].Edits}))
	c, err = ws.Compile(context.Background(), "example.com/p")
	require.NoError(t, err)
	ds, err = a.Analyze(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestAnalyze_SkipsIllTypedPackages(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	_, c := compile(t, "package p\n\nvar x int = \"s\"\n\nfunc f() { x = x }\n")
	require.NotEmpty(t, c.Diagnostics())

	ds, err := analysis.New(assign.Analyzer, "correctness", domain.SeverityWarning).Analyze(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

type untyped struct{ domain.Compilation }

func TestAnalyze_RequiresTypes(t *testing.T) {
	_, err := analysis.Builtins()[0].Analyze(context.Background(), untyped{})
	assert.ErrorIs(t, err, analysis.ErrNotTyped)
}
