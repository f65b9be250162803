package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/fixloop/internal/application"
	"github.com/openkraft/fixloop/internal/domain"
)

func solutionWorkspace() *fakeWorkspace {
	return newFakeWorkspace(
		domain.Project{ID: "example.com/m/app", Name: "app", Imports: []string{"example.com/m/lib"}},
		domain.Project{ID: "example.com/m/lib", Name: "lib"},
		domain.Project{ID: "example.com/m/tools", Name: "tools", Imports: []string{"example.com/m/app"}},
	)
}

func TestFixSolution_DependencyOrder(t *testing.T) {
	ws := solutionWorkspace()
	ws.findings["example.com/m/lib"] = []domain.Diagnostic{finding("D", 1)}
	ws.findings["example.com/m/app"] = []domain.Diagnostic{finding("D", 5), finding("D", 6)}
	svc := application.NewFixService(ws, analyzerFor("D"), []domain.Fixer{&fakeFixer{name: "fixer", ids: []string{"D"}, batch: true}}, domain.DefaultConfig())

	res, err := svc.FixSolution(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/m/lib", "example.com/m/app", "example.com/m/tools"}, ws.firstCompiles())
	require.Len(t, res.Projects, 3)
	assert.Equal(t, 3, res.FixedCount())
	assert.Zero(t, res.UnfixedCount())
	assert.False(t, res.Halted)
	assert.False(t, res.Failed())
}

func TestFixSolution_SkipsExcludedProjects(t *testing.T) {
	ws := solutionWorkspace()
	cfg := domain.DefaultConfig()
	cfg.Projects.Exclude = []string{"example.com/m/tools"}
	svc := application.NewFixService(ws, analyzerFor("D"), []domain.Fixer{&fakeFixer{name: "fixer", ids: []string{"D"}}}, cfg)

	res, err := svc.FixSolution(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Projects, 3)
	assert.Equal(t, domain.ProjectSkipped, res.Projects[2].Kind)
	assert.Equal(t, "tools", res.Projects[2].Project.Name)
	assert.NotContains(t, ws.compiled, "example.com/m/tools")
}

func TestFixSolution_HaltsOnCompilerError(t *testing.T) {
	ws := solutionWorkspace()
	ws.compiler["example.com/m/lib"] = []domain.Diagnostic{compilerError(1)}
	svc := application.NewFixService(ws, analyzerFor("D"), []domain.Fixer{&fakeFixer{name: "fixer", ids: []string{"D"}}}, domain.DefaultConfig())

	res, err := svc.FixSolution(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Projects, 1)
	assert.Equal(t, domain.ProjectCompilerError, res.Projects[0].Kind)
	assert.True(t, res.Halted)
	assert.True(t, res.Failed())
	assert.Equal(t, []string{"example.com/m/lib"}, ws.firstCompiles())
}

func TestFixSolution_DependencyCycle(t *testing.T) {
	ws := newFakeWorkspace(
		domain.Project{ID: "a", Imports: []string{"b"}},
		domain.Project{ID: "b", Imports: []string{"a"}},
	)
	svc := application.NewFixService(ws, analyzerFor("D"), nil, domain.DefaultConfig())

	_, err := svc.FixSolution(context.Background())

	require.ErrorIs(t, err, domain.ErrDependencyCycle)
}

func TestFixSolution_InfiniteLoopDoesNotHalt(t *testing.T) {
	ws := solutionWorkspace()
	a := finding("D", 1)
	b := finding("D", 1)
	b.Message = "reintroduced"
	ws.findings["example.com/m/lib"] = []domain.Diagnostic{a}
	ws.onApply = func(w *fakeWorkspace, _ domain.Operation) {
		if domain.Equal(w.findings["example.com/m/lib"][0], a) {
			w.findings["example.com/m/lib"] = []domain.Diagnostic{b}
		} else {
			w.findings["example.com/m/lib"] = []domain.Diagnostic{a}
		}
	}
	svc := application.NewFixService(ws, analyzerFor("D"), []domain.Fixer{&fakeFixer{name: "fixer", ids: []string{"D"}}}, domain.DefaultConfig())

	res, err := svc.FixSolution(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Projects, 3)
	assert.Equal(t, domain.ProjectInfiniteLoop, res.Projects[0].Kind)
	assert.False(t, res.Halted)
	assert.True(t, res.Failed())
}
