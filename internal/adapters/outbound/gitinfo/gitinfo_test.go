package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/fixloop/internal/adapters/outbound/gitinfo"
)

// initRepo creates a repository with one committed file.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("package pkg\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("pkg/a.go")
	require.NoError(t, err)
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestGitInfo_IsGitRepo(t *testing.T) {
	gi := gitinfo.New()
	assert.True(t, gi.IsGitRepo(initRepo(t)))
	assert.False(t, gi.IsGitRepo(t.TempDir()))
}

func TestGitInfo_CommitHash_ReturnsHash(t *testing.T) {
	dir := initRepo(t)

	hash, err := gitinfo.New().CommitHash(filepath.Join(dir, "pkg"))
	require.NoError(t, err)
	assert.Len(t, hash, 40, "should be a full SHA-1 hash")
}

func TestGitInfo_CommitHash_NotGitRepo(t *testing.T) {
	_, err := gitinfo.New().CommitHash(t.TempDir())
	assert.Error(t, err)
}

func TestGitInfo_RequireClean(t *testing.T) {
	dir := initRepo(t)
	gi := gitinfo.New()
	require.NoError(t, gi.RequireClean(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("package pkg\n\nvar x = 1\n"), 0o644))
	err := gi.RequireClean(dir)
	require.ErrorIs(t, err, gitinfo.ErrDirty)
	assert.Contains(t, err.Error(), "pkg/a.go")
}
