package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ErrDirty is returned when a run requires a clean worktree and finds changes.
var ErrDirty = errors.New("worktree has uncommitted changes")

// GitInfoAdapter reads repository state with go-git. Paths may point anywhere
// inside the worktree.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func (g *GitInfoAdapter) IsGitRepo(path string) bool {
	_, err := open(path)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// RequireClean returns ErrDirty, listing the changed files, when the worktree
// has staged, unstaged or untracked changes.
func (g *GitInfoAdapter) RequireClean(path string) error {
	repo, err := open(path)
	if err != nil {
		return fmt.Errorf("opening git repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("getting status: %w", err)
	}
	if status.IsClean() {
		return nil
	}
	return fmt.Errorf("%w:\n%s", ErrDirty, status.String())
}

func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}
