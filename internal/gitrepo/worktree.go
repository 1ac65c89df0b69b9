package gitrepo

import (
	"context"
	"errors"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// StageAll stages every modified, added and deleted path in the working copy,
// equivalent to `git add -A`.
func (m *Manager) StageAll(ctx context.Context) error {
	if m.wt == nil {
		return ErrNotInitialized
	}

	if err := m.wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return WrapError(err, "failed to stage changes")
	}
	return nil
}

// HasChanges reports whether the working copy differs from its last recorded
// state. A clean status is the no-op signal: re-running with unchanged
// artifacts must never create empty history entries.
func (m *Manager) HasChanges(ctx context.Context) (bool, error) {
	if m.wt == nil {
		return false, ErrNotInitialized
	}

	status, err := m.wt.Status()
	if err != nil {
		return false, WrapError(err, "failed to get worktree status")
	}
	return !status.IsClean(), nil
}

// Commit creates a commit from the staged changes and returns its hash.
// Returns ErrNoChanges when the index is clean.
func (m *Manager) Commit(ctx context.Context, msg string) (string, error) {
	if m.wt == nil {
		return "", ErrNotInitialized
	}

	sig := &object.Signature{
		Name:  m.sigName,
		Email: m.sigMail,
		When:  time.Now(),
	}

	hash, err := m.wt.Commit(msg, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrNoChanges
		}
		return "", WrapError(err, "failed to create commit")
	}

	return hash.String(), nil
}
