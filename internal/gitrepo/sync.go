package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Pull integrates remote-only history into the local branch. Returns nil when
// the branches are already in sync. Failures are classified but the caller
// treats them as non-fatal: local state is authoritative for backups.
func (m *Manager) Pull(ctx context.Context, cfg Config) error {
	if m.wt == nil {
		return ErrNotInitialized
	}

	opts := &git.PullOptions{
		RemoteName:    DefaultRemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(cfg.Branch),
		SingleBranch:  true,
		Auth:          cfg.auth(),
	}

	err := m.wt.PullContext(ctx, opts)
	if err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return classifyRemoteError(WrapError(err, "failed to pull from remote"))
	}
	return nil
}

// Push pushes the local branch tip to the configured remote branch. With
// force set, remote-only history is overwritten by the local tip.
func (m *Manager) Push(ctx context.Context, cfg Config, force bool) error {
	if m.repo == nil {
		return ErrNotInitialized
	}

	head, err := m.repo.Head()
	if err != nil {
		return WrapError(err, "failed to resolve HEAD")
	}

	spec := fmt.Sprintf("%s:refs/heads/%s", head.Name(), cfg.Branch)
	if force {
		spec = "+" + spec
	}

	opts := &git.PushOptions{
		RemoteName: DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(spec)},
		Auth:       cfg.auth(),
		Force:      force,
	}

	err = m.repo.PushContext(ctx, opts)
	if err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return classifyRemoteError(err)
	}
	return nil
}

// auth resolves the HTTPS basic-auth method for the configured credential.
// Local-path remotes carry no credential and get no auth method.
func (c Config) auth() transport.AuthMethod {
	if c.Credential == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: c.AccountID,
		Password: c.Credential,
	}
}
