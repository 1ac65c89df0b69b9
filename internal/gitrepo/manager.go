package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"go.uber.org/zap"

	"go-cms/internal/config"
)

// DefaultRemoteName is the remote all backup pushes target.
const DefaultRemoteName = "origin"

// staleLockFiles are the lock artifacts a crashed prior process can leave
// behind. Cycles are mutually exclusive, so any lock present at cycle start
// is stale and safe to remove.
var staleLockFiles = []string{
	"index.lock",
	"HEAD.lock",
	"config.lock",
	"shallow.lock",
}

// Manager guarantees a usable, correctly configured local working copy exists
// and is wired to the correct remote before every sync attempt. Only the sync
// executor writes through it.
type Manager struct {
	dir     string
	host    string
	sigName string
	sigMail string
	log     *zap.Logger

	repo *git.Repository
	wt   *git.Worktree
}

// NewManager builds the repository manager for the configured working copy
// directory.
func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	return &Manager{
		dir:     cfg.BackupWorkdir,
		host:    cfg.GitHost,
		sigName: cfg.CommitName,
		sigMail: cfg.CommitEmail,
		log:     log,
	}
}

// Workdir returns the working copy root the packager materializes into.
func (m *Manager) Workdir() string {
	return m.dir
}

// EnsureInitialized opens the working copy, creating it when absent. A copy
// that fails a basic status probe is treated as corrupted and recreated from
// scratch: artifacts are regenerated every cycle, so losing local history is
// acceptable here.
func (m *Manager) EnsureInitialized(ctx context.Context) error {
	repo, err := git.PlainOpen(m.dir)
	switch {
	case err == nil:
		if probeErr := probe(repo); probeErr == nil {
			m.repo = repo
			return m.loadWorktree()
		}
		m.log.Warn("working copy failed status probe, recreating",
			zap.String("dir", m.dir))
		return m.recreate()
	case errors.Is(err, git.ErrRepositoryNotExists):
		return m.recreate()
	default:
		m.log.Warn("working copy could not be opened, recreating",
			zap.String("dir", m.dir), zap.Error(err))
		return m.recreate()
	}
}

func probe(repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	_, err = wt.Status()
	return err
}

func (m *Manager) recreate() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return WrapError(err, "failed to remove working copy")
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return WrapError(err, "failed to create working copy directory")
	}

	repo, err := git.PlainInit(m.dir, false)
	if err != nil {
		return WrapError(err, "failed to initialize working copy")
	}

	m.repo = repo
	return m.loadWorktree()
}

func (m *Manager) loadWorktree() error {
	wt, err := m.repo.Worktree()
	if err != nil {
		return WrapError(err, "failed to get worktree")
	}
	m.wt = wt
	return nil
}

// ClearStaleLocks removes known lock artifacts left by a previous crashed
// process. Best-effort: absence of lock files is not an error.
func (m *Manager) ClearStaleLocks() {
	for _, name := range staleLockFiles {
		path := filepath.Join(m.dir, ".git", name)
		if err := os.Remove(path); err == nil {
			m.log.Warn("removed stale lock file", zap.String("path", path))
		}
	}
}

// ConfigureIdentity records the committer signature for subsequent commits
// and rewires the origin remote to the credential-embedded URL. The signature
// is held in memory rather than written to the repository config, so a
// crashed process can never leave a half-written config behind.
func (m *Manager) ConfigureIdentity(ctx context.Context, cfg Config) error {
	if m.repo == nil {
		return ErrNotInitialized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return m.setRemote(cfg.remoteURL(m.host))
}

// setRemote replaces the origin remote. Deleting an absent prior remote is
// not an error.
func (m *Manager) setRemote(remoteURL string) error {
	if err := m.repo.DeleteRemote(DefaultRemoteName); err != nil &&
		!errors.Is(err, git.ErrRemoteNotFound) {
		return WrapError(err, "failed to remove prior remote")
	}

	_, err := m.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: DefaultRemoteName,
		URLs: []string{remoteURL},
	})
	if err != nil {
		return WrapError(err, "failed to add remote")
	}
	return nil
}
