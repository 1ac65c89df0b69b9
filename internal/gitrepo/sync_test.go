package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localConfig carries no credential so local-path remotes skip auth.
var localConfig = Config{
	AccountID:      "acme",
	RepositoryName: "backups",
	Branch:         "master",
}

func commitFile(t *testing.T, m *Manager, name, content, msg string) string {
	t.Helper()

	ctx := context.Background()
	writeWorkdirFile(t, m, name, content)
	require.NoError(t, m.StageAll(ctx))
	hash, err := m.Commit(ctx, msg)
	require.NoError(t, err)
	return hash
}

// cloneAndAdvance clones the bare remote into a second working copy, commits
// a file there and pushes, moving the remote tip past anything the manager's
// copy knows about.
func cloneAndAdvance(t *testing.T, remoteDir string) {
	t.Helper()

	otherDir := filepath.Join(t.TempDir(), "other")
	repo, err := git.PlainClone(otherDir, false, &git.CloneOptions{URL: remoteDir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(otherDir, "elsewhere.txt"), []byte("remote-only"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("elsewhere.txt")
	require.NoError(t, err)

	sig := &object.Signature{Name: "other", Email: "other@test.local", When: time.Now()}
	_, err = wt.Commit("remote-only change", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	require.NoError(t, repo.Push(&git.PushOptions{}))
}

func TestPush_ToLocalRemote(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.EnsureInitialized(ctx))
	remoteDir := setupLocalRemote(t, m)

	commitFile(t, m, "posts/a.md", "alpha", "first export")
	require.NoError(t, m.Push(ctx, localConfig, false))

	remote, err := git.PlainOpen(remoteDir)
	require.NoError(t, err)
	head, err := remote.Head()
	require.NoError(t, err)

	local, err := m.repo.Head()
	require.NoError(t, err)
	assert.Equal(t, local.Hash(), head.Hash(), "remote tip should match local tip")
}

func TestPush_DivergenceIsClassifiedAndForceRecovers(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.EnsureInitialized(ctx))
	remoteDir := setupLocalRemote(t, m)

	commitFile(t, m, "posts/a.md", "alpha", "first export")
	require.NoError(t, m.Push(ctx, localConfig, false))

	// Remote gains a commit the local branch has never seen.
	cloneAndAdvance(t, remoteDir)

	commitFile(t, m, "posts/b.md", "beta", "second export")

	err := m.Push(ctx, localConfig, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivergence, "a rejected push against a moved remote is a divergence")

	// Exactly one forced push overwrites the remote tip with ours.
	require.NoError(t, m.Push(ctx, localConfig, true))

	remote, err := git.PlainOpen(remoteDir)
	require.NoError(t, err)
	head, err := remote.Head()
	require.NoError(t, err)

	local, err := m.repo.Head()
	require.NoError(t, err)
	assert.Equal(t, local.Hash(), head.Hash(), "forced push should win")
}

func TestPush_UpToDateIsNotAnError(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.EnsureInitialized(ctx))
	setupLocalRemote(t, m)

	commitFile(t, m, "posts/a.md", "alpha", "first export")
	require.NoError(t, m.Push(ctx, localConfig, false))
	require.NoError(t, m.Push(ctx, localConfig, false))
}

func TestPull_FastForwardsFromRemote(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.EnsureInitialized(ctx))
	remoteDir := setupLocalRemote(t, m)

	commitFile(t, m, "posts/a.md", "alpha", "first export")
	require.NoError(t, m.Push(ctx, localConfig, false))

	cloneAndAdvance(t, remoteDir)

	require.NoError(t, m.Pull(ctx, localConfig))

	_, err := os.Stat(filepath.Join(m.dir, "elsewhere.txt"))
	assert.NoError(t, err, "remote-only commit should be integrated")

	// Already up to date afterwards.
	require.NoError(t, m.Pull(ctx, localConfig))
}

func TestClassifyRemoteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil stays nil",
			err:  nil,
			want: nil,
		},
		{
			name: "non-fast-forward sentinel",
			err:  git.ErrNonFastForwardUpdate,
			want: ErrDivergence,
		},
		{
			name: "non-fast-forward message shape",
			err:  errors.New("non-fast-forward update: refs/heads/main"),
			want: ErrDivergence,
		},
		{
			name: "authentication required",
			err:  transport.ErrAuthenticationRequired,
			want: ErrAuthFailed,
		},
		{
			name: "authorization failed",
			err:  transport.ErrAuthorizationFailed,
			want: ErrAuthFailed,
		},
		{
			name: "timeout",
			err:  context.DeadlineExceeded,
			want: ErrNetworkFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyRemoteError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyRemoteError_UnknownStaysUnknown(t *testing.T) {
	err := errors.New("remote repository is empty")
	got := classifyRemoteError(err)

	assert.NotErrorIs(t, got, ErrDivergence)
	assert.NotErrorIs(t, got, ErrAuthFailed)
	assert.NotErrorIs(t, got, ErrNetworkFailure)
}
