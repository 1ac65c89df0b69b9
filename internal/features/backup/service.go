package backup

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-cms/internal/config"
	"go-cms/internal/features/artifact"
	"go-cms/internal/gitrepo"
)

// ErrSyncInProgress is returned when a trigger arrives while a cycle is
// running. The trigger is coalesced into a no-op; no rerun is queued.
var ErrSyncInProgress = errors.New("a sync cycle is already in progress")

// ErrInvalidSettings is returned when the configuration surface receives an
// incomplete remote identity.
var ErrInvalidSettings = errors.New("credential, account id, repository name and branch are all required")

// ErrInvalidInterval is returned when the schedule is enabled with a
// non-positive interval.
var ErrInvalidInterval = errors.New("interval hours must be positive")

// RepoManager is the slice of the repository manager the executor needs.
type RepoManager interface {
	Workdir() string
	EnsureInitialized(ctx context.Context) error
	ClearStaleLocks()
	ConfigureIdentity(ctx context.Context, cfg gitrepo.Config) error
	StageAll(ctx context.Context) error
	HasChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, msg string) (string, error)
	Pull(ctx context.Context, cfg gitrepo.Config) error
	Push(ctx context.Context, cfg gitrepo.Config, force bool) error
}

type BackupService interface {
	// RunSync executes exactly one export-commit-push cycle. Fatal
	// conditions are captured in the returned SyncRun rather than crashing
	// the caller; the only error surfaced is ErrSyncInProgress.
	RunSync(ctx context.Context, message string, trigger Trigger) (*SyncRun, error)

	// TickSchedule is the scheduler's entry point: it runs a cycle when one
	// is due and re-arms the schedule afterwards.
	TickSchedule(ctx context.Context, now time.Time) error

	GetStatus(ctx context.Context) (*Status, error)
	GetSettings(ctx context.Context) (*SyncConfiguration, error)
	UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*SyncConfiguration, error)
	EnableSchedule(ctx context.Context, intervalHours int) (*ScheduleState, error)
	DisableSchedule(ctx context.Context) (*ScheduleState, error)
}

type UpdateSettingsInput struct {
	Credential     string `json:"credential"`
	AccountID      string `json:"account_id"`
	RepositoryName string `json:"repository_name"`
	Branch         string `json:"branch"`
}

type BackupServiceImpl struct {
	SettingRepo SettingRepository
	RunRepo     RunRepository
	Source      artifact.Source
	Packager    *artifact.Packager
	Git         RepoManager

	log             *zap.Logger
	netTimeout      time.Duration
	defaultInterval int
	now             func() time.Time

	// running enforces the single-cycle-at-a-time invariant.
	running atomic.Bool
}

func NewBackupService(
	settingRepo SettingRepository,
	runRepo RunRepository,
	source artifact.Source,
	packager *artifact.Packager,
	git RepoManager,
	cfg *config.Config,
	log *zap.Logger,
) BackupService {
	return &BackupServiceImpl{
		SettingRepo:     settingRepo,
		RunRepo:         runRepo,
		Source:          source,
		Packager:        packager,
		Git:             git,
		log:             log,
		netTimeout:      time.Duration(cfg.GitTimeoutSecs) * time.Second,
		defaultInterval: cfg.DefaultInterval,
		now:             time.Now,
	}
}

func (s *BackupServiceImpl) RunSync(ctx context.Context, message string, trigger Trigger) (*SyncRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	run := &SyncRun{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: s.now(),
	}

	cfg, err := s.SettingRepo.Get(ctx)
	if err != nil {
		return s.finish(ctx, run, fmt.Errorf("failed to load configuration: %w", err))
	}
	// Read-only snapshot for the whole cycle.
	snapshot := cfg.GitConfig()

	if err := s.Git.EnsureInitialized(ctx); err != nil {
		return s.finish(ctx, run, fmt.Errorf("initialization failed: %w", err))
	}
	s.Git.ClearStaleLocks()

	remoteUsable := snapshot.Validate() == nil
	if !remoteUsable {
		s.log.Warn("sync configuration incomplete, skipping identity and remote wiring")
	} else if err := s.Git.ConfigureIdentity(ctx, snapshot); err != nil {
		// Non-fatal: the in-memory signature is enough for the commit.
		s.log.Warn("identity/remote configuration failed, continuing", zap.Error(err))
	}

	artifacts, err := s.Source.Artifacts(ctx)
	if err != nil {
		return s.finish(ctx, run, fmt.Errorf("failed to enumerate artifacts: %w", err))
	}

	written, err := s.Packager.Materialize(ctx, s.Git.Workdir(), artifacts)
	if err != nil {
		return s.finish(ctx, run, fmt.Errorf("failed to materialize artifacts: %w", err))
	}

	if err := s.Git.StageAll(ctx); err != nil {
		return s.finish(ctx, run, fmt.Errorf("failed to stage changes: %w", err))
	}

	changed, err := s.Git.HasChanges(ctx)
	if err != nil {
		return s.finish(ctx, run, fmt.Errorf("failed to check worktree status: %w", err))
	}
	if !changed {
		// Idempotence guarantee: an unchanged artifact set must never
		// create a history entry.
		run.Outcome = OutcomeNoChanges
		return s.finish(ctx, run, nil)
	}

	if message == "" {
		message = fmt.Sprintf("Scheduled backup %s", run.StartedAt.UTC().Format(time.RFC3339))
	}
	commitID, err := s.Git.Commit(ctx, message)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNoChanges) {
			run.Outcome = OutcomeNoChanges
			return s.finish(ctx, run, nil)
		}
		return s.finish(ctx, run, fmt.Errorf("commit failed: %w", err))
	}
	run.CommitID = commitID
	run.FilesWritten = written

	if !remoteUsable {
		// Nothing to push against. The commit stays local; the cycle itself
		// succeeded.
		s.log.Warn("no usable remote configuration, commit kept local",
			zap.String("commit", commitID))
		run.Outcome = OutcomeSuccess
		return s.finish(ctx, run, nil)
	}

	netCtx, cancel := context.WithTimeout(ctx, s.netTimeout)
	defer cancel()

	if err := s.Git.Pull(netCtx, snapshot); err != nil {
		// Local state is authoritative: reconciliation failure never aborts
		// the cycle.
		s.log.Warn("reconciliation with remote failed, continuing", zap.Error(err))
	}

	if err := s.push(netCtx, snapshot); err != nil {
		return s.finish(ctx, run, fmt.Errorf("push failed: %w", err))
	}

	run.Outcome = OutcomeSuccess
	return s.finish(ctx, run, nil)
}

// push attempts the push and, only for a divergence-shaped rejection, retries
// exactly once with force. Auth, network and unknown rejections propagate.
func (s *BackupServiceImpl) push(ctx context.Context, cfg gitrepo.Config) error {
	err := s.Git.Push(ctx, cfg, false)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gitrepo.ErrDivergence) {
		return err
	}

	s.log.Warn("push rejected for divergence, overwriting remote history")
	return s.Git.Push(ctx, cfg, true)
}

// finish seals the run, records it in the status store and logs the outcome.
// Fatal errors land in ErrorDetail; the host process never crashes on them.
func (s *BackupServiceImpl) finish(ctx context.Context, run *SyncRun, fatal error) (*SyncRun, error) {
	run.FinishedAt = s.now()
	if fatal != nil {
		run.Outcome = OutcomeFailure
		run.ErrorDetail = fatal.Error()
	}

	if err := s.RunRepo.Save(ctx, run); err != nil {
		s.log.Error("failed to record sync run", zap.Error(err))
	}

	switch run.Outcome {
	case OutcomeFailure:
		s.log.Error("sync cycle failed",
			zap.String("run_id", run.ID),
			zap.String("trigger", string(run.Trigger)),
			zap.String("error", run.ErrorDetail))
	default:
		s.log.Info("sync cycle finished",
			zap.String("run_id", run.ID),
			zap.String("trigger", string(run.Trigger)),
			zap.String("outcome", string(run.Outcome)),
			zap.Int("files_written", run.FilesWritten))
	}

	return run, nil
}

func (s *BackupServiceImpl) TickSchedule(ctx context.Context, now time.Time) error {
	cfg, err := s.SettingRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedule state: %w", err)
	}

	_, due := Tick(cfg.Schedule, now)
	if !due {
		return nil
	}

	if _, err := s.RunSync(ctx, "", TriggerScheduled); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			// A cycle is in flight; this tick is coalesced, not queued.
			return nil
		}
		return err
	}

	// Re-arm from completion time regardless of the run's outcome: a failed
	// run must not stall the schedule. Reload first so a settings edit made
	// during the run is not clobbered.
	cfg, err = s.SettingRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload schedule state: %w", err)
	}
	if !cfg.Schedule.Enabled {
		return nil
	}
	cfg.Schedule = cfg.Schedule.ReArm(s.now())
	return s.SettingRepo.Save(ctx, cfg)
}

func (s *BackupServiceImpl) GetStatus(ctx context.Context) (*Status, error) {
	lastRun, err := s.RunRepo.Last(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.SettingRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		LastRun:  lastRun,
		Schedule: cfg.Schedule,
	}, nil
}

func (s *BackupServiceImpl) GetSettings(ctx context.Context) (*SyncConfiguration, error) {
	return s.SettingRepo.Get(ctx)
}

func (s *BackupServiceImpl) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*SyncConfiguration, error) {
	if input.Credential == "" || input.AccountID == "" || input.RepositoryName == "" || input.Branch == "" {
		return nil, ErrInvalidSettings
	}

	cfg, err := s.SettingRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	wasUsable := cfg.IsUsable()
	cfg.Credential = input.Credential
	cfg.AccountID = input.AccountID
	cfg.RepositoryName = input.RepositoryName
	cfg.Branch = input.Branch

	// The first valid configuration arms the schedule automatically so
	// backups start without a separate enable step.
	if !wasUsable && !cfg.Schedule.Enabled {
		cfg.Schedule = cfg.Schedule.Enable(s.defaultInterval, s.now())
		s.log.Info("schedule auto-enabled on first valid configuration",
			zap.Int("interval_hours", s.defaultInterval))
	}

	if err := s.SettingRepo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *BackupServiceImpl) EnableSchedule(ctx context.Context, intervalHours int) (*ScheduleState, error) {
	if intervalHours <= 0 {
		return nil, ErrInvalidInterval
	}

	cfg, err := s.SettingRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	cfg.Schedule = cfg.Schedule.Enable(intervalHours, s.now())
	if err := s.SettingRepo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return &cfg.Schedule, nil
}

func (s *BackupServiceImpl) DisableSchedule(ctx context.Context) (*ScheduleState, error) {
	cfg, err := s.SettingRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	cfg.Schedule = cfg.Schedule.Disable()
	if err := s.SettingRepo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return &cfg.Schedule, nil
}
