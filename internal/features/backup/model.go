package backup

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-cms/internal/gitrepo"
)

// Outcome is the result of one sync cycle. NoChanges is a distinct success
// variant, not an error.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeNoChanges Outcome = "no_changes"
	OutcomeFailure   Outcome = "failure"
)

// Trigger records what started a cycle.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// SyncConfiguration is the persisted remote identity plus the schedule state.
// It is mutated only through the settings surface and read as a snapshot at
// cycle start, so a mid-cycle edit never affects a running cycle.
type SyncConfiguration struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Credential     string             `bson:"credential" json:"-"`
	AccountID      string             `bson:"account_id" json:"account_id"`
	RepositoryName string             `bson:"repository_name" json:"repository_name"`
	Branch         string             `bson:"branch" json:"branch"`
	Schedule       ScheduleState      `bson:"schedule" json:"schedule"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsUsable reports whether all four identity fields are present.
func (c *SyncConfiguration) IsUsable() bool {
	return c.GitConfig().Validate() == nil
}

// GitConfig snapshots the remote identity for one cycle.
func (c *SyncConfiguration) GitConfig() gitrepo.Config {
	return gitrepo.Config{
		Credential:     c.Credential,
		AccountID:      c.AccountID,
		RepositoryName: c.RepositoryName,
		Branch:         c.Branch,
	}
}

// ScheduleState drives the recurring trigger. Invariant: Enabled implies
// NextRunAt is non-nil and IntervalHours > 0; NextRunAt is cleared when
// disabled.
type ScheduleState struct {
	Enabled       bool       `bson:"enabled" json:"enabled"`
	IntervalHours int        `bson:"interval_hours" json:"interval_hours"`
	NextRunAt     *time.Time `bson:"next_run_at,omitempty" json:"next_run_at,omitempty"`
}

// Enable arms the schedule. Calling it while already armed is a no-op so an
// in-flight countdown is never reset.
func (s ScheduleState) Enable(intervalHours int, now time.Time) ScheduleState {
	if s.Enabled && s.NextRunAt != nil {
		return s
	}
	next := now.Add(time.Duration(intervalHours) * time.Hour)
	return ScheduleState{
		Enabled:       true,
		IntervalHours: intervalHours,
		NextRunAt:     &next,
	}
}

// Disable clears the schedule from any state.
func (s ScheduleState) Disable() ScheduleState {
	return ScheduleState{
		Enabled:       false,
		IntervalHours: s.IntervalHours,
		NextRunAt:     nil,
	}
}

// ReArm computes the state after a run completes: the next attempt is a full
// interval after completion regardless of the run's outcome.
func (s ScheduleState) ReArm(completedAt time.Time) ScheduleState {
	if !s.Enabled {
		return s
	}
	next := completedAt.Add(time.Duration(s.IntervalHours) * time.Hour)
	s.NextRunAt = &next
	return s
}

// Tick is the pure scheduling decision: given the persisted state and the
// current time it reports whether a run is due. A NextRunAt in the past fires
// immediately, so a stale schedule surviving a restart is caught up rather
// than skipped. The timer loop is a thin shell around this function.
func Tick(s ScheduleState, now time.Time) (ScheduleState, bool) {
	if !s.Enabled || s.NextRunAt == nil || now.Before(*s.NextRunAt) {
		return s, false
	}
	return s, true
}

// SyncRun is a single cycle attempt, immutable once finished. Only the most
// recent run is retained.
type SyncRun struct {
	ID           string    `bson:"id" json:"id"`
	Trigger      Trigger   `bson:"trigger" json:"trigger"`
	StartedAt    time.Time `bson:"started_at" json:"started_at"`
	FinishedAt   time.Time `bson:"finished_at" json:"finished_at"`
	Outcome      Outcome   `bson:"outcome" json:"outcome"`
	FilesWritten int       `bson:"files_written" json:"files_written"`
	CommitID     string    `bson:"commit_id,omitempty" json:"commit_id,omitempty"`
	ErrorDetail  string    `bson:"error_detail,omitempty" json:"error_detail,omitempty"`
}

// Status is the observability surface: the most recent run plus the live
// schedule, polled by any presentation layer.
type Status struct {
	LastRun  *SyncRun      `json:"last_run"`
	Schedule ScheduleState `json:"schedule"`
}
