package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleState_Enable(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	s := ScheduleState{}.Enable(12, now)
	assert.True(t, s.Enabled)
	assert.Equal(t, 12, s.IntervalHours)
	require.NotNil(t, s.NextRunAt)
	assert.Equal(t, now.Add(12*time.Hour), *s.NextRunAt)
}

func TestScheduleState_EnableWhileArmedIsNoOp(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	s := ScheduleState{}.Enable(12, now)
	again := s.Enable(6, now.Add(3*time.Hour))

	assert.Equal(t, s, again, "re-enabling must not reset an in-flight countdown")
}

func TestScheduleState_Disable(t *testing.T) {
	now := time.Now()

	s := ScheduleState{}.Enable(12, now).Disable()
	assert.False(t, s.Enabled)
	assert.Nil(t, s.NextRunAt)

	// Re-enable after a disable starts a fresh countdown.
	s = s.Enable(6, now)
	assert.True(t, s.Enabled)
	require.NotNil(t, s.NextRunAt)
	assert.Equal(t, now.Add(6*time.Hour), *s.NextRunAt)
}

func TestScheduleState_ReArm(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	completed := start.Add(12*time.Hour + 3*time.Minute)

	s := ScheduleState{}.Enable(12, start).ReArm(completed)
	require.NotNil(t, s.NextRunAt)
	assert.Equal(t, completed.Add(12*time.Hour), *s.NextRunAt,
		"next attempt is a full interval after completion, not after the previous deadline")
}

func TestScheduleState_ReArmDisabledIsNoOp(t *testing.T) {
	s := ScheduleState{}.ReArm(time.Now())
	assert.False(t, s.Enabled)
	assert.Nil(t, s.NextRunAt)
}

func TestTick(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	deadline := base.Add(12 * time.Hour)

	tests := []struct {
		name  string
		state ScheduleState
		now   time.Time
		due   bool
	}{
		{
			name:  "disabled never fires",
			state: ScheduleState{},
			now:   base.Add(100 * time.Hour),
			due:   false,
		},
		{
			name:  "before deadline",
			state: ScheduleState{Enabled: true, IntervalHours: 12, NextRunAt: &deadline},
			now:   deadline.Add(-time.Minute),
			due:   false,
		},
		{
			name:  "at deadline",
			state: ScheduleState{Enabled: true, IntervalHours: 12, NextRunAt: &deadline},
			now:   deadline,
			due:   true,
		},
		{
			name:  "stale deadline after restart fires immediately",
			state: ScheduleState{Enabled: true, IntervalHours: 12, NextRunAt: &deadline},
			now:   deadline.Add(48 * time.Hour),
			due:   true,
		},
		{
			name:  "enabled without deadline is inert",
			state: ScheduleState{Enabled: true, IntervalHours: 12},
			now:   base,
			due:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, due := Tick(tt.state, tt.now)
			assert.Equal(t, tt.due, due)
		})
	}
}

func TestSyncConfiguration_IsUsable(t *testing.T) {
	cfg := SyncConfiguration{
		Credential:     "tok-123",
		AccountID:      "acme",
		RepositoryName: "backups",
		Branch:         "main",
	}
	assert.True(t, cfg.IsUsable())

	cfg.Branch = ""
	assert.False(t, cfg.IsUsable())
}
