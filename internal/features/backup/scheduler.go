package backup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// tickSpec polls once per minute. The poll is deliberately coarser than the
// hour-granularity intervals it serves.
const tickSpec = "@every 1m"

// tickBudget bounds a single tick, including the cycle it may run.
const tickBudget = 30 * time.Minute

// Scheduler is the thin imperative shell around the pure Tick decision. It
// keeps scheduled backups firing whether or not any dashboard is open.
type Scheduler struct {
	service BackupService
	cron    *cron.Cron
	log     *zap.Logger
}

func NewScheduler(service BackupService, log *zap.Logger) *Scheduler {
	return &Scheduler{
		service: service,
		cron:    cron.New(),
		log:     log,
	}
}

// Start begins the polling loop. Persisted state with a NextRunAt already in
// the past fires on the first tick, so a schedule that went stale across a
// restart is caught up immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(tickSpec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("backup scheduler started")
	return nil
}

// Stop halts the polling loop, letting an in-flight cycle finish.
func (s *Scheduler) Stop() error {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("backup scheduler stopped")
	return nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickBudget)
	defer cancel()

	if err := s.service.TickSchedule(ctx, time.Now()); err != nil {
		s.log.Error("schedule tick failed", zap.Error(err))
	}
}
