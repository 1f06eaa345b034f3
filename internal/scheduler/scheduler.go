// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Config carries the deployment-time cadence choices. Both specs use the
// standard five-field cron format.
type Config struct {
	RenewalSpec  string
	ReminderSpec string
	JobTimeout   time.Duration
}

// Scheduler drives the renewal sweep and the reminder job from a single
// cron runner.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  *RenewalSweeper
	reminder *ReminderJob
	cfg      Config
	logger   *zap.Logger
}

func New(sweeper *RenewalSweeper, reminder *ReminderJob, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, errors.New("scheduler: renewal sweeper is required")
	}
	if reminder == nil {
		return nil, errors.New("scheduler: reminder job is required")
	}
	if logger == nil {
		return nil, errors.New("scheduler: logger is required")
	}
	if cfg.RenewalSpec == "" {
		cfg.RenewalSpec = "0 0 * * *"
	}
	if cfg.ReminderSpec == "" {
		cfg.ReminderSpec = "0 9 * * *"
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}

	return &Scheduler{
		cron:     cron.New(),
		sweeper:  sweeper,
		reminder: reminder,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Start registers both jobs and launches the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RenewalSpec, s.runSweep); err != nil {
		return fmt.Errorf("scheduler: invalid renewal cron spec %q: %w", s.cfg.RenewalSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, s.runReminder); err != nil {
		return fmt.Errorf("scheduler: invalid reminder cron spec %q: %w", s.cfg.ReminderSpec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("renewal_spec", s.cfg.RenewalSpec),
		zap.String("reminder_spec", s.cfg.ReminderSpec),
	)
	return nil
}

// Stop halts the cron runner and waits for in-flight jobs, bounded by the
// job timeout.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info("scheduler stopped")
	case <-time.After(s.cfg.JobTimeout):
		s.logger.Warn("scheduler stop timed out with jobs in flight")
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	// RunSweep logs its own outcome; a store read failure just means this
	// cycle is lost and the next tick retries.
	if _, err := s.sweeper.RunSweep(ctx, time.Now()); errors.Is(err, ErrSweepInProgress) {
		s.logger.Warn("renewal sweep skipped: previous sweep still running")
	}
}

func (s *Scheduler) runReminder() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	// Run logs its own outcome.
	_, _ = s.reminder.Run(ctx, time.Now())
}
