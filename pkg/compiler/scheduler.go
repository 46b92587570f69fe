package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler recompiles on a cron schedule, so inventories fed by
// out-of-band tooling converge even when nothing touches the watched
// files.
type Scheduler struct {
	compiler *Compiler
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler for the given compiler. The
// schedule uses standard five-field cron syntax; an empty schedule
// makes Start a no-op.
func NewScheduler(compiler *Compiler, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		compiler: compiler,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "compiler.scheduler"),
	}
}

// Start begins scheduled recompiles. The scheduler stops itself when
// the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("recompile schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runRecompile(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule recompile: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("recompile scheduler started",
		"schedule", s.schedule,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runRecompile executes one scheduled compile cycle.
func (s *Scheduler) runRecompile(ctx context.Context) {
	s.logger.Info("starting scheduled recompile")

	snap, err := s.compiler.Recompile(ctx)
	if err != nil {
		s.logger.Error("scheduled recompile failed",
			"error", err,
		)
		return
	}

	s.logger.Info("scheduled recompile completed",
		"snapshot_id", snap.ID,
		"destination_count", len(snap.Keys),
	)
}

// Stop stops the scheduler and waits for a running compile to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("recompile scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled recompile time, or nil when
// nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
