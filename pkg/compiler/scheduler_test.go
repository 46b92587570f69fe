package compiler

import (
	"context"
	"testing"
)

func TestSchedulerInvalidSchedule(t *testing.T) {
	c, _ := newTestCompiler(t, nil)
	s := NewScheduler(c, "not a cron spec", nil)

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() error = nil for an invalid cron schedule")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after a failed Start")
	}
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	c, _ := newTestCompiler(t, nil)
	s := NewScheduler(c, "", nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true for an empty schedule")
	}
	if s.NextRun() != nil {
		t.Error("NextRun() != nil for an empty schedule")
	}
}

func TestSchedulerStartAndStop(t *testing.T) {
	c, _ := newTestCompiler(t, nil)
	s := NewScheduler(c, "@hourly", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if s.NextRun() == nil {
		t.Error("NextRun() = nil while running")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
