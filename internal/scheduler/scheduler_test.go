package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/weatherly/internal/domain"
)

type countingSweeper struct {
	runs atomic.Int32
}

func (c *countingSweeper) RefreshStale(context.Context) domain.RefreshSummary {
	c.runs.Add(1)
	return domain.RefreshSummary{Total: 1, Skipped: 1}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_Disabled(t *testing.T) {
	sw := &countingSweeper{}
	s := New(sw, 0, quietLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if jobs := s.scheduler.Jobs(); len(jobs) != 0 {
		t.Errorf("scheduled %d jobs, want 0", len(jobs))
	}
}

func TestScheduler_RunsSweep(t *testing.T) {
	sw := &countingSweeper{}
	s := New(sw, time.Second, quietLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for sw.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if sw.runs.Load() == 0 {
		t.Error("sweep never ran")
	}
}

func TestScheduler_Sweep(t *testing.T) {
	sw := &countingSweeper{}
	s := New(sw, DefaultInterval, quietLogger())

	s.sweep()

	if got := sw.runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}
