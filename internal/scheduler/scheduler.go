package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/mmcdole/weatherly/internal/domain"
)

// DefaultInterval is how often stale locations are re-fetched.
const DefaultInterval = 15 * time.Minute

// sweepTimeout bounds one sweep; fetches already started still finish.
const sweepTimeout = 2 * time.Minute

// Sweeper re-fetches every location whose weather is missing, stale or failed.
type Sweeper interface {
	RefreshStale(ctx context.Context) domain.RefreshSummary
}

// Scheduler periodically runs a freshness sweep.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. An interval of zero disables it.
func New(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep and starts the underlying scheduler.
// The first sweep runs one interval after Start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Debug("background refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.sweep)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("background refresh scheduled", "interval", s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future sweeps.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	summary := s.sweeper.RefreshStale(ctx)
	s.logger.Info("background refresh complete",
		"total", summary.Total,
		"fetched", summary.Fetched,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", time.Since(start))
}
