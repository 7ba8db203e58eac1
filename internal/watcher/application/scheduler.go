package application

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the full provider sweep on a fixed interval.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	logger   *log.Logger
}

// NewScheduler constructs a Scheduler. A non-positive interval falls back to
// the default check interval.
func NewScheduler(runner *Runner, interval time.Duration, logger *log.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Start runs one sweep immediately, then repeats on every tick until ctx is
// cancelled. It blocks; callers run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if err := s.runner.RunAll(ctx); err != nil {
		if s.logger != nil {
			s.logger.Printf("scheduler: sweep aborted: %v", err)
		}
	}
}
