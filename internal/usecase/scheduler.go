package usecase

import (
	"context"
	"errors"
	"time"

	"WaveScan/pkg/logger"
)

// Scheduler triggers a cycle on a fixed interval. A tick that finds a cycle already
// running is skipped, not queued.
type Scheduler struct {
	runner     ScanRunner
	interval   time.Duration
	runOnStart bool
	log        *logger.Logger
}

func NewScheduler(runner ScanRunner, interval time.Duration, runOnStart bool, log *logger.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, runOnStart: runOnStart, log: log}
}

// Run blocks until ctx is cancelled. A zero interval leaves only the optional start run.
func (s *Scheduler) Run(ctx context.Context) {
	if s.runOnStart {
		s.tick(ctx)
	}
	if s.interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, err := s.runner.Run(ctx, "scheduler")
	switch {
	case errors.Is(err, ErrScanInProgress):
		s.log.Info("scheduled scan skipped, cycle in progress")
	case err != nil && ctx.Err() == nil:
		s.log.Error("scheduled scan failed", logger.Error(err))
	}
}
