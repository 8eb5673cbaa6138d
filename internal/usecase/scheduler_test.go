package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WaveScan/internal/domain/models"
	"WaveScan/pkg/logger"
)

type syncRunner struct {
	mu      sync.Mutex
	sources []string
	err     error
}

func (r *syncRunner) Run(_ context.Context, source string) (*models.AggregateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
	return &models.AggregateResult{}, r.err
}

func (r *syncRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources)
}

func TestSchedulerRunsOnStartAndTicks(t *testing.T) {
	runner := &syncRunner{}
	s := NewScheduler(runner, 10*time.Millisecond, true, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, "scheduler", runner.sources[0])
}

func TestSchedulerZeroIntervalOnlyStartRun(t *testing.T) {
	runner := &syncRunner{err: ErrScanInProgress}
	s := NewScheduler(runner, 0, true, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	s.Run(ctx)
	assert.Equal(t, 1, runner.count())
}

func TestSchedulerNoStartRun(t *testing.T) {
	runner := &syncRunner{}
	s := NewScheduler(runner, time.Hour, false, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s.Run(ctx)
	assert.Equal(t, 0, runner.count())
}
