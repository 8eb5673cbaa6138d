package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
)

var barStart = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func rampSeries(symbol string, n int, first, step float64) models.Series {
	candles := make([]models.Candle, n)
	for i := range candles {
		c := first + step*float64(i)
		candles[i] = models.Candle{
			Timestamp: barStart.Add(time.Duration(i) * 24 * time.Hour),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000000,
		}
	}
	return models.Series{Symbol: symbol, Interval: "1d", Candles: candles}
}

type fakeProvider struct {
	series   map[string]models.Series
	errs     map[string]error
	panics   map[string]bool
	block    map[string]bool
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (p *fakeProvider) Fetch(ctx context.Context, symbol, interval, rng string) (models.Series, error) {
	cur := p.inflight.Add(1)
	defer p.inflight.Add(-1)
	for {
		old := p.peak.Load()
		if cur <= old || p.peak.CompareAndSwap(old, cur) {
			break
		}
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.panics[symbol] {
		panic("boom")
	}
	if p.block[symbol] {
		<-ctx.Done()
		return models.Series{}, ctx.Err()
	}
	if err, ok := p.errs[symbol]; ok {
		return models.Series{}, err
	}
	s, ok := p.series[symbol]
	if !ok {
		return models.Series{Symbol: symbol, Interval: interval}, nil
	}
	return s, nil
}

type fakeStore struct {
	mu      sync.Mutex
	saved   *models.AggregateResult
	saves   int
	saveErr error
}

func (s *fakeStore) Save(_ context.Context, res *models.AggregateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = res
	return nil
}

func (s *fakeStore) Load(context.Context) (*models.AggregateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil, domrepo.ErrSnapshotNotFound
	}
	return s.saved, nil
}

type fakeMetrics struct {
	mu           sync.Mutex
	errors       map[string]int
	symbolErrors map[models.ErrorKind]int
	cycles       int
	cycleErrs    int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, symbolErrors: map[models.ErrorKind]int{}}
}

func (m *fakeMetrics) RecordCycle(_ float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
	if err != nil {
		m.cycleErrs++
	}
}

func (m *fakeMetrics) RecordGroup(string, models.Strategy, int, int) {}

func (m *fakeMetrics) RecordSymbolError(_ string, kind models.ErrorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbolErrors[kind]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func (m *fakeMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	unlocked int
}

func (l *fakeLock) TryLock(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Unlock(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.unlocked++
	return nil
}

type fakeSink struct {
	name string
	err  error
	mu   sync.Mutex
	got  []*models.AggregateResult
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Publish(_ context.Context, res *models.AggregateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, res)
	return s.err
}

var errUpstream = errors.New("upstream 503")

type fakeRunner struct {
	calls []string
	err   error
}

func (r *fakeRunner) Run(_ context.Context, source string) (*models.AggregateResult, error) {
	r.calls = append(r.calls, source)
	if r.err != nil {
		return nil, r.err
	}
	return &models.AggregateResult{ID: "c1"}, nil
}
