package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	domsvc "WaveScan/internal/domain/service"
	"WaveScan/internal/services/detectors"
	"WaveScan/pkg/logger"
)

// ScannerOption configures Scanner.
type ScannerOption func(*Scanner)

// WithWorkers bounds concurrent symbol tasks within a group.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFetchTimeout bounds each provider call.
func WithFetchTimeout(d time.Duration) ScannerOption {
	return func(s *Scanner) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithClock overrides the wall clock used for the recency cutoff.
func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// Scanner runs one detector across a symbol universe.
type Scanner struct {
	provider     domrepo.MarketDataProvider
	detectors    *detectors.Registry
	metrics      domrepo.Metrics
	log          *logger.Logger
	workers      int
	fetchTimeout time.Duration
	now          func() time.Time
}

func NewScanner(provider domrepo.MarketDataProvider, registry *detectors.Registry, metrics domrepo.Metrics, log *logger.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		provider:     provider,
		detectors:    registry,
		metrics:      metrics,
		log:          log,
		workers:      8,
		fetchTimeout: 15 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type symbolOutcome struct {
	signals []models.Signal
	err     *models.ScanError
}

// ScanGroup fetches and evaluates every symbol of g. Per-symbol failures are recorded in
// the result; the returned error is reserved for an unknown strategy or a panicking task.
func (s *Scanner) ScanGroup(ctx context.Context, g models.ScanGroup) (models.ScanResult, error) {
	det, err := s.detectors.Get(g.Strategy)
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("group %s: %w", g.Name, err)
	}
	minBars := g.MinBars
	if minBars <= 0 {
		minBars = domrepo.DefaultMinBars(g.Strategy)
	}

	now := s.now()
	var cutoff time.Time
	if g.Lookback > 0 {
		cutoff = now.Add(-g.Lookback)
	}

	outcomes := make([]symbolOutcome, len(g.Symbols))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, sym := range g.Symbols {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("group %s symbol %s: panic: %v", g.Name, sym, r)
				}
			}()
			outcomes[i] = s.scanSymbol(egCtx, det, g, sym, minBars, cutoff)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return models.ScanResult{}, err
	}

	res := models.ScanResult{
		Group:       g.Name,
		Strategy:    g.Strategy,
		Interval:    g.Interval,
		Range:       g.Range,
		Signals:     []models.Signal{},
		SymbolCount: len(g.Symbols),
		GeneratedAt: now,
	}
	for _, o := range outcomes {
		if o.err != nil {
			res.ErrorCount++
			res.Errors = append(res.Errors, o.err.Record())
			s.metrics.RecordSymbolError(g.Name, o.err.Kind)
			s.log.Warn("symbol skipped",
				logger.String("group", g.Name),
				logger.String("symbol", o.err.Symbol),
				logger.String("kind", string(o.err.Kind)),
				logger.Error(o.err.Err),
			)
			continue
		}
		res.Signals = append(res.Signals, o.signals...)
	}
	detectors.Sort(g.Strategy, res.Signals)

	s.metrics.RecordGroup(g.Name, g.Strategy, len(res.Signals), res.ErrorCount)
	s.log.Debug("group scanned",
		logger.String("group", g.Name),
		logger.Int("symbols", res.SymbolCount),
		logger.Int("signals", len(res.Signals)),
		logger.Int("errors", res.ErrorCount),
	)
	return res, nil
}

func (s *Scanner) scanSymbol(ctx context.Context, det domsvc.Detector, g models.ScanGroup, symbol string, minBars int, cutoff time.Time) symbolOutcome {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	series, err := s.provider.Fetch(fctx, symbol, g.Interval, g.Range)
	s.metrics.RecordLatency("fetch", time.Since(start).Seconds())
	if err != nil {
		return symbolOutcome{err: models.NewScanError(models.ErrKindFetch, symbol, err)}
	}
	if series.Len() < minBars {
		return symbolOutcome{err: models.NewScanError(models.ErrKindInsufficientHistory, symbol,
			fmt.Errorf("got %d bars, need %d", series.Len(), minBars))}
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	if series.Interval == "" {
		series.Interval = g.Interval
	}

	signals := det.Detect(series)
	if cutoff.IsZero() {
		return symbolOutcome{signals: signals}
	}
	recent := make([]models.Signal, 0, len(signals))
	for _, sig := range signals {
		if !sig.Timestamp.Before(cutoff) {
			recent = append(recent, sig)
		}
	}
	return symbolOutcome{signals: recent}
}
