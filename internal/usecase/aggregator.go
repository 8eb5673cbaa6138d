package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	"WaveScan/internal/services/detectors"
	"WaveScan/pkg/logger"
)

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithSinks registers best-effort consumers of every finished aggregate.
func WithSinks(sinks ...domrepo.SignalSink) AggregatorOption {
	return func(a *Aggregator) {
		for _, s := range sinks {
			if s != nil {
				a.sinks = append(a.sinks, s)
			}
		}
	}
}

// WithAggregatorClock overrides the generation timestamp source.
func WithAggregatorClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithSinkTimeout bounds each sink publish.
func WithSinkTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.sinkTimeout = d
		}
	}
}

// Aggregator combines group results into one snapshot and hands it to persistence.
type Aggregator struct {
	store       domrepo.SnapshotStore
	sinks       []domrepo.SignalSink
	metrics     domrepo.Metrics
	log         *logger.Logger
	now         func() time.Time
	sinkTimeout time.Duration
}

func NewAggregator(store domrepo.SnapshotStore, metrics domrepo.Metrics, log *logger.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		store:       store,
		metrics:     metrics,
		log:         log,
		now:         time.Now,
		sinkTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble orders each group, stamps one generation time on all of them and computes totals.
func (a *Aggregator) Assemble(groups []models.ScanResult, started time.Time) *models.AggregateResult {
	generated := a.now()
	res := &models.AggregateResult{
		ID:          uuid.NewString(),
		GeneratedAt: generated,
		Groups:      make([]models.ScanResult, 0, len(groups)),
	}
	if !started.IsZero() {
		res.Duration = generated.Sub(started)
	}

	for _, g := range groups {
		g.Signals = append([]models.Signal{}, g.Signals...)
		detectors.Sort(g.Strategy, g.Signals)
		g.GeneratedAt = generated

		// groups share one universe, so the widest group is the symbol count
		if g.SymbolCount > res.SymbolCount {
			res.SymbolCount = g.SymbolCount
		}
		res.SignalCount += len(g.Signals)
		res.ErrorCount += g.ErrorCount
		res.Groups = append(res.Groups, g)
	}
	return res
}

// Aggregate assembles the snapshot, writes it once and fans it out to the sinks.
// A failed write or sink is logged and counted; the assembled result is always returned.
func (a *Aggregator) Aggregate(ctx context.Context, groups []models.ScanResult, started time.Time) *models.AggregateResult {
	res := a.Assemble(groups, started)

	start := time.Now()
	if err := a.store.Save(ctx, res); err != nil {
		perr := models.NewScanError(models.ErrKindPersistence, "", err)
		a.metrics.RecordError(string(perr.Kind))
		a.log.Error("snapshot write failed", logger.String("cycle", res.ID), logger.Error(perr))
	} else {
		a.metrics.RecordLatency("snapshot_save", time.Since(start).Seconds())
	}

	a.publish(ctx, res)
	return res
}

func (a *Aggregator) publish(ctx context.Context, res *models.AggregateResult) {
	if len(a.sinks) == 0 {
		return
	}
	var eg errgroup.Group
	for _, sink := range a.sinks {
		eg.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, a.sinkTimeout)
			defer cancel()
			start := time.Now()
			if err := sink.Publish(sctx, res); err != nil {
				a.metrics.RecordError("sink_" + sink.Name())
				a.log.Error("sink publish failed",
					logger.String("sink", sink.Name()),
					logger.String("cycle", res.ID),
					logger.Error(err),
				)
				return nil
			}
			a.metrics.RecordLatency("sink_"+sink.Name(), time.Since(start).Seconds())
			return nil
		})
	}
	_ = eg.Wait()
}
