package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	"WaveScan/pkg/logger"
)

// ErrScanInProgress is returned when another cycle holds the scan lock.
var ErrScanInProgress = errors.New("scan already in progress")

// ScanCycle runs every configured group once and aggregates the outcome.
type ScanCycle struct {
	scanner    *Scanner
	aggregator *Aggregator
	lock       domrepo.ScanLock
	groups     []models.ScanGroup
	metrics    domrepo.Metrics
	log        *logger.Logger
}

// NewScanCycle builds a cycle. lock may be nil when a single process owns the snapshot.
func NewScanCycle(scanner *Scanner, aggregator *Aggregator, lock domrepo.ScanLock, groups []models.ScanGroup, metrics domrepo.Metrics, log *logger.Logger) *ScanCycle {
	return &ScanCycle{
		scanner:    scanner,
		aggregator: aggregator,
		lock:       lock,
		groups:     groups,
		metrics:    metrics,
		log:        log,
	}
}

// Groups returns the configured groups.
func (c *ScanCycle) Groups() []models.ScanGroup { return c.groups }

// Run executes one cycle. Groups run concurrently and independently; the aggregate is
// persisted before Run returns.
func (c *ScanCycle) Run(ctx context.Context, source string) (*models.AggregateResult, error) {
	if c.lock != nil {
		ok, err := c.lock.TryLock(ctx)
		if err != nil {
			c.metrics.RecordError("scan_lock")
			return nil, fmt.Errorf("acquire scan lock: %w", err)
		}
		if !ok {
			return nil, ErrScanInProgress
		}
		defer func() {
			if err := c.lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				c.log.Warn("scan lock release failed", logger.Error(err))
			}
		}()
	}

	started := time.Now()
	c.log.Info("scan cycle started", logger.String("source", source), logger.Int("groups", len(c.groups)))

	results := make([]models.ScanResult, len(c.groups))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, g := range c.groups {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("group %s: panic: %v", g.Name, r)
				}
			}()
			res, err := c.scanner.ScanGroup(egCtx, g)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		c.metrics.RecordCycle(time.Since(started).Seconds(), err)
		c.log.Error("scan cycle aborted", logger.String("source", source), logger.Error(err))
		return nil, fmt.Errorf("scan cycle: %w", err)
	}

	res := c.aggregator.Aggregate(ctx, results, started)
	c.metrics.RecordCycle(time.Since(started).Seconds(), nil)
	c.log.Info("scan cycle finished",
		logger.String("source", source),
		logger.String("cycle", res.ID),
		logger.Int("signals", res.SignalCount),
		logger.Int("errors", res.ErrorCount),
		logger.Duration("duration", time.Since(started)),
	)
	return res, nil
}
