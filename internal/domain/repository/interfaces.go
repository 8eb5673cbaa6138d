package repository

import (
	"context"
	"errors"

	"WaveScan/internal/domain/models"
)

// ErrSnapshotNotFound means no cycle has been stored yet.
var ErrSnapshotNotFound = errors.New("snapshot: not found")

// MarketDataProvider fetches an ascending candle series. An empty series with a nil
// error means the provider has no data for the range.
type MarketDataProvider interface {
	Fetch(ctx context.Context, symbol, interval, rng string) (models.Series, error)
}

// SnapshotStore persists the latest aggregate. Save overwrites; Load returns
// ErrSnapshotNotFound when nothing was stored.
type SnapshotStore interface {
	Save(ctx context.Context, res *models.AggregateResult) error
	Load(ctx context.Context) (*models.AggregateResult, error)
}

// ScanLock guards a cycle so only one producer writes per cycle.
type ScanLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// SignalSink receives each finished aggregate. Delivery is best effort.
type SignalSink interface {
	Name() string
	Publish(ctx context.Context, res *models.AggregateResult) error
}

type Metrics interface {
	RecordCycle(seconds float64, err error)
	RecordGroup(group string, strategy models.Strategy, signals, symbolErrors int)
	RecordSymbolError(group string, kind models.ErrorKind)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
