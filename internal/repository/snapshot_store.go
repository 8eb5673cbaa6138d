package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	"WaveScan/pkg/cache"
)

// DefaultSnapshotKey is the key the dashboard reads.
const DefaultSnapshotKey = "wt_signals"

// CacheSnapshotStore keeps the latest aggregate under a single cache key. Each Save is
// one write of the whole document, so readers never see a partial cycle.
type CacheSnapshotStore struct {
	cache cache.Service
	key   string
	ttl   time.Duration
}

// NewCacheSnapshotStore stores under key; a zero ttl keeps the snapshot until overwritten.
func NewCacheSnapshotStore(c cache.Service, key string, ttl time.Duration) *CacheSnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &CacheSnapshotStore{cache: c, key: key, ttl: ttl}
}

func (s *CacheSnapshotStore) Save(ctx context.Context, res *models.AggregateResult) error {
	if res == nil {
		return fmt.Errorf("save snapshot: nil result")
	}
	if err := s.cache.Set(ctx, s.key, res, s.ttl); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.key, err)
	}
	return nil
}

func (s *CacheSnapshotStore) Load(ctx context.Context) (*models.AggregateResult, error) {
	var res models.AggregateResult
	if err := s.cache.Get(ctx, s.key, &res); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, domrepo.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", s.key, err)
	}
	return &res, nil
}

// CacheScanLock is a lease on one cache key. The TTL bounds how long a crashed
// process can block the next cycle.
type CacheScanLock struct {
	cache cache.Service
	key   string
	ttl   time.Duration
}

func NewCacheScanLock(c cache.Service, key string, ttl time.Duration) *CacheScanLock {
	if key == "" {
		key = cache.GenerateKey("scan", "lock")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CacheScanLock{cache: c, key: key, ttl: ttl}
}

func (l *CacheScanLock) TryLock(ctx context.Context) (bool, error) {
	return l.cache.TryLock(ctx, l.key, l.ttl)
}

func (l *CacheScanLock) Unlock(ctx context.Context) error {
	err := l.cache.Unlock(ctx, l.key)
	if errors.Is(err, cache.ErrNotLocked) {
		return fmt.Errorf("scan lock %s expired before release: %w", l.key, err)
	}
	return err
}

var (
	_ domrepo.SnapshotStore = (*CacheSnapshotStore)(nil)
	_ domrepo.ScanLock      = (*CacheScanLock)(nil)
)
