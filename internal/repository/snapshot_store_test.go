package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	"WaveScan/pkg/cache"
)

func sampleAggregate() *models.AggregateResult {
	rsi := 27.4
	conf := 60
	ts := time.Date(2025, 6, 3, 14, 30, 0, 0, time.UTC)
	return &models.AggregateResult{
		ID:          "cycle-1",
		GeneratedAt: ts.Add(time.Minute),
		SymbolCount: 2,
		SignalCount: 2,
		ErrorCount:  1,
		Duration:    1500 * time.Millisecond,
		Groups: []models.ScanResult{
			{
				Group: "wt_1h", Strategy: models.StrategyWaveTrend, Interval: "1h", Range: "14d",
				SymbolCount: 2, ErrorCount: 1, GeneratedAt: ts.Add(time.Minute),
				Errors: []models.SymbolError{{Symbol: "BAD", Kind: models.ErrKindFetch, Message: "503"}},
				Signals: []models.Signal{{
					Symbol: "AAPL", Type: models.SignalBuy, Strategy: models.StrategyWaveTrend,
					Timestamp: ts, Date: "2025-06-03 14:30", Price: 190.12, Volume: 900000,
					AverageVolume: 700000, HighVolume: true, RSI: &rsi, RSIConfirmed: true,
				}},
			},
			{
				Group: "breakout_1d", Strategy: models.StrategyBreakout, Interval: "1d", Range: "1y",
				SymbolCount: 2, GeneratedAt: ts.Add(time.Minute),
				Signals: []models.Signal{{
					Symbol: "NVDA", Type: models.SignalSell, Strategy: models.StrategyBreakout,
					Timestamp: ts, Price: 101.5, Confidence: &conf,
					Trend: &models.TrendSnapshot{EMA20: 99, EMA50: 100, EMA200: 110},
				}},
			},
		},
	}
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(cache.WithRedisAddr(mr.Addr()), cache.WithRedisPrefix("wavescan"))
	require.NoError(t, err)
	defer rc.Close()

	store := NewCacheSnapshotStore(rc, "", 0)
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domrepo.ErrSnapshotNotFound)

	want := sampleAggregate()
	require.NoError(t, store.Save(ctx, want))
	assert.True(t, mr.Exists("wavescan:wt_signals"))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))
	require.Len(t, got.Groups, 2)
	assert.Equal(t, want.Groups[0].Signals[0].Symbol, got.Groups[0].Signals[0].Symbol)
	assert.Equal(t, 27.4, *got.Groups[0].Signals[0].RSI)
	assert.Equal(t, 60, *got.Groups[1].Signals[0].Confidence)
	assert.Nil(t, got.Groups[0].Signals[0].Confidence)
	assert.Equal(t, want.Duration, got.Duration)
}

func TestSnapshotStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheSnapshotStore(mc, "snap", time.Hour)

	first := sampleAggregate()
	second := sampleAggregate()
	second.ID = "cycle-2"
	second.Groups = second.Groups[:1]

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cycle-2", got.ID)
	assert.Len(t, got.Groups, 1)
}

func TestScanLockLease(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()

	a := NewCacheScanLock(mc, "", time.Minute)
	b := NewCacheScanLock(mc, "", time.Minute)

	ok, err := a.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Unlock(ctx))
	ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
