package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WaveScan/internal/domain/models"
	"WaveScan/pkg/logger"
)

func TestSnapshotLatestInitializing(t *testing.T) {
	view, err := NewSnapshotReader(&fakeStore{}).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusInitializing, view.Status)
	assert.NotNil(t, view.Groups)
	assert.Empty(t, view.Groups)
}

func TestSnapshotLatestOK(t *testing.T) {
	store := &fakeStore{}
	a := NewAggregator(store, newFakeMetrics(), logger.Nop())
	res := a.Aggregate(context.Background(), sampleGroups(), time.Now())

	view, err := NewSnapshotReader(store).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, view.Status)
	assert.Equal(t, res.ID, view.ID)
}

func TestSnapshotSearchFilters(t *testing.T) {
	store := &fakeStore{}
	NewAggregator(store, newFakeMetrics(), logger.Nop()).Aggregate(context.Background(), sampleGroups(), time.Now())
	r := NewSnapshotReader(store)

	got, err := r.Search(context.Background(), models.SignalsSearchRequest{Type: "buy", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)

	got, err = r.Search(context.Background(), models.SignalsSearchRequest{Strategy: "breakout", Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "AMD", got.Signals[0].Symbol)

	got, err = r.Search(context.Background(), models.SignalsSearchRequest{Symbol: " msft ", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, models.SignalSell, got.Signals[0].Type)

	got, err = r.Search(context.Background(), models.SignalsSearchRequest{Group: "none", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, got.Count)
	assert.NotNil(t, got.Signals)
}
