package detectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WaveScan/internal/domain/models"
)

func TestBreakoutRisingRampKeepsEarliestBuy(t *testing.T) {
	series := rampSeries("AAPL", 260, 100, 1, 1000000)
	got := NewBreakout(DefaultBreakoutParams()).Detect(series)

	require.Len(t, got, 1)
	sig := got[0]
	assert.Equal(t, models.SignalBuy, sig.Type)
	assert.Equal(t, models.StrategyBreakout, sig.Strategy)
	assert.Equal(t, series.Candles[200].Timestamp, sig.Timestamp)
	assert.Equal(t, 300.0, sig.Price)
	require.NotNil(t, sig.Confidence)
	// trend alignment plus RSI confirmation; flat volume never counts
	assert.Equal(t, 40, *sig.Confidence)
	assert.False(t, sig.HighVolume)
	require.NotNil(t, sig.TakeProfit)
	require.NotNil(t, sig.StopLoss)
	assert.InDelta(t, 303.0, *sig.TakeProfit, 1e-9)
	assert.InDelta(t, 298.5, *sig.StopLoss, 1e-9)
	require.NotNil(t, sig.Trend)
	assert.Greater(t, sig.Trend.EMA20, sig.Trend.EMA50)
	assert.Greater(t, sig.Trend.EMA50, sig.Trend.EMA200)
}

func TestBreakoutFallingRampSells(t *testing.T) {
	series := rampSeries("TSLA", 260, 400, -1, 1000000)
	got := NewBreakout(DefaultBreakoutParams()).Detect(series)

	require.Len(t, got, 1)
	sig := got[0]
	assert.Equal(t, models.SignalSell, sig.Type)
	assert.Equal(t, series.Candles[200].Timestamp, sig.Timestamp)
	assert.Equal(t, 40, *sig.Confidence)
	assert.InDelta(t, 197.0, *sig.TakeProfit, 1e-9)
	assert.InDelta(t, 201.5, *sig.StopLoss, 1e-9)
}

func TestBreakoutVolumeSpikeRaisesConfidence(t *testing.T) {
	series := rampSeries("NVDA", 260, 100, 1, 1000000)
	series.Candles[200].Volume = 5000000
	got := NewBreakout(DefaultBreakoutParams()).Detect(series)

	require.Len(t, got, 1)
	assert.Equal(t, 60, *got[0].Confidence)
	assert.True(t, got[0].HighVolume)
	assert.True(t, got[0].VolumeConfirmed)
}

func TestBreakoutDedupKeepsFirstQualifying(t *testing.T) {
	p := DefaultBreakoutParams()
	p.MinConfidence = 60
	series := rampSeries("AMD", 260, 100, 1, 1000000)
	series.Candles[230].Volume = 5000000
	series.Candles[240].Volume = 5000000

	got := NewBreakout(p).Detect(series)
	require.Len(t, got, 1)
	assert.Equal(t, series.Candles[230].Timestamp, got[0].Timestamp)
}

func TestBreakoutSkipsWarmupAndFlatRange(t *testing.T) {
	det := NewBreakout(DefaultBreakoutParams())
	assert.Empty(t, det.Detect(rampSeries("X", 200, 100, 1, 1000)))

	flat := rampSeries("Y", 260, 100, 1, 1000)
	for i := range flat.Candles {
		flat.Candles[i].High = flat.Candles[i].Close
		flat.Candles[i].Low = flat.Candles[i].Close
	}
	assert.Empty(t, det.Detect(flat))
}

func TestBreakoutConfidenceIsStepMultiple(t *testing.T) {
	det := NewBreakout(DefaultBreakoutParams())
	for seed := int64(1); seed <= 8; seed++ {
		for _, sig := range det.Detect(randomWalk("SYM", 500, seed)) {
			c := sig.ConfidenceOrZero()
			assert.Zero(t, c%confidenceStep)
			assert.GreaterOrEqual(t, c, 40)
			assert.LessOrEqual(t, c, 100)
		}
	}
}

func TestBreakoutDetectIdempotent(t *testing.T) {
	det := NewBreakout(DefaultBreakoutParams())
	for seed := int64(1); seed <= 5; seed++ {
		series := randomWalk("AMD", 500, seed)
		assert.Equal(t, det.Detect(series), det.Detect(series))
	}
}

func TestBreakoutAtMostOnePerDirection(t *testing.T) {
	det := NewBreakout(DefaultBreakoutParams())
	for seed := int64(1); seed <= 8; seed++ {
		counts := map[models.SignalType]int{}
		for _, sig := range det.Detect(randomWalk("SYM", 500, seed)) {
			counts[sig.Type]++
		}
		assert.LessOrEqual(t, counts[models.SignalBuy], 1)
		assert.LessOrEqual(t, counts[models.SignalSell], 1)
	}
}

func TestSortBreakoutOrdering(t *testing.T) {
	c40, c60 := 40, 60
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	signals := []models.Signal{
		{Symbol: "B", Type: models.SignalBuy, Timestamp: t0, Confidence: &c40},
		{Symbol: "A", Type: models.SignalSell, Timestamp: t0, Confidence: &c40},
		{Symbol: "C", Type: models.SignalBuy, Timestamp: t0.Add(time.Hour), Confidence: &c40},
		{Symbol: "D", Type: models.SignalBuy, Timestamp: t0.Add(-time.Hour), Confidence: &c60},
	}
	SortBreakout(signals)

	var order []string
	for _, s := range signals {
		order = append(order, s.Symbol)
	}
	assert.Equal(t, []string{"D", "C", "A", "B"}, order)
}

func TestSortWaveTrendNewestFirst(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	signals := []models.Signal{
		{Symbol: "B", Type: models.SignalSell, Timestamp: t0},
		{Symbol: "A", Type: models.SignalBuy, Timestamp: t0.Add(time.Hour)},
		{Symbol: "B", Type: models.SignalBuy, Timestamp: t0},
	}
	Sort(models.StrategyWaveTrend, signals)
	assert.Equal(t, "A", signals[0].Symbol)
	assert.Equal(t, models.SignalBuy, signals[1].Type)
	assert.Equal(t, models.SignalSell, signals[2].Type)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultWaveTrendParams(), DefaultBreakoutParams())
	d, err := r.Get(models.StrategyBreakout)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyBreakout, d.Strategy())

	_, err = r.Get("macd")
	assert.Error(t, err)
}
