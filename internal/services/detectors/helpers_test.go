package detectors

import (
	"math/rand"
	"time"

	"WaveScan/internal/domain/models"
)

var seriesStart = time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)

// rampSeries builds n bars whose close moves by step per bar with a one-point range.
func rampSeries(symbol string, n int, first, step float64, volume int64) models.Series {
	candles := make([]models.Candle, n)
	for i := range candles {
		c := first + step*float64(i)
		candles[i] = models.Candle{
			Timestamp: seriesStart.Add(time.Duration(i) * 24 * time.Hour),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    volume,
		}
	}
	return models.Series{Symbol: symbol, Interval: "1d", Candles: candles}
}

func randomWalk(symbol string, n int, seed int64) models.Series {
	r := rand.New(rand.NewSource(seed))
	candles := make([]models.Candle, n)
	price := 100.0
	for i := range candles {
		price += r.NormFloat64() * 1.5
		if price < 5 {
			price = 5
		}
		spread := 0.2 + r.Float64()
		candles[i] = models.Candle{
			Timestamp: seriesStart.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + spread,
			Low:       price - spread,
			Close:     price,
			Volume:    int64(200000 + r.Intn(800000)),
		}
	}
	return models.Series{Symbol: symbol, Interval: "1h", Candles: candles}
}

func indexOf(series models.Series, ts time.Time) int {
	for i, c := range series.Candles {
		if c.Timestamp.Equal(ts) {
			return i
		}
	}
	return -1
}
