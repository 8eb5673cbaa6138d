package detectors

import (
	"math"

	"WaveScan/internal/domain/models"
	"WaveScan/internal/services/indicators"
)

// WaveTrendParams tunes the oscillator. Values are copied into the detector at construction.
type WaveTrendParams struct {
	ChannelLength    int     // n1
	AverageLength    int     // n2
	Overbought       float64 // nsc
	Oversold         float64 // nsv, negative
	SignalLength     int
	RSIPeriod        int
	RSIOversold      float64
	RSIOverbought    float64
	VolumeThreshold  float64
	VolumeWindow     int
	RecentVolumeBars int
}

// DefaultWaveTrendParams returns the production tuning.
func DefaultWaveTrendParams() WaveTrendParams {
	return WaveTrendParams{
		ChannelLength:    10,
		AverageLength:    21,
		Overbought:       53,
		Oversold:         -53,
		SignalLength:     4,
		RSIPeriod:        14,
		RSIOversold:      30,
		RSIOverbought:    70,
		VolumeThreshold:  500000,
		VolumeWindow:     10,
		RecentVolumeBars: 5,
	}
}

// WaveTrendFrame is the indicator frame for one series, aligned with its candles.
type WaveTrendFrame struct {
	WT1       []float64
	WT2       []indicators.Value
	RSI       []indicators.Value
	VolumeAvg []float64
}

// ComputeWaveTrend builds the oscillator lines, RSI and volume average for series.
func ComputeWaveTrend(series models.Series, p WaveTrendParams) WaveTrendFrame {
	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()
	ap := make([]float64, len(closes))
	for i := range closes {
		ap[i] = (highs[i] + lows[i] + closes[i]) / 3
	}

	esa := indicators.EWMA(ap, p.ChannelLength)
	dev := make([]float64, len(ap))
	for i := range ap {
		dev[i] = math.Abs(ap[i] - esa[i])
	}
	d := indicators.EWMA(dev, p.ChannelLength)

	ci := make([]float64, len(ap))
	for i := range ap {
		ci[i] = (ap[i] - esa[i]) / (0.015 * math.Max(d[i], indicators.Epsilon))
	}

	wt1 := indicators.EWMA(ci, p.AverageLength)
	return WaveTrendFrame{
		WT1:       wt1,
		WT2:       indicators.SMA(wt1, p.SignalLength),
		RSI:       indicators.RSI(closes, p.RSIPeriod),
		VolumeAvg: indicators.RollingAverage(series.Volumes(), p.VolumeWindow),
	}
}

// crossing is a bar index where wt1 crossed wt2 beyond a threshold.
type crossing struct {
	index int
	typ   models.SignalType
}

// waveTrendCrosses returns crossings in ascending bar order. A bar without wt2 at i or i-1
// never crosses.
func waveTrendCrosses(wt1 []float64, wt2 []indicators.Value, overbought, oversold float64) []crossing {
	var out []crossing
	for i := 1; i < len(wt1) && i < len(wt2); i++ {
		cur, prev := wt2[i], wt2[i-1]
		if !cur.OK || !prev.OK {
			continue
		}
		switch {
		case wt1[i] > cur.V && wt1[i-1] <= prev.V && wt1[i] <= oversold:
			out = append(out, crossing{index: i, typ: models.SignalBuy})
		case wt1[i] < cur.V && wt1[i-1] >= prev.V && wt1[i] >= overbought:
			out = append(out, crossing{index: i, typ: models.SignalSell})
		}
	}
	return out
}

// WaveTrend detects oscillator reversals in oversold/overbought territory.
type WaveTrend struct {
	params WaveTrendParams
}

func NewWaveTrend(p WaveTrendParams) *WaveTrend {
	return &WaveTrend{params: p}
}

func (w *WaveTrend) Strategy() models.Strategy { return models.StrategyWaveTrend }

// Detect returns every crossing in series, oldest first.
func (w *WaveTrend) Detect(series models.Series) []models.Signal {
	if series.Len() < 2 {
		return nil
	}
	frame := ComputeWaveTrend(series, w.params)
	crosses := waveTrendCrosses(frame.WT1, frame.WT2, w.params.Overbought, w.params.Oversold)
	if len(crosses) == 0 {
		return nil
	}

	avgVol := recentVolumeMean(series, w.params.RecentVolumeBars)
	out := make([]models.Signal, 0, len(crosses))
	for _, c := range crosses {
		out = append(out, w.signalAt(series, frame, c, avgVol))
	}
	return out
}

func (w *WaveTrend) signalAt(series models.Series, frame WaveTrendFrame, c crossing, avgVol float64) models.Signal {
	bar := series.Candles[c.index]
	sig := models.Signal{
		Symbol:          series.Symbol,
		Type:            c.typ,
		Strategy:        models.StrategyWaveTrend,
		Timestamp:       bar.Timestamp,
		Date:            FormatDate(bar.Timestamp),
		Price:           indicators.Round(bar.Close, 2),
		Volume:          bar.Volume,
		AverageVolume:   int64(math.Round(avgVol)),
		HighVolume:      avgVol >= w.params.VolumeThreshold,
		VolumeConfirmed: float64(bar.Volume) > frame.VolumeAvg[c.index],
	}
	if rsi := frame.RSI[c.index]; rsi.OK {
		v := indicators.Round(rsi.V, 1)
		sig.RSI = &v
		sig.RSIConfirmed = (c.typ == models.SignalBuy && rsi.V < w.params.RSIOversold) ||
			(c.typ == models.SignalSell && rsi.V > w.params.RSIOverbought)
	}
	return sig
}

// recentVolumeMean averages the last n volumes of the whole series.
func recentVolumeMean(series models.Series, n int) float64 {
	if n <= 0 || series.Len() == 0 {
		return 0
	}
	start := series.Len() - n
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, c := range series.Candles[start:] {
		sum += float64(c.Volume)
	}
	return sum / float64(series.Len()-start)
}
