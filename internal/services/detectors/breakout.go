package detectors

import (
	"math"

	"WaveScan/internal/domain/models"
	"WaveScan/internal/services/indicators"
)

const confidenceStep = 20

// BreakoutParams tunes the breakout detector.
type BreakoutParams struct {
	FastEMA          int
	MidEMA           int
	SlowEMA          int
	RSIPeriod        int
	RSIBuyAbove      float64
	RSISellBelow     float64
	ATRPeriod        int
	ChannelPeriod    int
	VolumeWindow     int
	VolumeMultiplier float64
	Warmup           int
	MinConfidence    int
	TakeProfitATR    float64
	StopLossATR      float64
}

func DefaultBreakoutParams() BreakoutParams {
	return BreakoutParams{
		FastEMA:          20,
		MidEMA:           50,
		SlowEMA:          200,
		RSIPeriod:        14,
		RSIBuyAbove:      60,
		RSISellBelow:     40,
		ATRPeriod:        14,
		ChannelPeriod:    20,
		VolumeWindow:     20,
		VolumeMultiplier: 1.5,
		Warmup:           200,
		MinConfidence:    40,
		TakeProfitATR:    3,
		StopLossATR:      1.5,
	}
}

// BreakoutFrame is the indicator frame for one series, aligned with its candles.
type BreakoutFrame struct {
	EMAFast   []float64
	EMAMid    []float64
	EMASlow   []float64
	RSI       []indicators.Value
	ATR       []indicators.Value
	PrevHigh  []indicators.Value
	PrevLow   []indicators.Value
	VolumeAvg []float64
}

func ComputeBreakout(series models.Series, p BreakoutParams) BreakoutFrame {
	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()
	return BreakoutFrame{
		EMAFast:   indicators.EMA(closes, p.FastEMA),
		EMAMid:    indicators.EMA(closes, p.MidEMA),
		EMASlow:   indicators.EMA(closes, p.SlowEMA),
		RSI:       indicators.RSI(closes, p.RSIPeriod),
		ATR:       indicators.ATR(highs, lows, p.ATRPeriod),
		PrevHigh:  indicators.PriorHigh(highs, p.ChannelPeriod),
		PrevLow:   indicators.PriorLow(lows, p.ChannelPeriod),
		VolumeAvg: indicators.RollingAverage(series.Volumes(), p.VolumeWindow),
	}
}

// Breakout detects closes outside the prior channel in the direction of an aligned EMA stack.
type Breakout struct {
	params BreakoutParams
}

func NewBreakout(p BreakoutParams) *Breakout {
	return &Breakout{params: p}
}

func (b *Breakout) Strategy() models.Strategy { return models.StrategyBreakout }

// Detect scans the full history and keeps the earliest qualifying signal per direction.
// The result is ordered by confidence, then recency.
func (b *Breakout) Detect(series models.Series) []models.Signal {
	p := b.params
	if series.Len() <= p.Warmup {
		return nil
	}
	f := ComputeBreakout(series, p)

	var out []models.Signal
	seen := make(map[models.SignalType]bool, 2)
	for i := p.Warmup; i < series.Len(); i++ {
		atr := f.ATR[i]
		if !atr.OK || atr.V <= 0 {
			continue
		}
		prevHigh, prevLow := f.PrevHigh[i], f.PrevLow[i]
		if !prevHigh.OK || !prevLow.OK {
			continue
		}

		bar := series.Candles[i]
		bullish := f.EMAFast[i] > f.EMAMid[i] && f.EMAMid[i] > f.EMASlow[i]
		bearish := f.EMAFast[i] < f.EMAMid[i] && f.EMAMid[i] < f.EMASlow[i]

		var typ models.SignalType
		var aligned bool
		switch {
		case bar.Close > prevHigh.V && bullish:
			typ, aligned = models.SignalBuy, bullish
		case bar.Close < prevLow.V && bearish:
			typ, aligned = models.SignalSell, bearish
		default:
			continue
		}
		if seen[typ] {
			continue
		}

		highVolume := float64(bar.Volume) > p.VolumeMultiplier*f.VolumeAvg[i]
		rsi := f.RSI[i]
		rsiConfirmed := rsi.OK && ((typ == models.SignalBuy && rsi.V > p.RSIBuyAbove) ||
			(typ == models.SignalSell && rsi.V < p.RSISellBelow))

		// trend alignment is scored even though it already gates the candidate
		confidence := 0
		if highVolume {
			confidence += confidenceStep
		}
		if rsiConfirmed {
			confidence += confidenceStep
		}
		if aligned {
			confidence += confidenceStep
		}
		if confidence < p.MinConfidence {
			continue
		}
		seen[typ] = true

		out = append(out, b.signalAt(series, f, i, typ, confidence, highVolume, rsiConfirmed))
	}
	SortBreakout(out)
	return out
}

func (b *Breakout) signalAt(series models.Series, f BreakoutFrame, i int, typ models.SignalType, confidence int, highVolume, rsiConfirmed bool) models.Signal {
	bar := series.Candles[i]
	atr := f.ATR[i].V
	tp, sl := bar.Close+b.params.TakeProfitATR*atr, bar.Close-b.params.StopLossATR*atr
	if typ == models.SignalSell {
		tp, sl = bar.Close-b.params.TakeProfitATR*atr, bar.Close+b.params.StopLossATR*atr
	}
	tp, sl = indicators.Round(tp, 2), indicators.Round(sl, 2)

	sig := models.Signal{
		Symbol:          series.Symbol,
		Type:            typ,
		Strategy:        models.StrategyBreakout,
		Timestamp:       bar.Timestamp,
		Date:            FormatDate(bar.Timestamp),
		Price:           indicators.Round(bar.Close, 2),
		Volume:          bar.Volume,
		AverageVolume:   int64(math.Round(f.VolumeAvg[i])),
		HighVolume:      highVolume,
		VolumeConfirmed: float64(bar.Volume) > f.VolumeAvg[i],
		RSIConfirmed:    rsiConfirmed,
		Confidence:      &confidence,
		TakeProfit:      &tp,
		StopLoss:        &sl,
		Trend: &models.TrendSnapshot{
			EMA20:  indicators.Round(f.EMAFast[i], 2),
			EMA50:  indicators.Round(f.EMAMid[i], 2),
			EMA200: indicators.Round(f.EMASlow[i], 2),
		},
	}
	if rsi := f.RSI[i]; rsi.OK {
		v := indicators.Round(rsi.V, 1)
		sig.RSI = &v
	}
	return sig
}
