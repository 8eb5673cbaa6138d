// Package indicators holds the stateless numeric primitives the detectors are built on.
// Every function returns a slice aligned index-for-index with its input.
package indicators

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
)

// Epsilon guards near-zero denominators.
const Epsilon = 1e-10

// Value is an indicator reading. OK is false while the lookback window is still filling,
// and V must not be used in that case.
type Value struct {
	V  float64
	OK bool
}

// Some wraps a defined reading.
func Some(v float64) Value { return Value{V: v, OK: true} }

// EWMA is the exponentially weighted moving average seeded with series[0],
// alpha = 2/(span+1).
func EWMA(series []float64, span int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	alpha := 2 / (float64(span) + 1)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EMA uses the EWMA recurrence. Breakout trend filters call it on raw closes.
func EMA(series []float64, span int) []float64 {
	return EWMA(series, span)
}

// SMA is the trailing n-bar mean, undefined before the first full window.
func SMA(series []float64, n int) []Value {
	out := make([]Value, len(series))
	if n <= 0 || len(series) < n {
		return out
	}
	sma := trend.NewSmaWithPeriod[float64](n)
	means := helper.ChanToSlice(sma.Compute(helper.SliceToChan(series)))

	// the library drops the warm-up bars; align its output to the tail of the input
	offset := len(series) - len(means)
	for j, m := range means {
		idx := offset + j
		if idx < n-1 || idx >= len(out) {
			continue
		}
		out[idx] = Some(m)
	}
	return out
}

// RSI is Wilder's relative strength index. The first defined reading is at index
// period, seeded from the first period differences.
func RSI(closes []float64, period int) []Value {
	out := make([]Value, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	p := float64(period)
	gain /= p
	loss /= p
	out[period] = Some(rsiFrom(gain, loss))

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain = (gain*(p-1) + math.Max(d, 0)) / p
		loss = (loss*(p-1) + math.Max(-d, 0)) / p
		out[i] = Some(rsiFrom(gain, loss))
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	return 100 - 100/(1+avgGain/math.Max(avgLoss, Epsilon))
}

// ATR approximates true range as high-low and averages it over period bars.
func ATR(highs, lows []float64, period int) []Value {
	n := len(highs)
	if len(lows) < n {
		n = len(lows)
	}
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		tr[i] = highs[i] - lows[i]
	}
	return SMA(tr, period)
}

// RollingAverage is the trailing n-bar mean with the window clipped at the start,
// so every index has a value.
func RollingAverage(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if n <= 0 {
		n = 1
	}
	for i := range values {
		start := i - n + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for _, v := range values[start : i+1] {
			sum += v
		}
		out[i] = sum / float64(i+1-start)
	}
	return out
}

// PriorHigh is the highest value of the n bars ending at i-1.
func PriorHigh(highs []float64, n int) []Value {
	return priorExtreme(highs, n, math.Max)
}

// PriorLow is the lowest value of the n bars ending at i-1.
func PriorLow(lows []float64, n int) []Value {
	return priorExtreme(lows, n, math.Min)
}

func priorExtreme(values []float64, n int, pick func(a, b float64) float64) []Value {
	out := make([]Value, len(values))
	if n <= 0 {
		return out
	}
	for i := n; i < len(values); i++ {
		ext := values[i-n]
		for _, v := range values[i-n+1 : i] {
			ext = pick(ext, v)
		}
		out[i] = Some(ext)
	}
	return out
}

// Round rounds half away from zero to the given decimal places.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
