package models

import "time"

// Candle is one OHLCV bar for a fixed time bucket.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Series is an ascending run of candles for one symbol and interval.
// Spacing between bars is not assumed to be regular.
type Series struct {
	Symbol   string
	Interval string
	Candles  []Candle
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Candles) }

func (s Series) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

func (s Series) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Volumes returns volumes as floats so they can feed the indicator math directly.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = float64(c.Volume)
	}
	return out
}
