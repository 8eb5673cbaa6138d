package models

import "time"

// SignalType is the trade direction of a signal.
type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
)

// Strategy names a detector.
type Strategy string

const (
	StrategyWaveTrend Strategy = "wavetrend"
	StrategyBreakout  Strategy = "breakout"
)

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyWaveTrend, StrategyBreakout:
		return true
	default:
		return false
	}
}

// TrendSnapshot holds the EMA stack at the signal bar.
type TrendSnapshot struct {
	EMA20  float64 `json:"ema20"`
	EMA50  float64 `json:"ema50"`
	EMA200 float64 `json:"ema200"`
}

// Signal is a single detection. It is never mutated after creation.
type Signal struct {
	Symbol          string         `json:"symbol"`
	Type            SignalType     `json:"type"`
	Strategy        Strategy       `json:"strategy"`
	Timestamp       time.Time      `json:"timestamp"`
	Date            string         `json:"date"`
	Price           float64        `json:"price"`
	Volume          int64          `json:"volume"`
	AverageVolume   int64          `json:"avgVolume"`
	HighVolume      bool           `json:"highVolume"`
	VolumeConfirmed bool           `json:"volumeConfirmed"`
	RSI             *float64       `json:"rsi"`
	RSIConfirmed    bool           `json:"rsiConfirmed"`
	Confidence      *int           `json:"confidence,omitempty"`
	TakeProfit      *float64       `json:"takeProfit,omitempty"`
	StopLoss        *float64       `json:"stopLoss,omitempty"`
	Trend           *TrendSnapshot `json:"trend,omitempty"`
}

// ConfidenceOrZero returns the breakout confidence, or 0 for strategies without one.
func (s Signal) ConfidenceOrZero() int {
	if s.Confidence == nil {
		return 0
	}
	return *s.Confidence
}
