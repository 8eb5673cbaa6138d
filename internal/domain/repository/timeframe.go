package repository

import "WaveScan/internal/domain/models"

// Timeframe is a chart interval supported by the providers.
type Timeframe string

const (
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF1d  Timeframe = "1d"
	TF1wk Timeframe = "1wk"
)

// DefaultMinBars is the shortest history a strategy accepts.
func DefaultMinBars(s models.Strategy) int {
	switch s {
	case models.StrategyBreakout:
		return 60
	default:
		return 30
	}
}
