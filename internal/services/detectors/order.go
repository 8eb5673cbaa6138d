package detectors

import (
	"sort"
	"time"

	"WaveScan/internal/domain/models"
)

const dateLayout = "2006-01-02 15:04"

// FormatDate renders a bar timestamp for display, always in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// SortWaveTrend orders newest first. Symbol and type break ties.
func SortWaveTrend(signals []models.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return tieBreak(a, b)
	})
}

// SortBreakout orders by confidence, then newest first. Symbol and type break ties.
func SortBreakout(signals []models.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if ca, cb := a.ConfidenceOrZero(), b.ConfidenceOrZero(); ca != cb {
			return ca > cb
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return tieBreak(a, b)
	})
}

// Sort applies the ordering that belongs to strategy.
func Sort(strategy models.Strategy, signals []models.Signal) {
	if strategy == models.StrategyBreakout {
		SortBreakout(signals)
		return
	}
	SortWaveTrend(signals)
}

func tieBreak(a, b models.Signal) bool {
	if a.Symbol != b.Symbol {
		return a.Symbol < b.Symbol
	}
	return a.Type < b.Type
}
