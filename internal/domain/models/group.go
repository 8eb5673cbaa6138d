package models

import "time"

// ScanGroup is one strategy over one timeframe for a symbol universe.
type ScanGroup struct {
	Name     string
	Strategy Strategy
	Interval string
	Range    string
	Lookback time.Duration // signals older than now-Lookback are dropped; zero keeps all
	MinBars  int
	Symbols  []string
}
