package models

import (
	"encoding/json"
	"time"
)

// SymbolError records why one symbol produced no detections in a group.
type SymbolError struct {
	Symbol  string    `json:"symbol"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ScanResult is the outcome of one strategy over one timeframe.
type ScanResult struct {
	Group       string        `json:"group"`
	Strategy    Strategy      `json:"strategy"`
	Interval    string        `json:"interval"`
	Range       string        `json:"range"`
	Signals     []Signal      `json:"signals"`
	SymbolCount int           `json:"symbolCount"`
	ErrorCount  int           `json:"errorCount"`
	Errors      []SymbolError `json:"errors,omitempty"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// AggregateResult nests every group result of one scan cycle.
type AggregateResult struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"updatedAt"`
	SymbolCount int           `json:"symbolCount"`
	SignalCount int           `json:"signalCount"`
	ErrorCount  int           `json:"errorCount"`
	Duration    time.Duration `json:"durationNs"`
	Groups      []ScanResult  `json:"groups"`
}

// Group returns the named group result, if present.
func (a *AggregateResult) Group(name string) (ScanResult, bool) {
	for _, g := range a.Groups {
		if g.Group == name {
			return g, true
		}
	}
	return ScanResult{}, false
}

// Snapshot status values reported to the dashboard.
const (
	StatusOK           = "ok"
	StatusInitializing = "initializing"
)

// SnapshotView is the dashboard payload: the stored aggregate plus a status flag.
type SnapshotView struct {
	*AggregateResult
	Status string `json:"status"`
}

// MarshalJSON writes updatedAt as null until a cycle has been stored.
func (v SnapshotView) MarshalJSON() ([]byte, error) {
	type view SnapshotView
	if v.AggregateResult != nil && !v.GeneratedAt.IsZero() {
		return json.Marshal(view(v))
	}
	return json.Marshal(struct {
		view
		UpdatedAt *time.Time `json:"updatedAt"`
	}{view: view(v)})
}

// EmptySnapshotView is returned before the first cycle has been stored.
func EmptySnapshotView() SnapshotView {
	return SnapshotView{
		AggregateResult: &AggregateResult{Groups: []ScanResult{}},
		Status:          StatusInitializing,
	}
}
