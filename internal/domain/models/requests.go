package models

import "time"

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsSearchRequest struct {
	Strategy string `query:"strategy" json:"strategy" validate:"omitempty,oneof=wavetrend breakout"`
	Type     string `query:"type" json:"type" validate:"omitempty,oneof=buy sell"`
	Group    string `query:"group" json:"group"`
	Symbol   string `query:"symbol" json:"symbol" validate:"omitempty,max=16"`
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

// ScanTrigger is the payload of a trigger message on the Kafka trigger topic.
type ScanTrigger struct {
	Secret string `json:"secret"`
	Source string `json:"source"`
}

// SignalsSearchResponse is a flattened, filtered view over the latest snapshot.
type SignalsSearchResponse struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
	Count     int       `json:"count"`
	Signals   []Signal  `json:"signals"`
}

// ScanSummary is returned by a manual trigger.
type ScanSummary struct {
	OK        bool      `json:"ok"`
	ID        string    `json:"id"`
	Count     int       `json:"count"`
	Errors    int       `json:"errors"`
	UpdatedAt time.Time `json:"updated"`
}
