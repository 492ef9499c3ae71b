package models

import "time"

// PatternStats accumulates quality observations for a URL path pattern.
// Keyed by domain plus pattern so the same path on different sites learns
// independently.
type PatternStats struct {
	Key          string    `json:"key"`
	Domain       string    `json:"domain"`
	Pattern      string    `json:"pattern"`
	TotalScore   float64   `json:"total_score"`
	SampleCount  int       `json:"sample_count"`
	AverageScore float64   `json:"average_score"`
	FailureCount int       `json:"failure_count"`
	FirstSeen    time.Time `json:"first_seen"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LedgerEntry records the last observed content hash for a URL
type LedgerEntry struct {
	URL       string    `json:"url"`
	Hash      string    `json:"hash"`
	UpdatedAt time.Time `json:"updated_at"`
}
