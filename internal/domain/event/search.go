// Package event defines analytics records emitted by the search path.
package event

import "time"

// Outcome classifies how a search request ended.
type Outcome string

// Search outcomes.
const (
	OutcomeHit         Outcome = "cache_hit"
	OutcomeMiss        Outcome = "cache_miss"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeNoDocuments Outcome = "no_documents"
	OutcomeError       Outcome = "error"
)

// Search is published once per handled search request.
type Search struct {
	UserID      string    `json:"user_id"`
	Query       string    `json:"query"`
	TopK        int       `json:"top_k"`
	Threshold   float64   `json:"threshold"`
	Outcome     Outcome   `json:"outcome"`
	ResultCount int       `json:"result_count"`
	LatencyMs   int64     `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
}
