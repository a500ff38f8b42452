package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventRebuild    EventType = "rebuild"
)

// SearchEvent records one executed query. QueryKind is the parsed query
// shape (free, conjunctive, conjunctive_negated).
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	QueryKind string    `json:"query_kind"`
	Terms     []string  `json:"terms"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// RebuildEvent records one completed index rebuild.
type RebuildEvent struct {
	Type       EventType `json:"type"`
	Documents  int       `json:"documents"`
	Terms      int       `json:"terms"`
	Postings   int       `json:"postings"`
	DurationMs int64     `json:"duration_ms"`
	Snapshot   string    `json:"snapshot"`
	Timestamp  time.Time `json:"timestamp"`
}
