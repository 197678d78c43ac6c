package storage

import (
	"context"
	"time"
)

type Interface interface {
	SaveQuery(ctx context.Context, record QueryRecord) error
	RecentQueries(ctx context.Context, limit int) ([]QueryRecord, error)
}

// QueryRecord is the outcome of one answered (or refused) question. It holds
// no conversation state.
type QueryRecord struct {
	ID         string    `json:"id" db:"id"`
	Question   string    `json:"question" db:"question"`
	Success    bool      `json:"success" db:"success"`
	Filtered   bool      `json:"filtered" db:"filtered"`
	Stage      string    `json:"stage,omitempty" db:"stage"`
	MatchCount int       `json:"match_count" db:"match_count"`
	TopScore   float64   `json:"top_score" db:"top_score"`
	Preset     string    `json:"preset" db:"preset"`
	LatencyMs  int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
