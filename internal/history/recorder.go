// Package history emits completed-search records to an external store.
// Recording is fire-and-forget: a failure is logged and never affects
// the search response.
package history

import (
	"context"
	"time"
)

// Record describes one completed federated search.
type Record struct {
	RequestID    string        `json:"request_id"`
	Query        string        `json:"query"`
	Discipline   string        `json:"discipline,omitempty"`
	YearStart    int           `json:"year_start,omitempty"`
	YearEnd      int           `json:"year_end,omitempty"`
	Sources      []string      `json:"sources"`
	TotalResults int           `json:"total_results"`
	Duration     time.Duration `json:"duration_ms"`
	CompletedAt  time.Time     `json:"completed_at"`
}

// Recorder receives completed-search records. Implementations must not
// block the caller beyond a trivial enqueue and must swallow their own
// failures.
type Recorder interface {
	// Record enqueues one search record.
	Record(ctx context.Context, rec Record)

	// Close flushes and releases recorder resources.
	Close() error
}

// NopRecorder discards every record. Used when history logging is
// disabled.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) Record(context.Context, Record) {}
func (NopRecorder) Close() error                   { return nil }
