package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
}

// KVRepo is a small persistent key-value table. It plays the role browser
// local storage plays for a web front end.
type KVRepo interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// RequestEventData captures one API request for the local request log.
type RequestEventData struct {
	RequestID    string
	Method       string
	Path         string
	Purpose      string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// AttemptEventData captures one scored quiz submission.
type AttemptEventData struct {
	AttemptID string
	Mode      string // "lesson" or "random"
	LessonID  int
	Title     string
	Answered  int
	Total     int
	Correct   int
	Score     float64
}

// AttemptEvent is a stored AttemptEventData with its position in the log.
type AttemptEvent struct {
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// RequestStats aggregates the request log.
type RequestStats struct {
	Total  int
	Failed int
}

// EventRepo provides append and query access to local events.
type EventRepo interface {
	// AppendRequestEvent records an API call.
	AppendRequestEvent(ctx context.Context, data RequestEventData) error

	// AppendAttemptEvent records a scored quiz submission.
	AppendAttemptEvent(ctx context.Context, data AttemptEventData) error

	// RecentAttempts returns attempts newest first.
	RecentAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error)

	// RequestStats summarizes the request log since opts.From.
	RequestStats(ctx context.Context, opts QueryOpts) (RequestStats, error)
}
