package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// sequenceCounter hands out the global monotonic sequence shared by the
// request and attempt logs, so entries from both tables can be interleaved
// in the order they happened.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo with raw SQL.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendRequestEvent(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO request_events
			(sequence, ts, request_id, method, path, purpose, status, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.RequestID, data.Method, data.Path, data.Purpose,
		data.Status, data.LatencyMs, boolToInt(data.Success), data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAttemptEvent(ctx context.Context, data AttemptEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO attempt_events
			(sequence, ts, attempt_id, mode, lesson_id, title, answered, total, correct, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.AttemptID, data.Mode, data.LessonID, data.Title,
		data.Answered, data.Total, data.Correct, data.Score,
	)
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error) {
	query := `SELECT sequence, ts, attempt_id, mode, lesson_id, title, answered, total, correct, score
		FROM attempt_events WHERE ts >= ? ORDER BY sequence DESC`
	args := []any{fromMillis(opts.From)}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptEvent
	for rows.Next() {
		var (
			e  AttemptEvent
			ts int64
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.AttemptID, &e.Mode, &e.LessonID, &e.Title,
			&e.Answered, &e.Total, &e.Correct, &e.Score); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func (r *eventRepo) RequestStats(ctx context.Context, opts QueryOpts) (RequestStats, error) {
	var stats RequestStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0)
		 FROM request_events WHERE ts >= ?`,
		fromMillis(opts.From),
	).Scan(&stats.Total, &stats.Failed)
	if err != nil {
		return RequestStats{}, fmt.Errorf("query request stats: %w", err)
	}
	return stats, nil
}

func fromMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
