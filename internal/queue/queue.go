// Package queue implements the durable pending-action queue: a time-ordered
// list of mutation intents awaiting replay against the server.
package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpaddock/muster/internal/common"
)

// Op is a mutation kind.
type Op string

const (
	OpCreate Op = "CREATE"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// enqueuedAtLayout is fixed-width so that lexicographic ordering of the
// stored text equals chronological ordering. RFC3339Nano would trim
// trailing zeros, making a whole-second timestamp ("...00Z") sort after a
// fractional one in the same second ("...00.5Z").
const enqueuedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// PendingAction is one queued mutation intent. Its on-disk shape is stable
// across app versions: queued actions survive restarts and upgrades.
type PendingAction struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Op         Op              `json:"op"`
	Data       json.RawMessage `json:"data"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	RetryCount int             `json:"retryCount"`
}

// Queue persists pending actions and replays them in enqueue order.
type Queue struct {
	db *sql.DB

	// guards against overlapping Drain passes, which could double-apply
	// an action before either pass removes it
	drainMu sync.Mutex
}

func New(db *sql.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue persists a new action with a fresh id and timestamp and returns
// the stored record.
func (q *Queue) Enqueue(ctx context.Context, entity string, op Op, data map[string]any) (*PendingAction, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action data: %w", err)
	}

	a := &PendingAction{
		ID:         uuid.NewString(),
		Entity:     entity,
		Op:         op,
		Data:       payload,
		EnqueuedAt: time.Now().UTC(),
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO pending_actions (id, entity, op, data, enqueued_at, retry_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`, a.ID, a.Entity, string(a.Op), string(a.Data), a.EnqueuedAt.Format(enqueuedAtLayout))
	if err != nil {
		return nil, fmt.Errorf("enqueue %s %s: %w: %w", op, entity, common.ErrStorage, err)
	}
	return a, nil
}

// List returns all queued actions ordered by enqueuedAt ascending
// (insertion order breaks ties).
func (q *Queue) List(ctx context.Context) ([]PendingAction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, entity, op, data, enqueued_at, retry_count
		FROM pending_actions ORDER BY enqueued_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending actions: %w: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []PendingAction
	for rows.Next() {
		var a PendingAction
		var op, data, enqueuedAt string
		if err := rows.Scan(&a.ID, &a.Entity, &op, &data, &enqueuedAt, &a.RetryCount); err != nil {
			return nil, fmt.Errorf("scan pending action: %w: %w", common.ErrStorage, err)
		}
		a.Op = Op(op)
		a.Data = json.RawMessage(data)
		// RFC3339Nano parsing accepts both the fixed-width layout and
		// rows written before it was adopted.
		ts, err := time.Parse(time.RFC3339Nano, enqueuedAt)
		if err != nil {
			return nil, fmt.Errorf("stored action %s has bad timestamp: %w", a.ID, err)
		}
		a.EnqueuedAt = ts
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending actions: %w: %w", common.ErrStorage, err)
	}
	return result, nil
}

// Remove deletes an action. Called only once the action's remote effect is
// confirmed applied.
func (q *Queue) Remove(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove pending action %s: %w: %w", id, common.ErrStorage, err)
	}
	return nil
}

// Len returns the number of queued actions.
func (q *Queue) Len(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_actions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending actions: %w: %w", common.ErrStorage, err)
	}
	return n, nil
}
