package queue

import (
	"context"
	"fmt"

	"github.com/openpaddock/muster/internal/common"
)

// ApplyFunc attempts to apply one queued action remotely. A nil return means
// the remote effect is confirmed.
type ApplyFunc func(ctx context.Context, action PendingAction) error

// DrainResult reports one drain pass.
type DrainResult struct {
	Applied int
	Failed  int
}

// Drain performs one pass over the queue: it snapshots the ordered list
// once, then attempts each action in order. A failing action is left queued
// (with its retry count bumped) and never blocks later ones; a
// permanently-failing head entry must not starve the rest of the queue.
// Apply errors are counted, never returned.
//
// Overlapping passes are rejected with common.ErrDrainBusy so two drains
// cannot both apply the same action before either removes it.
func (q *Queue) Drain(ctx context.Context, apply ApplyFunc) (DrainResult, error) {
	var res DrainResult

	if !q.drainMu.TryLock() {
		return res, common.ErrDrainBusy
	}
	defer q.drainMu.Unlock()

	actions, err := q.List(ctx)
	if err != nil {
		return res, err
	}

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := safeApply(ctx, apply, a); err != nil {
			res.Failed++
			// retry bookkeeping only; no cap, no backoff. Evicting an
			// intent would be silent data loss.
			_, uerr := q.db.ExecContext(ctx,
				`UPDATE pending_actions SET retry_count = retry_count + 1 WHERE id = ?`, a.ID)
			if uerr != nil {
				return res, fmt.Errorf("bump retry count for %s: %w: %w", a.ID, common.ErrStorage, uerr)
			}
			continue
		}

		if err := q.Remove(ctx, a.ID); err != nil {
			return res, err
		}
		res.Applied++
	}

	return res, nil
}

// safeApply converts a panicking apply into a plain failure; a single bad
// handler must not abort the pass.
func safeApply(ctx context.Context, apply ApplyFunc, a PendingAction) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("apply panicked: %v", p)
		}
	}()
	return apply(ctx, a)
}
