// Package syncer contains the offline-first synchronization engine: the
// generic optimistic-mutation adapter every write path goes through, the
// multi-step coordinator, and queue replay.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openpaddock/muster/internal/common"
	"github.com/openpaddock/muster/internal/logging"
	"github.com/openpaddock/muster/internal/netx"
	"github.com/openpaddock/muster/internal/queue"
	"github.com/openpaddock/muster/internal/store"
)

// Remote is the slice of the API client the adapter needs.
type Remote interface {
	List(ctx context.Context, entity string) ([]store.Record, error)
	Create(ctx context.Context, entity string, payload map[string]any) (store.Record, error)
	Update(ctx context.Context, entity, id string, payload map[string]any) (store.Record, error)
	Delete(ctx context.Context, entity, id string) error
}

// Synthesizer computes the record an entity's write intent would produce,
// merging the intent with the last known local state and filling the fields
// a genuine server response would carry. existing is nil for creates.
type Synthesizer func(existing store.Record, input map[string]any, now time.Time) store.Record

// Adapter is the optimistic-mutation engine for one entity collection:
// remote-first, with a connectivity-absent fallback that synthesizes the
// post-state locally and queues the intent for replay. Domain errors from
// the server always propagate untouched.
type Adapter struct {
	Entity     string
	Remote     Remote
	Store      *store.Store
	Queue      *queue.Queue
	Offline    netx.Classifier
	Synthesize Synthesizer
	// Less orders local fallback lists the way the remote listing would.
	Less func(a, b store.Record) bool
	Log  logging.Logger
}

func (a *Adapter) offline(err error) bool {
	if a.Offline != nil {
		return a.Offline(err)
	}
	return netx.IsConnectivityError(err)
}

func (a *Adapter) synthesize(existing store.Record, input map[string]any, now time.Time) store.Record {
	if a.Synthesize != nil {
		return a.Synthesize(existing, input, now)
	}
	return DefaultSynthesis(existing, input, now)
}

// DefaultSynthesis merges input over the existing record (or a fresh one),
// stamping timestamps. The result must be indistinguishable, to the UI
// layer, from a genuine server response.
func DefaultSynthesis(existing store.Record, input map[string]any, now time.Time) store.Record {
	var rec store.Record
	if existing != nil {
		rec = existing.Clone()
	} else {
		rec = store.Record{"createdAt": store.Timestamp(now)}
	}
	for k, v := range input {
		rec[k] = v
	}
	rec["updatedAt"] = store.Timestamp(now)
	return rec
}

// Create attempts the remote create; on a connectivity-absent failure it
// assigns a local UUID, synthesizes the record, caches it and queues a
// CREATE action carrying only the fields the caller supplied (plus the id),
// so replay cannot clobber server-side defaults.
func (a *Adapter) Create(ctx context.Context, input map[string]any) (store.Record, error) {
	rec, err := a.Remote.Create(ctx, a.Entity, input)
	if err == nil {
		if serr := a.Store.Upsert(ctx, a.Entity, rec); serr != nil {
			return nil, serr
		}
		return rec, nil
	}
	if !a.offline(err) {
		return nil, err
	}

	now := time.Now()
	id := uuid.NewString()

	data := cloneInput(input)
	data["id"] = id

	rec = a.synthesize(nil, data, now)
	rec["id"] = id

	if serr := a.Store.Upsert(ctx, a.Entity, rec); serr != nil {
		return nil, serr
	}
	if _, qerr := a.Queue.Enqueue(ctx, a.Entity, queue.OpCreate, data); qerr != nil {
		return nil, qerr
	}
	a.logQueued(ctx, queue.OpCreate, id)
	return rec, nil
}

// Update attempts the remote update; offline, it merges the intent over the
// last known local state and queues an UPDATE diff.
func (a *Adapter) Update(ctx context.Context, id string, input map[string]any) (store.Record, error) {
	rec, err := a.Remote.Update(ctx, a.Entity, id, input)
	if err == nil {
		if serr := a.Store.Upsert(ctx, a.Entity, rec); serr != nil {
			return nil, serr
		}
		return rec, nil
	}
	if !a.offline(err) {
		return nil, err
	}

	existing, gerr := a.Store.Get(ctx, a.Entity, id)
	if gerr != nil && !errors.Is(gerr, common.ErrNotFound) {
		return nil, gerr
	}

	now := time.Now()
	rec = a.synthesize(existing, input, now)
	rec["id"] = id

	data := cloneInput(input)
	data["id"] = id

	if serr := a.Store.Upsert(ctx, a.Entity, rec); serr != nil {
		return nil, serr
	}
	if _, qerr := a.Queue.Enqueue(ctx, a.Entity, queue.OpUpdate, data); qerr != nil {
		return nil, qerr
	}
	a.logQueued(ctx, queue.OpUpdate, id)
	return rec, nil
}

// Delete attempts the remote delete; offline, it removes the cached record
// and queues a DELETE.
func (a *Adapter) Delete(ctx context.Context, id string) error {
	err := a.Remote.Delete(ctx, a.Entity, id)
	if err == nil {
		return a.Store.Delete(ctx, a.Entity, id)
	}
	if !a.offline(err) {
		return err
	}

	if serr := a.Store.Delete(ctx, a.Entity, id); serr != nil {
		return serr
	}
	if _, qerr := a.Queue.Enqueue(ctx, a.Entity, queue.OpDelete, map[string]any{"id": id}); qerr != nil {
		return qerr
	}
	a.logQueued(ctx, queue.OpDelete, id)
	return nil
}

// List is the read-through mirror: remote list cached on success; on a
// connectivity-absent failure the last cached list is served, ordered the
// way the remote would have ordered it. The error propagates only when the
// cache is empty.
func (a *Adapter) List(ctx context.Context) ([]store.Record, error) {
	records, err := a.Remote.List(ctx, a.Entity)
	if err == nil {
		if serr := a.Store.Upsert(ctx, a.Entity, records...); serr != nil {
			return nil, serr
		}
		return records, nil
	}
	if !a.offline(err) {
		return nil, err
	}

	cached, serr := a.Store.List(ctx, a.Entity)
	if serr != nil {
		return nil, serr
	}
	if len(cached) == 0 {
		return nil, err
	}
	if a.Less != nil {
		sort.Slice(cached, func(i, j int) bool { return a.Less(cached[i], cached[j]) })
	}
	return cached, nil
}

// Get reads one record, remote-first with cache fallback.
func (a *Adapter) Get(ctx context.Context, id string) (store.Record, error) {
	records, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", a.Entity, id, common.ErrNotFound)
}

func (a *Adapter) logQueued(ctx context.Context, op queue.Op, id string) {
	if a.Log != nil {
		a.Log.Info(ctx, "queued offline mutation", "entity", a.Entity, "op", string(op), "id", id)
	}
}

func cloneInput(input map[string]any) map[string]any {
	out := make(map[string]any, len(input)+1)
	for k, v := range input {
		out[k] = v
	}
	return out
}
