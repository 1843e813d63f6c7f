package farm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openpaddock/muster/internal/queue"
	"github.com/openpaddock/muster/internal/store"
	"github.com/openpaddock/muster/internal/syncer"
)

// Mobs manages mob records: plain CRUD through the mutation adapter plus
// the two multi-step operations, split and merge.
type Mobs struct {
	adapter  *syncer.Adapter
	joinings *Joinings
	remote   syncer.Remote
	store    *store.Store
	queue    *queue.Queue
	coord    *syncer.Coordinator
}

func (m *Mobs) List(ctx context.Context) ([]store.Record, error) {
	return m.adapter.List(ctx)
}

func (m *Mobs) Get(ctx context.Context, id string) (store.Record, error) {
	return m.adapter.Get(ctx, id)
}

func (m *Mobs) Add(ctx context.Context, name string, count int, avgWeight float64, paddockID string) (store.Record, error) {
	input := map[string]any{
		"name":      name,
		"count":     count,
		"avgWeight": avgWeight,
	}
	if paddockID != "" {
		input["paddockId"] = paddockID
	}
	return m.adapter.Create(ctx, input)
}

func (m *Mobs) Update(ctx context.Context, id string, fields map[string]any) (store.Record, error) {
	return m.adapter.Update(ctx, id, fields)
}

func (m *Mobs) Remove(ctx context.Context, id string) error {
	return m.adapter.Delete(ctx, id)
}

// Split draws count head out of the mob into a newly created mob named
// name. Head count is conserved: the two resulting counts always sum to
// the original. A count outside (0, mob.count) is rejected before any
// mutation, remote or local.
func (m *Mobs) Split(ctx context.Context, mobID, name string, count int) (store.Record, error) {
	mob, err := m.adapter.Get(ctx, mobID)
	if err != nil {
		return nil, err
	}

	total := int(mob.NumberField("count"))
	if count <= 0 || count >= total {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidSplit, count, total)
	}
	remaining := total - count

	createInput := map[string]any{
		"name":      name,
		"count":     count,
		"avgWeight": mob.NumberField("avgWeight"),
	}
	if pid := mob.StringField("paddockId"); pid != "" {
		createInput["paddockId"] = pid
	}

	var created, updated store.Record

	err = m.coord.Run(ctx, []syncer.Step{
		{
			Name: "create split mob",
			Run: func(ctx context.Context) error {
				created, err = m.remote.Create(ctx, collectionMobs, createInput)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return m.remote.Delete(ctx, collectionMobs, created.ID())
			},
		},
		{
			Name: "shrink original mob",
			Run: func(ctx context.Context) error {
				updated, err = m.remote.Update(ctx, collectionMobs, mobID, map[string]any{"count": remaining})
				return err
			},
		},
	}, func(ctx context.Context) error {
		created, updated, err = m.splitOffline(ctx, mob, createInput, remaining)
		return err
	})
	if err != nil {
		return nil, err
	}

	if serr := m.store.Upsert(ctx, collectionMobs, created, updated); serr != nil {
		return nil, serr
	}
	return created, nil
}

func (m *Mobs) splitOffline(ctx context.Context, mob store.Record, createInput map[string]any, remaining int) (created, updated store.Record, err error) {
	now := time.Now()

	createData := make(map[string]any, len(createInput)+1)
	for k, v := range createInput {
		createData[k] = v
	}
	createData["id"] = uuid.NewString()

	created = syncer.DefaultSynthesis(nil, createData, now)
	updated = syncer.DefaultSynthesis(mob, map[string]any{"count": remaining}, now)

	if _, err = m.queue.Enqueue(ctx, collectionMobs, queue.OpCreate, createData); err != nil {
		return nil, nil, err
	}
	updateData := map[string]any{"id": mob.ID(), "count": remaining}
	if _, err = m.queue.Enqueue(ctx, collectionMobs, queue.OpUpdate, updateData); err != nil {
		return nil, nil, err
	}
	return created, updated, nil
}

// Merge folds the source mob into the destination: the destination gains
// the source's head count and its average weight becomes the head-count
// weighted mean of the two, then the source is deleted. A source with an
// open joining record is rejected before any mutation.
func (m *Mobs) Merge(ctx context.Context, srcID, dstID string) (store.Record, error) {
	if srcID == dstID {
		return nil, ErrSameMob
	}

	src, err := m.adapter.Get(ctx, srcID)
	if err != nil {
		return nil, err
	}
	dst, err := m.adapter.Get(ctx, dstID)
	if err != nil {
		return nil, err
	}

	open, err := m.joinings.HasOpen(ctx, srcID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("%w: mob %s", ErrOpenJoining, srcID)
	}

	srcCount := src.NumberField("count")
	dstCount := dst.NumberField("count")
	mergedCount := srcCount + dstCount

	mergedWeight := dst.NumberField("avgWeight")
	if mergedCount > 0 {
		mergedWeight = (srcCount*src.NumberField("avgWeight") + dstCount*dst.NumberField("avgWeight")) / mergedCount
	}

	update := map[string]any{"count": int(mergedCount), "avgWeight": mergedWeight}
	restore := map[string]any{"count": int(dstCount), "avgWeight": dst.NumberField("avgWeight")}

	var merged store.Record

	err = m.coord.Run(ctx, []syncer.Step{
		{
			Name: "grow destination mob",
			Run: func(ctx context.Context) error {
				merged, err = m.remote.Update(ctx, collectionMobs, dstID, update)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, rerr := m.remote.Update(ctx, collectionMobs, dstID, restore)
				return rerr
			},
		},
		{
			Name: "delete source mob",
			Run: func(ctx context.Context) error {
				return m.remote.Delete(ctx, collectionMobs, srcID)
			},
		},
	}, func(ctx context.Context) error {
		merged, err = m.mergeOffline(ctx, dst, update, srcID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if serr := m.store.Upsert(ctx, collectionMobs, merged); serr != nil {
		return nil, serr
	}
	if serr := m.store.Delete(ctx, collectionMobs, srcID); serr != nil {
		return nil, serr
	}
	return merged, nil
}

func (m *Mobs) mergeOffline(ctx context.Context, dst store.Record, update map[string]any, srcID string) (store.Record, error) {
	merged := syncer.DefaultSynthesis(dst, update, time.Now())

	updateData := make(map[string]any, len(update)+1)
	for k, v := range update {
		updateData[k] = v
	}
	updateData["id"] = dst.ID()

	if _, err := m.queue.Enqueue(ctx, collectionMobs, queue.OpUpdate, updateData); err != nil {
		return nil, err
	}
	if _, err := m.queue.Enqueue(ctx, collectionMobs, queue.OpDelete, map[string]any{"id": srcID}); err != nil {
		return nil, err
	}
	return merged, nil
}
