package farm

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openpaddock/muster/internal/queue"
	"github.com/openpaddock/muster/internal/store"
	"github.com/openpaddock/muster/internal/syncer"
)

// Movements records mob relocations between paddocks.
type Movements struct {
	adapter *syncer.Adapter
	mobs    *Mobs
	remote  syncer.Remote
	store   *store.Store
	queue   *queue.Queue
	coord   *syncer.Coordinator
}

func (mv *Movements) List(ctx context.Context) ([]store.Record, error) {
	return mv.adapter.List(ctx)
}

// Move relocates the mob: it records a movement, then points the mob at
// the new paddock. If the mob update is rejected by the server, the
// movement record is deleted again so the history stays consistent with
// the mob's actual location.
func (mv *Movements) Move(ctx context.Context, mobID, toPaddockID string) (store.Record, error) {
	mob, err := mv.mobs.Get(ctx, mobID)
	if err != nil {
		return nil, err
	}

	moveInput := map[string]any{
		"mobId":       mobID,
		"toPaddockId": toPaddockID,
		"movedAt":     store.Timestamp(time.Now()),
	}
	if from := mob.StringField("paddockId"); from != "" {
		moveInput["fromPaddockId"] = from
	}

	var movement, updatedMob store.Record

	err = mv.coord.Run(ctx, []syncer.Step{
		{
			Name: "record movement",
			Run: func(ctx context.Context) error {
				movement, err = mv.remote.Create(ctx, collectionMovements, moveInput)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return mv.remote.Delete(ctx, collectionMovements, movement.ID())
			},
		},
		{
			Name: "repaddock mob",
			Run: func(ctx context.Context) error {
				updatedMob, err = mv.remote.Update(ctx, collectionMobs, mobID, map[string]any{"paddockId": toPaddockID})
				return err
			},
		},
	}, func(ctx context.Context) error {
		movement, updatedMob, err = mv.moveOffline(ctx, mob, moveInput, toPaddockID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if serr := mv.store.Upsert(ctx, collectionMovements, movement); serr != nil {
		return nil, serr
	}
	if serr := mv.store.Upsert(ctx, collectionMobs, updatedMob); serr != nil {
		return nil, serr
	}
	return movement, nil
}

func (mv *Movements) moveOffline(ctx context.Context, mob store.Record, moveInput map[string]any, toPaddockID string) (movement, updatedMob store.Record, err error) {
	now := time.Now()

	moveData := make(map[string]any, len(moveInput)+1)
	for k, v := range moveInput {
		moveData[k] = v
	}
	moveData["id"] = uuid.NewString()

	movement = syncer.DefaultSynthesis(nil, moveData, now)
	updatedMob = syncer.DefaultSynthesis(mob, map[string]any{"paddockId": toPaddockID}, now)

	if _, err = mv.queue.Enqueue(ctx, collectionMovements, queue.OpCreate, moveData); err != nil {
		return nil, nil, err
	}
	mobData := map[string]any{"id": mob.ID(), "paddockId": toPaddockID}
	if _, err = mv.queue.Enqueue(ctx, collectionMobs, queue.OpUpdate, mobData); err != nil {
		return nil, nil, err
	}
	return movement, updatedMob, nil
}
