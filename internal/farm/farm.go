// Package farm provides the entity services for the grazing domain: mobs,
// paddocks, movements and joining records, all built on the offline-first
// mutation adapter, plus the multi-step mob operations (split, merge, move).
package farm

import (
	"errors"

	"github.com/openpaddock/muster/internal/logging"
	"github.com/openpaddock/muster/internal/netx"
	"github.com/openpaddock/muster/internal/queue"
	"github.com/openpaddock/muster/internal/store"
	"github.com/openpaddock/muster/internal/syncer"
)

const (
	collectionMobs      = "mobs"
	collectionPaddocks  = "paddocks"
	collectionMovements = "movements"
	collectionJoinings  = "joinings"
)

var (
	// ErrInvalidSplit rejects a split whose head count is not strictly
	// between zero and the mob's current count.
	ErrInvalidSplit = errors.New("split head count must be positive and below the mob's count")

	// ErrOpenJoining rejects merging away a mob that is mid-joining.
	ErrOpenJoining = errors.New("source mob has an open joining record")

	// ErrSameMob rejects merging a mob into itself.
	ErrSameMob = errors.New("source and destination mob are the same")
)

// Service bundles the per-entity services over one shared store and queue.
type Service struct {
	Mobs      *Mobs
	Paddocks  *Paddocks
	Movements *Movements
	Joinings  *Joinings
}

func New(remote syncer.Remote, uploader BoundaryUploader, s *store.Store, q *queue.Queue, log logging.Logger) *Service {
	offline := netx.IsConnectivityError
	coord := &syncer.Coordinator{Offline: offline, Log: log}

	adapter := func(entity string, less func(a, b store.Record) bool) *syncer.Adapter {
		return &syncer.Adapter{
			Entity:  entity,
			Remote:  remote,
			Store:   s,
			Queue:   q,
			Offline: offline,
			Less:    less,
			Log:     log,
		}
	}

	byName := func(a, b store.Record) bool { return a.StringField("name") < b.StringField("name") }

	joinings := &Joinings{adapter: adapter(collectionJoinings, func(a, b store.Record) bool {
		return a.StringField("startDate") < b.StringField("startDate")
	})}

	mobs := &Mobs{
		adapter:  adapter(collectionMobs, byName),
		joinings: joinings,
		remote:   remote,
		store:    s,
		queue:    q,
		coord:    coord,
	}

	movements := &Movements{
		adapter: adapter(collectionMovements, func(a, b store.Record) bool {
			return a.StringField("movedAt") > b.StringField("movedAt")
		}),
		mobs:   mobs,
		remote: remote,
		store:  s,
		queue:  q,
		coord:  coord,
	}

	return &Service{
		Mobs:      mobs,
		Paddocks:  &Paddocks{adapter: adapter(collectionPaddocks, byName), uploader: uploader},
		Movements: movements,
		Joinings:  joinings,
	}
}
