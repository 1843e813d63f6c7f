package farm

import (
	"context"
	"time"

	"github.com/openpaddock/muster/internal/netx"
	"github.com/openpaddock/muster/internal/store"
	"github.com/openpaddock/muster/internal/syncer"
)

// Joinings manages joining records. A record with an empty endDate is
// open: the mob is mid-joining and must not be merged away.
type Joinings struct {
	adapter *syncer.Adapter
}

func (j *Joinings) List(ctx context.Context) ([]store.Record, error) {
	return j.adapter.List(ctx)
}

// Begin opens a joining record for the mob starting now.
func (j *Joinings) Begin(ctx context.Context, mobID, sireID string) (store.Record, error) {
	return j.adapter.Create(ctx, map[string]any{
		"mobId":     mobID,
		"sireId":    sireID,
		"startDate": store.Timestamp(time.Now()),
		"endDate":   "",
	})
}

// End closes a joining record.
func (j *Joinings) End(ctx context.Context, id string) (store.Record, error) {
	return j.adapter.Update(ctx, id, map[string]any{
		"endDate": store.Timestamp(time.Now()),
	})
}

// HasOpen reports whether the mob has any open joining record. The listing
// is remote-first, so the check runs against whichever source is
// authoritative for the current connectivity.
func (j *Joinings) HasOpen(ctx context.Context, mobID string) (bool, error) {
	records, err := j.adapter.List(ctx)
	if err != nil {
		// offline with an empty local cache: no joining record is known,
		// so none can be open
		if netx.IsConnectivityError(err) {
			return false, nil
		}
		return false, err
	}
	for _, r := range records {
		if r.StringField("mobId") == mobID && r.StringField("endDate") == "" {
			return true, nil
		}
	}
	return false, nil
}
