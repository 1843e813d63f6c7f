package farm

import (
	"context"

	"github.com/openpaddock/muster/internal/store"
	"github.com/openpaddock/muster/internal/syncer"
)

// BoundaryUploader imports a paddock boundary file on the server. Boundary
// import is online-only: a KML blob is not queueable as a diff payload.
type BoundaryUploader interface {
	ImportPaddockBoundary(ctx context.Context, paddockID string, kml []byte) error
}

// Paddocks manages paddock records. Paddock CRUD has no multi-step
// operations; it is the plain adapter contract.
type Paddocks struct {
	adapter  *syncer.Adapter
	uploader BoundaryUploader
}

func (p *Paddocks) List(ctx context.Context) ([]store.Record, error) {
	return p.adapter.List(ctx)
}

func (p *Paddocks) Get(ctx context.Context, id string) (store.Record, error) {
	return p.adapter.Get(ctx, id)
}

func (p *Paddocks) Add(ctx context.Context, name string, areaHa float64, cropType string) (store.Record, error) {
	return p.adapter.Create(ctx, map[string]any{
		"name":     name,
		"areaHa":   areaHa,
		"cropType": cropType,
	})
}

func (p *Paddocks) Update(ctx context.Context, id string, fields map[string]any) (store.Record, error) {
	return p.adapter.Update(ctx, id, fields)
}

func (p *Paddocks) Remove(ctx context.Context, id string) error {
	return p.adapter.Delete(ctx, id)
}

// ImportBoundary uploads a KML boundary for the paddock.
func (p *Paddocks) ImportBoundary(ctx context.Context, id string, kml []byte) error {
	return p.uploader.ImportPaddockBoundary(ctx, id, kml)
}
