// Package migrations embeds the goose migrations for the local database.
//
// The records table is collection-agnostic, so introducing a new entity
// collection needs no schema change; migrations exist for genuine shape
// changes, and goose guarantees a version bump never destroys existing
// collections.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
