package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openpaddock/muster/internal/dbx"
)

// Well-known metadata keys.
const (
	MetaDeviceID     = "deviceId"
	MetaAccessToken  = "accessToken"
	MetaRefreshToken = "refreshToken"
	MetaLastSyncAt   = "lastSyncAt"
)

// Metadata is a small durable key/value repository for sync-core state:
// the device identifier, the persisted session tokens and the sync
// checkpoint.
type Metadata struct {
	db dbx.DBTX
}

func NewMetadata(db dbx.DBTX) *Metadata {
	return &Metadata{db: db}
}

// Get returns the value for key, or nil when the key is absent.
func (m *Metadata) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := m.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (m *Metadata) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (m *Metadata) Delete(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}
