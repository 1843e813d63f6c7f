package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaddock/muster/internal/common"
	"github.com/openpaddock/muster/internal/localdb"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := localdb.Open(context.Background(), filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestStore_UpsertGetListDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	r := Record{"id": "m1", "name": "North Flock", "count": 120.0}
	require.NoError(t, s.Upsert(ctx, "mobs", r))

	got, err := s.Get(ctx, "mobs", "m1")
	require.NoError(t, err)
	assert.Equal(t, "North Flock", got.StringField("name"))
	assert.Equal(t, 120.0, got.NumberField("count"))

	list, err := s.List(ctx, "mobs")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, "mobs", "m1"))
	_, err = s.Get(ctx, "mobs", "m1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_LastWriterWins(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "mobs", Record{"id": "m1", "name": "old"}))
	require.NoError(t, s.Upsert(ctx, "mobs", Record{"id": "m1", "name": "new"}))

	got, err := s.Get(ctx, "mobs", "m1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.StringField("name"))

	list, err := s.List(ctx, "mobs")
	require.NoError(t, err)
	assert.Len(t, list, 1, "id must stay unique within a collection")
}

func TestStore_BatchUpsertIsAtomic(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, "mobs",
		Record{"id": "m1", "name": "a"},
		Record{"name": "no id"},
		Record{"id": "m3", "name": "c"},
	)
	require.Error(t, err)

	list, err := s.List(ctx, "mobs")
	require.NoError(t, err)
	assert.Empty(t, list, "failed batch must not land partially")
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "mobs", Record{"id": "x", "name": "mob"}))
	require.NoError(t, s.Upsert(ctx, "paddocks", Record{"id": "x", "name": "paddock"}))

	got, err := s.Get(ctx, "paddocks", "x")
	require.NoError(t, err)
	assert.Equal(t, "paddock", got.StringField("name"))

	require.NoError(t, s.Delete(ctx, "mobs", "x"))
	_, err = s.Get(ctx, "paddocks", "x")
	assert.NoError(t, err)
}

func TestStore_DeleteAbsentIsNoError(t *testing.T) {
	s := setupStore(t)
	assert.NoError(t, s.Delete(context.Background(), "mobs", "ghost"))
}

func TestStore_PersistenceFailureWrapsStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(`SELECT body FROM records`).WillReturnError(errors.New("disk I/O error"))

	s := New(db)
	_, err = s.List(context.Background(), "mobs")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NotErrorIs(t, err, sql.ErrNoRows)
}

func TestMetadata_SetGetDelete(t *testing.T) {
	sDB, err := localdb.Open(context.Background(), filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sDB.Close() })

	m := NewMetadata(sDB)
	ctx := context.Background()

	v, err := m.Get(ctx, MetaDeviceID)
	require.NoError(t, err)
	assert.Nil(t, v, "absent key reads as nil")

	require.NoError(t, m.Set(ctx, MetaDeviceID, []byte("dev-1")))
	require.NoError(t, m.Set(ctx, MetaDeviceID, []byte("dev-2")))

	v, err = m.Get(ctx, MetaDeviceID)
	require.NoError(t, err)
	assert.Equal(t, []byte("dev-2"), v)

	require.NoError(t, m.Delete(ctx, MetaDeviceID))
	v, err = m.Get(ctx, MetaDeviceID)
	require.NoError(t, err)
	assert.Nil(t, v)
}
