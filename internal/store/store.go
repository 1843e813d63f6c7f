package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openpaddock/muster/internal/common"
	"github.com/openpaddock/muster/internal/dbx"
)

// Store is the durable named-collection record store. All operations are
// atomic per call; no transaction spans multiple collections. Persistence
// failures wrap common.ErrStorage and are never retried here.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func storageErr(op, collection string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, collection, common.ErrStorage, err)
}

// Upsert writes records into collection by id (last writer wins). The whole
// batch lands in one transaction: either all records persist or none do.
func (s *Store) Upsert(ctx context.Context, collection string, records ...Record) error {
	if len(records) == 0 {
		return nil
	}

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, r := range records {
			if r.ID() == "" {
				return errors.New("record has no id")
			}
			body, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("failed to encode record %s: %w", r.ID(), err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO records (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
				ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
			`, collection, r.ID(), string(body), Timestamp(time.Now()))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("upsert", collection, err)
	}
	return nil
}

// Delete removes the record with the given id. Deleting an absent id is not
// an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return storageErr("delete", collection, err)
	}
	return nil
}

// Get returns a single record, or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, common.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("get", collection, err)
	}
	return decodeRecord(body)
}

// List returns every record in collection. Order is unspecified; callers
// sort the way their remote listing would.
func (s *Store) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM records WHERE collection = ?`, collection)
	if err != nil {
		return nil, storageErr("list", collection, err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, storageErr("list", collection, err)
		}
		r, err := decodeRecord(body)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", collection, err)
	}
	return result, nil
}

func decodeRecord(body string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("failed to decode stored record: %w", err)
	}
	return r, nil
}
