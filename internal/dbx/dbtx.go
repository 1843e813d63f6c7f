// Package dbx holds the shared database plumbing for the sync core's
// sqlite repositories: the DBTX seam that lets the record store, the
// pending-action queue and the metadata repository run their statements
// either directly or inside a batch transaction.
package dbx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openpaddock/muster/internal/common"
)

// DBTX is the subset of database/sql the repositories use. Both *sql.DB
// and *sql.Tx satisfy it, so repository methods stay oblivious to whether
// they run inside a batch.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit on success, rollback on
// error or panic (panics are rethrown). Its one caller is the batch-upsert
// atomicity guarantee of the record store, so transaction-level failures
// count as storage errors.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", common.ErrStorage, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w: %w", common.ErrStorage, cerr)
		}
	}()

	return fn(ctx, tx)
}
