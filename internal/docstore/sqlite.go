package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meterbook/meterbook/internal/common"
	"github.com/meterbook/meterbook/internal/dbx"
)

// SQLiteStore implements Store over a documents table. Get, Put and Delete
// run against whatever handle the store was built on, so a transaction-scoped
// view is just another SQLiteStore over the transaction.
type SQLiteStore struct {
	db dbx.DBTX

	// txdb is set only on the root store and enables Update.
	txdb *sql.DB
}

// NewSQLiteStore returns a store over db. The returned store supports
// grouping several document operations into one transaction via Update.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, txdb: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT body FROM documents WHERE key = ?`
	row := s.db.QueryRowContext(ctx, query, key)

	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: read document %q: %w", common.ErrStorageUnavailable, key, err)
	}
	return body, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, body []byte) error {
	query := `INSERT INTO documents (key, body) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body`
	if _, err := s.db.ExecContext(ctx, query, key, body); err != nil {
		return fmt.Errorf("%w: write document %q: %w", common.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM documents WHERE key = ?`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%w: delete document %q: %w", common.ErrStorageUnavailable, key, err)
	}
	return nil
}

// Update runs fn against a transaction-scoped view of the store: either
// everything fn wrote is persisted or none of it is. Calling Update on a
// view that is already inside a transaction runs fn directly.
func (s *SQLiteStore) Update(ctx context.Context, fn func(tx Store) error) error {
	if s.txdb == nil {
		return fn(s)
	}
	return dbx.WithTx(ctx, s.txdb, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(&SQLiteStore{db: tx})
	})
}
