// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookworm/internal/platform/database/schema"
	"github.com/taibuivan/bookworm/internal/platform/dberr"
)

// # PostgreSQL Store

// PostgresStore implements [Store] with one JSONB row per document in
// store.document, keyed by (collection, id).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed document store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var (
	docTable = schema.StoreDocument

	selectDocumentSQL = fmt.Sprintf(
		`SELECT %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2`,
		docTable.Data, docTable.CreatedAt, docTable.UpdatedAt, docTable.Table, docTable.Collection, docTable.ID,
	)

	upsertDocumentSQL = fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = NOW()`,
		docTable.Table, docTable.Collection, docTable.ID, docTable.Data,
		docTable.Collection, docTable.ID,
		docTable.Data, docTable.Data, docTable.UpdatedAt,
	)

	updateDocumentSQL = fmt.Sprintf(
		`UPDATE %s SET %s = $3, %s = NOW() WHERE %s = $1 AND %s = $2`,
		docTable.Table, docTable.Data, docTable.UpdatedAt, docTable.Collection, docTable.ID,
	)
)

/*
Get retrieves a single document.

Description: The JSONB body is scanned as raw bytes and decoded through the
timestamp-aware codec. A SQL NULL body yields an existing snapshot with nil data.

Parameters:
  - context: context.Context
  - collection: string
  - id: string

Returns:
  - Snapshot: The document, or Exists=false
  - error: Query or decoding errors
*/
func (store *PostgresStore) Get(context context.Context, collection, id string) (Snapshot, error) {
	var raw []byte
	var createdAt, updatedAt time.Time

	err := store.pool.QueryRow(context, selectDocumentSQL, collection, id).Scan(&raw, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("postgres: get document %s/%s: %w", collection, id, err)
	}

	data, err := decodeBody(raw)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Exists: true, Data: withTimestamps(data, createdAt, updatedAt)}, nil
}

// Put implements [Store] with an upsert; createdat is preserved on conflict.
func (store *PostgresStore) Put(context context.Context, collection, id string, data Record) error {
	payload, err := MarshalRecord(stripReserved(data))
	if err != nil {
		return err
	}

	if _, err := store.pool.Exec(context, upsertDocumentSQL, collection, id, payload); err != nil {
		return fmt.Errorf("postgres: put document %s/%s: %w", collection, id, err)
	}
	return nil
}

/*
Update performs a locked read-modify-write.

Description: The row is locked with SELECT ... FOR UPDATE inside a transaction so
concurrent updates of the same document serialize instead of losing writes.

Returns:
  - error: [dberr.ErrNoDocument] if absent, the mutation error, or database errors
*/
func (store *PostgresStore) Update(context context.Context, collection, id string, mutate MutateFunc) error {
	return pgx.BeginFunc(context, store.pool, func(tx pgx.Tx) error {
		var raw []byte
		var createdAt, updatedAt time.Time

		err := tx.QueryRow(context, selectDocumentSQL+" FOR UPDATE", collection, id).Scan(&raw, &createdAt, &updatedAt)
		if err != nil {
			return dberr.Wrap(err, fmt.Sprintf("postgres: lock document %s/%s", collection, id))
		}

		current, err := decodeBody(raw)
		if err != nil {
			return err
		}

		next, err := mutate(withTimestamps(current, createdAt, updatedAt))
		if err != nil {
			return err
		}

		payload, err := MarshalRecord(stripReserved(next))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(context, updateDocumentSQL, collection, id, payload); err != nil {
			return fmt.Errorf("postgres: update document %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// Ping implements [Store].
func (store *PostgresStore) Ping(context context.Context) error {
	return store.pool.Ping(context)
}

func decodeBody(raw []byte) (Record, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return UnmarshalRecord(raw)
}
