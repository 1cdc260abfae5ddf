// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package docstore is the metadata store gateway for books, chapters and users.

Documents are open records (string keys, arbitrary values) grouped in collections
and addressed by prefixed identifiers. Three [Store] backends are provided:

  - PostgreSQL: one JSONB row per document (production default).
  - Redis: one JSON string per document under "doc:{collection}:{id}", an envelope
    holding the body and its timestamps, written with SET inside WATCH transactions.
  - Memory: process-local maps for development and tests.

Backends hand back store-native values: timestamps come out as [time.Time] at any
depth. The [Gateway] is the only entry point used by the domain; it asserts the
identifier kind, maps absence and corruption to application errors and normalizes
top-level timestamps to ISO-8601 strings.
*/
package docstore

import (
	"context"
	"time"
)

// # Records

// Record is the body of a stored document.
type Record map[string]any

// Reserved top-level keys populated by the backends from their own bookkeeping.
// They are stripped from records on write.
const (
	KeyCreateTime = "createTime"
	KeyUpdateTime = "updateTime"
)

// Snapshot is the raw result of a point lookup.
//
// Exists is true when a document is stored under the id. Data may still be nil
// for an existing document whose body is absent, which callers treat as corruption.
type Snapshot struct {
	Exists bool
	Data   Record
}

// MutateFunc receives the current body of a document and returns its replacement.
// Returning an error aborts the update without writing.
type MutateFunc func(current Record) (Record, error)

// # Store Contract

// Store defines the document persistence contract.
type Store interface {

	/*
		Get returns the document stored under id in collection.

		Parameters:
		  - context: context.Context
		  - collection: string
		  - id: string

		Returns:
		  - Snapshot: Exists=false when absent
		  - error: Connectivity or decoding failures only
	*/
	Get(context context.Context, collection, id string) (Snapshot, error)

	/*
		Put creates or replaces a document body.

		Parameters:
		  - context: context.Context
		  - collection: string
		  - id: string
		  - data: Record

		Returns:
		  - error: Storage failures
	*/
	Put(context context.Context, collection, id string, data Record) error

	/*
		Update runs a read-modify-write of a single document atomically with
		respect to other writers of the same document.

		Returns:
		  - error: dberr.ErrNoDocument if absent, the MutateFunc error, or storage failures
	*/
	Update(context context.Context, collection, id string, mutate MutateFunc) error

	// Ping verifies backend connectivity.
	Ping(context context.Context) error
}

// # Helpers

// withTimestamps returns data with the backend timestamps set at the top level.
func withTimestamps(data Record, created, updated time.Time) Record {
	if data == nil {
		return nil
	}
	if !created.IsZero() {
		data[KeyCreateTime] = created
	}
	if !updated.IsZero() {
		data[KeyUpdateTime] = updated
	}
	return data
}

// stripReserved returns a shallow copy of data without the reserved keys.
func stripReserved(data Record) Record {
	if data == nil {
		return nil
	}
	out := make(Record, len(data))
	for key, value := range data {
		if key == KeyCreateTime || key == KeyUpdateTime {
			continue
		}
		out[key] = value
	}
	return out
}
