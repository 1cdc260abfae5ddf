// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/bookworm/internal/platform/dberr"
)

type memoryEntry struct {
	data      Record
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore is a process-local [Store] used in development and tests.
//
// Records are deep-copied on the way in and out so callers never alias stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryEntry
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*memoryEntry),
		now:         time.Now,
	}
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, collection, id string) (Snapshot, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	entry, ok := store.collections[collection][id]
	if !ok {
		return Snapshot{}, nil
	}

	return Snapshot{
		Exists: true,
		Data:   withTimestamps(cloneRecord(entry.data), entry.createdAt, entry.updatedAt),
	}, nil
}

// Put implements [Store].
func (store *MemoryStore) Put(_ context.Context, collection, id string, data Record) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now().UTC()
	documents, ok := store.collections[collection]
	if !ok {
		documents = make(map[string]*memoryEntry)
		store.collections[collection] = documents
	}

	if entry, exists := documents[id]; exists {
		entry.data = cloneRecord(stripReserved(data))
		entry.updatedAt = now
		return nil
	}

	documents[id] = &memoryEntry{data: cloneRecord(stripReserved(data)), createdAt: now, updatedAt: now}
	return nil
}

// Update implements [Store]. The mutation runs under the write lock.
func (store *MemoryStore) Update(_ context.Context, collection, id string, mutate MutateFunc) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.collections[collection][id]
	if !ok {
		return dberr.ErrNoDocument
	}

	current := withTimestamps(cloneRecord(entry.data), entry.createdAt, entry.updatedAt)
	next, err := mutate(current)
	if err != nil {
		return err
	}

	entry.data = cloneRecord(stripReserved(next))
	entry.updatedAt = store.now().UTC()
	return nil
}

// PutRaw stores data verbatim, including a nil body. Tests use it to seed
// corrupt documents.
func (store *MemoryStore) PutRaw(collection, id string, data Record) {
	store.mu.Lock()
	defer store.mu.Unlock()

	documents, ok := store.collections[collection]
	if !ok {
		documents = make(map[string]*memoryEntry)
		store.collections[collection] = documents
	}
	documents[id] = &memoryEntry{data: cloneRecord(data)}
}

// Ping implements [Store].
func (store *MemoryStore) Ping(context.Context) error { return nil }
