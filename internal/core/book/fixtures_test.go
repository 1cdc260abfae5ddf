// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
)

// slowFetcher counts lookups and delays them randomly so completion order
// differs from request order.
type slowFetcher struct {
	gateway *docstore.Gateway
	calls   atomic.Int32
	jitter  bool
}

func (fetcher *slowFetcher) FetchEntity(ctx context.Context, kind ident.Kind, id string) (docstore.Record, error) {
	fetcher.calls.Add(1)
	if fetcher.jitter {
		time.Sleep(time.Duration(rand.IntN(4)) * time.Millisecond)
	}
	return fetcher.gateway.FetchEntity(ctx, kind, id)
}

// recordingAssembler captures assembly requests.
type recordingAssembler struct {
	mu       sync.Mutex
	pageIDs  []string
	outputID string
	err      error
}

func (assembler *recordingAssembler) Assemble(_ context.Context, pageFileIDs []string, outputID string) (string, error) {
	assembler.mu.Lock()
	defer assembler.mu.Unlock()

	if assembler.err != nil {
		return "", assembler.err
	}
	assembler.pageIDs = pageFileIDs
	assembler.outputID = outputID
	return "https://links.example/" + outputID, nil
}

// library seeds the textbook used across tests:
//
//	book-8Q7HM3
//	├── chapter-1 (pages 1-10)
//	│   └── chapter-1a (pages 1-4)
//	└── chapter-2 (pages 11-20)
func library(t *testing.T) *docstore.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	put := func(collection, id string, data docstore.Record) {
		require.NoError(t, store.Put(ctx, collection, id, data))
	}

	put(ident.CollectionBooks, "book-8Q7HM3", docstore.Record{
		"id":       "book-8Q7HM3",
		"title":    "Linear Algebra",
		"chapters": []any{"chapter-1", "chapter-2"},
		"metadata": map[string]any{"edition": float64(3)},
	})
	put(ident.CollectionChapters, "chapter-1", docstore.Record{
		"id":          "chapter-1",
		"title":       "Vectors",
		"range":       []any{float64(1), float64(10)},
		"subchapters": []any{map[string]any{"id": "chapter-1a"}},
		"metadata":    map[string]any{"book": "book-8Q7HM3"},
	})
	put(ident.CollectionChapters, "chapter-1a", docstore.Record{
		"id":       "chapter-1a",
		"title":    "Dot Products",
		"range":    []any{float64(1), float64(4)},
		"metadata": map[string]any{"book": "book-8Q7HM3"},
	})
	put(ident.CollectionChapters, "chapter-2", docstore.Record{
		"id":       "chapter-2",
		"title":    "Matrices",
		"range":    []any{float64(11), float64(20)},
		"metadata": map[string]any{"book": "book-8Q7HM3"},
	})

	return store
}

func newFetcher(store docstore.Store) *slowFetcher {
	return &slowFetcher{gateway: docstore.NewGateway(store, nil)}
}
