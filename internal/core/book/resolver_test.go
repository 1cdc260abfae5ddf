// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/core/book"
	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
)

/*
TestResolveBookTree_Scenario resolves the reference textbook.
*/
func TestResolveBookTree_Scenario(t *testing.T) {
	resolver := book.NewTreeResolver(newFetcher(library(t)))

	tree, err := resolver.ResolveBookTree(context.Background(), "book-8Q7HM3")
	require.NoError(t, err)

	require.Len(t, tree.ChapterInfo, 2)
	assert.Equal(t, "chapter-1", tree.ChapterInfo[0].ID)
	require.Len(t, tree.ChapterInfo[0].SubchapterInfo, 1)
	assert.Equal(t, "chapter-1a", tree.ChapterInfo[0].SubchapterInfo[0].ID)
	assert.Nil(t, tree.ChapterInfo[1].SubchapterInfo)
	assert.Equal(t, []string{"chapter-1", "chapter-2"}, tree.Chapters)
	assert.NotEmpty(t, tree.CreateTime)
}

/*
TestResolveBookTree_JSONShape verifies the wire shape of resolved views.
*/
func TestResolveBookTree_JSONShape(t *testing.T) {
	resolver := book.NewTreeResolver(newFetcher(library(t)))

	tree, err := resolver.ResolveBookTree(context.Background(), "book-8Q7HM3")
	require.NoError(t, err)

	payload, err := json.Marshal(tree)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(payload, &generic))

	chapters := generic["chapterInfo"].([]any)
	first := chapters[0].(map[string]any)
	second := chapters[1].(map[string]any)

	assert.Equal(t, "chapter-1a", first["subchapterInfo"].([]any)[0].(map[string]any)["id"])
	assert.NotContains(t, second, "subchapterInfo")
	assert.Equal(t, []any{float64(11), float64(20)}, second["range"])
}

/*
TestResolveBookTree_Order verifies order is kept regardless of completion timing.
*/
func TestResolveBookTree_Order(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	var ids []any
	var want []string
	for i := range 20 {
		id := fmt.Sprintf("chapter-%02d", i)
		ids = append(ids, id)
		want = append(want, id)
		require.NoError(t, store.Put(ctx, ident.CollectionChapters, id, docstore.Record{"id": id, "title": id}))
	}
	require.NoError(t, store.Put(ctx, ident.CollectionBooks, "book-1", docstore.Record{"id": "book-1", "chapters": ids}))

	fetcher := newFetcher(store)
	fetcher.jitter = true
	resolver := book.NewTreeResolver(fetcher)

	for range 5 {
		tree, err := resolver.ResolveBookTree(ctx, "book-1")
		require.NoError(t, err)

		got := make([]string, len(tree.ChapterInfo))
		for i, chapter := range tree.ChapterInfo {
			got[i] = chapter.ID
		}
		assert.Equal(t, want, got)
	}
}

/*
TestResolveChapterTree_Leaf verifies leaves carry no subchapterInfo.
*/
func TestResolveChapterTree_Leaf(t *testing.T) {
	ctx := context.Background()
	store := library(t)
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-empty", docstore.Record{
		"id": "chapter-empty", "subchapters": []any{},
	}))
	resolver := book.NewTreeResolver(newFetcher(store))

	for _, id := range []string{"chapter-2", "chapter-empty"} {
		tree, err := resolver.ResolveChapterTree(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, tree.SubchapterInfo, id)
	}
}

/*
TestResolveBookTree_FailFast verifies a missing descendant fails the whole tree.
*/
func TestResolveBookTree_FailFast(t *testing.T) {
	ctx := context.Background()
	store := library(t)
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-2", docstore.Record{
		"id": "chapter-2", "subchapters": []any{map[string]any{"id": "chapter-ghost"}},
	}))
	resolver := book.NewTreeResolver(newFetcher(store))

	tree, err := resolver.ResolveBookTree(ctx, "book-8Q7HM3")

	assert.Nil(t, tree)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestResolveBookTree_Errors covers kind mismatch and missing books.
*/
func TestResolveBookTree_Errors(t *testing.T) {
	fetcher := newFetcher(library(t))
	resolver := book.NewTreeResolver(fetcher)

	_, err := resolver.ResolveBookTree(context.Background(), "chapter-1")
	assert.True(t, apperr.HasCode(err, apperr.CodeKindMismatch))

	_, err = resolver.ResolveBookTree(context.Background(), "book-missing")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = resolver.ResolveChapterTree(context.Background(), "book-8Q7HM3")
	assert.True(t, apperr.HasCode(err, apperr.CodeKindMismatch))
}

/*
TestResolveChapterTree_Cycle verifies self and mutual references are reported.
*/
func TestResolveChapterTree_Cycle(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	ref := func(id string) []any { return []any{map[string]any{"id": id}} }
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-self", docstore.Record{"id": "chapter-self", "subchapters": ref("chapter-self")}))
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-a", docstore.Record{"id": "chapter-a", "subchapters": ref("chapter-b")}))
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-b", docstore.Record{"id": "chapter-b", "subchapters": ref("chapter-a")}))

	resolver := book.NewTreeResolver(newFetcher(store))

	for _, id := range []string{"chapter-self", "chapter-a"} {
		_, err := resolver.ResolveChapterTree(ctx, id)
		require.Error(t, err, id)
		assert.True(t, apperr.HasCode(err, apperr.CodeGraphCycleDetected), id)
	}
}

/*
TestResolveChapterTree_SharedSubtree verifies that a DAG is not mistaken for a cycle.
*/
func TestResolveChapterTree_SharedSubtree(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	ref := func(ids ...string) []any {
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = map[string]any{"id": id}
		}
		return out
	}
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-root", docstore.Record{"id": "chapter-root", "subchapters": ref("chapter-x", "chapter-y")}))
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-x", docstore.Record{"id": "chapter-x", "subchapters": ref("chapter-shared")}))
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-y", docstore.Record{"id": "chapter-y", "subchapters": ref("chapter-shared")}))
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-shared", docstore.Record{"id": "chapter-shared"}))

	tree, err := book.NewTreeResolver(newFetcher(store)).ResolveChapterTree(ctx, "chapter-root")
	require.NoError(t, err)
	assert.Equal(t, "chapter-shared", tree.SubchapterInfo[0].SubchapterInfo[0].ID)
	assert.Equal(t, "chapter-shared", tree.SubchapterInfo[1].SubchapterInfo[0].ID)
}

/*
TestResolveChapterTree_DepthCap verifies an acyclic but absurdly deep chain is refused.
*/
func TestResolveChapterTree_DepthCap(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	for i := range 40 {
		record := docstore.Record{"id": fmt.Sprintf("chapter-%d", i)}
		if i < 39 {
			record["subchapters"] = []any{map[string]any{"id": fmt.Sprintf("chapter-%d", i+1)}}
		}
		require.NoError(t, store.Put(ctx, ident.CollectionChapters, fmt.Sprintf("chapter-%d", i), record))
	}

	_, err := book.NewTreeResolver(newFetcher(store)).ResolveChapterTree(ctx, "chapter-0")
	assert.True(t, apperr.HasCode(err, apperr.CodeCorruptRecord))
}

/*
TestResolveChapterTree_Malformed verifies undecodable records are corrupt.
*/
func TestResolveChapterTree_Malformed(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, ident.CollectionChapters, "chapter-bad", docstore.Record{"id": "chapter-bad", "subchapters": "chapter-1"}))

	_, err := book.NewTreeResolver(newFetcher(store)).ResolveChapterTree(ctx, "chapter-bad")
	assert.True(t, apperr.HasCode(err, apperr.CodeCorruptRecord))
}
