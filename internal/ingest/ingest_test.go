// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/core/book"
	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/ingest"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLoader() (*ingest.Loader, *docstore.Gateway) {
	gateway := docstore.NewGateway(docstore.NewMemoryStore(), discard())
	return ingest.NewLoader(gateway, discard()), gateway
}

const chaptersYAML = `
- id: chapter-1
  title: Reliable, Scalable, and Maintainable Applications
  range: [3, 24]
  metadata:
    book: book-8Q7HM3
- title: Data Models and Query Languages
  range: [27, 62]
  metadata:
    book: book-8Q7HM3
`

/*
TestLoader_Chapters verifies a list file, including id minting for a record without one.
*/
func TestLoader_Chapters(t *testing.T) {
	ctx := context.Background()
	loader, gateway := newLoader()

	ids, err := loader.Load(ctx, ident.Chapter, strings.NewReader(chaptersYAML))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "chapter-1", ids[0])
	assert.Equal(t, ident.Chapter, ident.Classify(ids[1]))

	record, err := gateway.FetchEntity(ctx, ident.Chapter, ids[1])
	require.NoError(t, err)

	var chapter book.Chapter
	require.NoError(t, docstore.Decode(record, &chapter))
	assert.Equal(t, ids[1], chapter.ID)
	assert.Equal(t, []int{27, 62}, chapter.Range)
	assert.Equal(t, "book-8Q7HM3", chapter.Metadata[book.MetadataBook])
}

/*
TestLoader_SingleMapping verifies that a book file holding one mapping is accepted.
*/
func TestLoader_SingleMapping(t *testing.T) {
	loader, gateway := newLoader()

	ids, err := loader.Load(context.Background(), ident.Book, strings.NewReader(`
id: book-8Q7HM3
title: Designing Data-Intensive Applications
chapters: [chapter-1, chapter-2]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"book-8Q7HM3"}, ids)

	record, err := gateway.FetchEntity(context.Background(), ident.Book, "book-8Q7HM3")
	require.NoError(t, err)
	assert.Equal(t, "Designing Data-Intensive Applications", record["title"])
}

/*
TestLoader_Rejections covers malformed files and foreign ids.
*/
func TestLoader_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{"empty", "", func(t *testing.T, err error) { assert.ErrorIs(t, err, ingest.ErrNoRecords) }},
		{"empty_list", "[]", func(t *testing.T, err error) { assert.ErrorIs(t, err, ingest.ErrNoRecords) }},
		{"scalar", "hello", func(t *testing.T, err error) { assert.Error(t, err) }},
		{"scalar_item", "- hello", func(t *testing.T, err error) { assert.Error(t, err) }},
		{"invalid_yaml", "a: [", func(t *testing.T, err error) { assert.Error(t, err) }},
		{"numeric_id", "id: 42", func(t *testing.T, err error) { assert.Error(t, err) }},
		{"foreign_id", "id: chapter-1", func(t *testing.T, err error) {
			assert.True(t, apperr.HasCode(err, apperr.CodeKindMismatch))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader()
			_, err := loader.Load(context.Background(), ident.Book, strings.NewReader(tt.input))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

/*
TestLoader_PartialWrite verifies that records before a failing one stay written.
*/
func TestLoader_PartialWrite(t *testing.T) {
	loader, gateway := newLoader()

	ids, err := loader.Load(context.Background(), ident.User, strings.NewReader(`
- id: user-1
  books: []
- id: book-1
`))
	require.Error(t, err)
	assert.Equal(t, []string{"user-1"}, ids)

	_, err = gateway.FetchEntity(context.Background(), ident.User, "user-1")
	assert.NoError(t, err)
}
