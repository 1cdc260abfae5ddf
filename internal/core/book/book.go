// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book resolves textbooks into chapter trees and chapters into page documents.

A book lists its chapters by id in table-of-contents order; a chapter may list
subchapters and declares the inclusive page range it spans inside its owning
book's page namespace. Trees are derived per request and never persisted.

# Types

  - Persisted entities: [Book], [Chapter] (reference lists only).
  - Resolved views: [BookTree], [ChapterTree] (reference lists plus resolved children).
*/
package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
)

// MetadataBook is the chapter metadata key naming the owning book's page namespace.
const MetadataBook = "book"

// # Persisted Entities

// Book is a textbook record as stored in the bookInfo collection.
type Book struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Chapters   []string       `json:"chapters"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreateTime string         `json:"createTime,omitempty"`
	UpdateTime string         `json:"updateTime,omitempty"`
}

// ChapterRef points at a subchapter.
type ChapterRef struct {
	ID string `json:"id"`
}

// Chapter is a chapter record as stored in the chapterInfo collection.
type Chapter struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Range       []int          `json:"range,omitempty"`
	Subchapters []ChapterRef   `json:"subchapters,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreateTime  string         `json:"createTime,omitempty"`
	UpdateTime  string         `json:"updateTime,omitempty"`
}

// SubchapterIDs returns the subchapter ids in declaration order.
func (chapter *Chapter) SubchapterIDs() []string {
	ids := make([]string, len(chapter.Subchapters))
	for i, ref := range chapter.Subchapters {
		ids[i] = ref.ID
	}
	return ids
}

// PageRange validates and returns the inclusive page range.
//
// The range must hold exactly two page numbers with 1 <= first <= last.
func (chapter *Chapter) PageRange() (first, last int, err error) {
	if len(chapter.Range) != 2 {
		return 0, 0, fmt.Errorf("range must hold two page numbers, got %d", len(chapter.Range))
	}

	first, last = chapter.Range[0], chapter.Range[1]
	if first < 1 || first > last {
		return 0, 0, fmt.Errorf("invalid range [%d, %d]", first, last)
	}
	return first, last, nil
}

// Namespace returns the owning book's page namespace from metadata.
func (chapter *Chapter) Namespace() (string, error) {
	namespace, ok := chapter.Metadata[MetadataBook].(string)
	if !ok || namespace == "" {
		return "", errors.New("metadata.book is missing or not a string")
	}
	return namespace, nil
}

// # Resolved Views

// BookTree is a book with every chapter resolved, in table-of-contents order.
type BookTree struct {
	Book
	ChapterInfo []*ChapterTree `json:"chapterInfo"`
}

// ChapterTree is a chapter with its subchapters resolved in declaration order.
// Leaves carry no subchapterInfo.
type ChapterTree struct {
	Chapter
	SubchapterInfo []*ChapterTree `json:"subchapterInfo,omitempty"`
}

// # Fetching

// Fetcher loads a single normalized entity record.
//
// [docstore.Gateway] is the production implementation.
type Fetcher interface {
	FetchEntity(context context.Context, kind ident.Kind, id string) (docstore.Record, error)
}

// fetchBook loads and decodes a book.
func fetchBook(context context.Context, fetcher Fetcher, id string) (*Book, error) {
	record, err := fetcher.FetchEntity(context, ident.Book, id)
	if err != nil {
		return nil, err
	}

	var book Book
	if err := docstore.Decode(record, &book); err != nil {
		return nil, apperr.CorruptRecord("Book "+id, err)
	}
	return &book, nil
}

// fetchChapter loads and decodes a chapter.
func fetchChapter(context context.Context, fetcher Fetcher, id string) (*Chapter, error) {
	record, err := fetcher.FetchEntity(context, ident.Chapter, id)
	if err != nil {
		return nil, err
	}

	var chapter Chapter
	if err := docstore.Decode(record, &chapter); err != nil {
		return nil, apperr.CorruptRecord("Chapter "+id, err)
	}
	return &chapter, nil
}
