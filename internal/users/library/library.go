// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"slices"

	"github.com/taibuivan/bookworm/internal/core/docstore"
)

// # Domain Models

// User is a reader with a personal library and per-book reading progress.
type User struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Email      string                  `json:"email"`
	Books      []string                `json:"books"`
	Progress   map[string]BookProgress `json:"progress"`
	Metadata   map[string]any          `json:"metadata,omitempty"`
	CreateTime string                  `json:"createTime,omitempty"`
	UpdateTime string                  `json:"updateTime,omitempty"`
}

// BookProgress holds chapter progress for one book, unique by chapter id.
type BookProgress struct {
	Chapters []ChapterProgress `json:"chapters"`
	Metadata map[string]any    `json:"metadata,omitempty"`
}

// ChapterProgress is how far a reader got through one chapter, from 0 to 100.
type ChapterProgress struct {
	ChapterID       string         `json:"chapterId"`
	PercentComplete float64        `json:"percentComplete"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// # Library Set

// addBook inserts bookID unless present and reports whether it changed.
func addBook(books []string, bookID string) ([]string, bool) {
	if slices.Contains(books, bookID) {
		return books, false
	}
	return append(books, bookID), true
}

// removeBook deletes every occurrence of bookID.
func removeBook(books []string, bookID string) []string {
	return slices.DeleteFunc(books, func(id string) bool { return id == bookID })
}

// # Progress

const (
	keyChapters  = "chapters"
	keyChapterID = "chapterId"
)

// record is the stored form of the entry.
func (entry ChapterProgress) record() map[string]any {
	out := map[string]any{
		keyChapterID:         entry.ChapterID,
		FieldPercentComplete: entry.PercentComplete,
	}
	if entry.Metadata != nil {
		out["metadata"] = entry.Metadata
	}
	return out
}

/*
UpsertChapter replaces the entry for entry.ChapterID in a stored book progress
record, or appends it.

Description: Only the matched entry is rewritten. Sibling chapters and the book's
own fields keep their stored values, including store-native timestamps.

Returns:
  - map[string]any: The updated record; book itself when non-nil
*/
func UpsertChapter(book map[string]any, entry ChapterProgress) map[string]any {
	if book == nil {
		book = make(map[string]any)
	}

	chapters, _ := book[keyChapters].([]any)
	for i, item := range chapters {
		if existing, ok := asMap(item); ok && existing[keyChapterID] == entry.ChapterID {
			chapters[i] = entry.record()
			book[keyChapters] = chapters
			return book
		}
	}

	book[keyChapters] = append(chapters, entry.record())
	return book
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case docstore.Record:
		return typed, true
	default:
		return nil, false
	}
}
