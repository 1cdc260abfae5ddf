// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library manages readers' book collections and reading progress.

Every write is a read-modify-write of the single user document performed inside
the store's transactional update, so two devices reporting progress at the same
time cannot overwrite each other's chapters. Unknown fields of the user document
are preserved.
*/
package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/ctxutil"
	"github.com/taibuivan/bookworm/internal/platform/validate"
)

const (
	FieldBookID          = "bookId"
	FieldPercentComplete = "percentComplete"

	keyBooks    = "books"
	keyProgress = "progress"
)

// Gateway is the subset of [docstore.Gateway] the library relies on.
type Gateway interface {
	FetchEntity(context context.Context, kind ident.Kind, id string) (docstore.Record, error)
	UpdateEntity(context context.Context, kind ident.Kind, id string, mutate docstore.MutateFunc) error
}

// # Service Layer

// Service orchestrates library and progress operations.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
}

// NewService constructs a new [Service].
func NewService(gateway Gateway, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// # Users

/*
GetUser retrieves a reader's profile, library and progress.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: The decoded user
  - error: KIND_MISMATCH, NOT_FOUND or CORRUPT_RECORD
*/
func (service *Service) GetUser(context context.Context, userID string) (*User, error) {
	record, err := service.gateway.FetchEntity(context, ident.User, userID)
	if err != nil {
		return nil, err
	}
	return decodeUser(userID, record)
}

// # Library

/*
AddBook puts a book in a reader's library. Adding a book twice is a no-op.

Description: The book must exist; its id kind is checked before the lookup.

Returns:
  - *User: The user after the change
  - error: KIND_MISMATCH, NOT_FOUND or storage errors
*/
func (service *Service) AddBook(context context.Context, userID, bookID string) (*User, error) {
	if _, err := service.gateway.FetchEntity(context, ident.Book, bookID); err != nil {
		return nil, err
	}

	var updated *User
	err := service.gateway.UpdateEntity(context, ident.User, userID, func(current docstore.Record) (docstore.Record, error) {
		user, err := decodeUser(userID, current)
		if err != nil {
			return nil, err
		}

		books, changed := addBook(user.Books, bookID)
		user.Books = books
		updated = user
		if !changed {
			return current, nil
		}

		current[keyBooks] = stringList(books)
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(context, service.logger).Info("library_book_added",
		slog.String("user_id", userID),
		slog.String("book_id", bookID),
	)

	return updated, nil
}

// RemoveBook takes a book out of a reader's library. Progress for the book is kept.
func (service *Service) RemoveBook(context context.Context, userID, bookID string) (*User, error) {
	if err := ident.AssertKind(bookID, ident.Book); err != nil {
		return nil, err
	}

	var updated *User
	err := service.gateway.UpdateEntity(context, ident.User, userID, func(current docstore.Record) (docstore.Record, error) {
		user, err := decodeUser(userID, current)
		if err != nil {
			return nil, err
		}

		user.Books = removeBook(user.Books, bookID)
		updated = user

		current[keyBooks] = stringList(user.Books)
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(context, service.logger).Info("library_book_removed",
		slog.String("user_id", userID),
		slog.String("book_id", bookID),
	)

	return updated, nil
}

// # Progress

// GetProgress returns a reader's progress in one book, empty when none was recorded.
func (service *Service) GetProgress(context context.Context, userID, bookID string) (*BookProgress, error) {
	if err := ident.AssertKind(bookID, ident.Book); err != nil {
		return nil, err
	}

	user, err := service.GetUser(context, userID)
	if err != nil {
		return nil, err
	}

	progress, ok := user.Progress[bookID]
	if !ok || progress.Chapters == nil {
		progress.Chapters = []ChapterProgress{}
	}
	return &progress, nil
}

// ProgressInput is a chapter progress report.
type ProgressInput struct {
	PercentComplete float64
	Metadata        map[string]any
}

/*
UpdateChapterProgress records progress for one chapter of one book.

Description: The entry for chapterID is replaced if present, otherwise appended,
so chapter ids stay unique within the book's progress.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string
  - chapterID: string
  - input: ProgressInput (percent must lie in 0..100)

Returns:
  - *BookProgress: The book's progress after the write
  - error: VALIDATION_ERROR, KIND_MISMATCH, NOT_FOUND or storage errors
*/
func (service *Service) UpdateChapterProgress(context context.Context, userID, bookID, chapterID string, input ProgressInput) (*BookProgress, error) {
	validator := &validate.Validator{}
	validator.RangeFloat(FieldPercentComplete, input.PercentComplete, 0, 100)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := ident.AssertKind(bookID, ident.Book); err != nil {
		return nil, err
	}
	if err := ident.AssertKind(chapterID, ident.Chapter); err != nil {
		return nil, err
	}

	var updated BookProgress
	err := service.gateway.UpdateEntity(context, ident.User, userID, func(current docstore.Record) (docstore.Record, error) {
		if _, err := decodeUser(userID, current); err != nil {
			return nil, err
		}

		progress, ok := asMap(current[keyProgress])
		if !ok {
			progress = make(map[string]any)
		}
		book, _ := asMap(progress[bookID])

		book = UpsertChapter(book, ChapterProgress{
			ChapterID:       chapterID,
			PercentComplete: input.PercentComplete,
			Metadata:        input.Metadata,
		})
		progress[bookID] = book
		current[keyProgress] = progress

		if err := docstore.Decode(book, &updated); err != nil {
			return nil, apperr.CorruptRecord("Progress of user "+userID, err)
		}
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(context, service.logger).Info("chapter_progress_updated",
		slog.String("user_id", userID),
		slog.String("book_id", bookID),
		slog.String("chapter_id", chapterID),
		slog.Float64("percent_complete", input.PercentComplete),
	)

	return &updated, nil
}

// # Internal Helpers

func decodeUser(userID string, record docstore.Record) (*User, error) {
	var user User
	if err := docstore.Decode(record, &user); err != nil {
		return nil, apperr.CorruptRecord("User "+userID, fmt.Errorf("decode: %w", err))
	}
	if user.Books == nil {
		user.Books = []string{}
	}
	return &user, nil
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}
