// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/bookworm/internal/core/assembly"
	"github.com/taibuivan/bookworm/internal/core/blob"
	"github.com/taibuivan/bookworm/internal/core/book"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/constants"
)

// uploadConcurrency bounds parallel page writes.
const uploadConcurrency = 4

// ErrPagesExist is returned when a book already has page files and overwriting was not requested.
var ErrPagesExist = errors.New("ingest: page files already exist")

// PageWriter is the subset of [blob.Store] used for splitting.
type PageWriter interface {
	Exists(context context.Context, path string) (bool, error)
	Save(context context.Context, path string, data []byte, contentType string) error
}

var _ PageWriter = (blob.Store)(nil)

// Splitter stores a book's PDF as individual page files.
type Splitter struct {
	pages  PageWriter
	logger *slog.Logger
}

// NewSplitter constructs a Splitter.
func NewSplitter(pages PageWriter, logger *slog.Logger) *Splitter {
	return &Splitter{pages: pages, logger: logger}
}

/*
Split writes every page of document as "{bookID}/page{n}.pdf".

Parameters:
  - context: Bounds the blob writes
  - bookID: Namespace of the page files; must be a book id
  - document: The complete PDF
  - force: Overwrite when page 1 already exists

Returns:
  - int: Number of pages written
  - error: KIND_MISMATCH, [ErrPagesExist], PDF or storage failures
*/
func (splitter *Splitter) Split(context context.Context, bookID string, document []byte, force bool) (int, error) {
	if err := ident.AssertKind(bookID, ident.Book); err != nil {
		return 0, err
	}

	exists, err := splitter.pages.Exists(context, book.PageFileID(bookID, 1))
	if err != nil {
		return 0, fmt.Errorf("ingest: check existing pages: %w", err)
	}
	if exists && !force {
		return 0, fmt.Errorf("%w under %s", ErrPagesExist, bookID)
	}

	pages, err := assembly.SplitPages(document)
	if err != nil {
		return 0, err
	}

	group, groupCtx := errgroup.WithContext(context)
	group.SetLimit(uploadConcurrency)

	for i, page := range pages {
		path := book.PageFileID(bookID, i+1)
		group.Go(func() error {
			if err := splitter.pages.Save(groupCtx, path, page, constants.ContentTypePDF); err != nil {
				return fmt.Errorf("ingest: save %s: %w", path, err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}

	splitter.logger.Info("pages_ingested",
		slog.String("book_id", bookID),
		slog.Int("pages", len(pages)),
		slog.Bool("overwrite", exists),
	)
	return len(pages), nil
}
