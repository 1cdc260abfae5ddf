// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"

	"github.com/taibuivan/bookworm/internal/core/assembly"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/constants"
	"github.com/taibuivan/bookworm/internal/platform/ctxutil"
)

// Assembler merges page files into one document and returns a signed link to it.
type Assembler interface {
	Assemble(context context.Context, pageFileIDs []string, outputID string) (string, error)
}

// # Service Layer

// Service exposes the reading operations consumed by the HTTP layer.
type Service struct {
	trees     *TreeResolver
	pages     *PageResolver
	assembler Assembler
	logger    *slog.Logger
}

// NewService constructs a new [Service].
func NewService(fetcher Fetcher, assembler Assembler, logger *slog.Logger) *Service {
	return &Service{
		trees:     NewTreeResolver(fetcher),
		pages:     NewPageResolver(fetcher),
		assembler: assembler,
		logger:    logger,
	}
}

// # Tree Operations

/*
ResolveBook returns a book with its full chapter tree.

Parameters:
  - context: context.Context
  - bookID: string

Returns:
  - *BookTree: The resolved book
  - error: NOT_FOUND, KIND_MISMATCH, CORRUPT_RECORD or GRAPH_CYCLE_DETECTED
*/
func (service *Service) ResolveBook(context context.Context, bookID string) (*BookTree, error) {
	tree, err := service.trees.ResolveBookTree(context, bookID)
	if err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(context, service.logger).Debug("book_tree_resolved",
		slog.String("book_id", bookID),
		slog.Int("chapters", len(tree.ChapterInfo)),
	)

	return tree, nil
}

// ResolveChapter returns a chapter, with subchapters resolved when it has any.
func (service *Service) ResolveChapter(context context.Context, chapterID string) (*ChapterTree, error) {
	return service.trees.ResolveChapterTree(context, chapterID)
}

// # Content Operations

/*
GetChapterContentLink assembles a chapter's pages and returns a signed link.

Description: The chapter's range is resolved inside its owning book's
namespace, each page maps to "{namespace}/page{n}.pdf" and the merged document
is stored under a name derived from the namespace and page list.

Parameters:
  - context: context.Context
  - chapterID: string

Returns:
  - string: Time-limited URL
  - error: NOT_FOUND, KIND_MISMATCH, TOO_MANY_PAGES, CORRUPT_RECORD or PAGE_NOT_FOUND
*/
func (service *Service) GetChapterContentLink(context context.Context, chapterID string) (string, error) {
	list, err := service.pages.ResolvePageList(context, chapterID)
	if err != nil {
		return "", err
	}

	url, err := service.assembler.Assemble(context, list.FileIDs(), assembly.OutputID(list.Namespace, list.Pages))
	if err != nil {
		return "", err
	}

	ctxutil.LoggerOr(context, service.logger).Info("chapter_content_linked",
		slog.String("chapter_id", chapterID),
		slog.String("namespace", list.Namespace),
		slog.Int("pages", len(list.Pages)),
	)

	return url, nil
}

/*
GetArbitraryPages assembles an explicit page list from a book's namespace.

Description: Pages are merged in the requested order. The book record itself is
not read; page files live under the book id.

Parameters:
  - context: context.Context
  - bookID: string
  - pages: []int

Returns:
  - string: Time-limited URL
  - error: KIND_MISMATCH, TOO_MANY_PAGES, EMPTY_DOCUMENT_REQUEST or PAGE_NOT_FOUND
*/
func (service *Service) GetArbitraryPages(context context.Context, bookID string, pages []int) (string, error) {
	if err := ident.AssertKind(bookID, ident.Book); err != nil {
		return "", err
	}

	if len(pages) > constants.MaxAssemblyPages {
		return "", apperr.TooManyPages(len(pages), constants.MaxAssemblyPages)
	}

	list := PageList{Namespace: bookID, Pages: pages}

	url, err := service.assembler.Assemble(context, list.FileIDs(), assembly.OutputID(bookID, pages))
	if err != nil {
		return "", err
	}

	ctxutil.LoggerOr(context, service.logger).Info("book_pages_linked",
		slog.String("book_id", bookID),
		slog.Int("pages", len(pages)),
	)

	return url, nil
}
