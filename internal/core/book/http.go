// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookworm/internal/platform/constants"
	requestutil "github.com/taibuivan/bookworm/internal/platform/request"
	"github.com/taibuivan/bookworm/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for books and chapters.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches book and chapter endpoints to the API router.
// The assembly middlewares wrap only the routes that merge documents.
func (handler *Handler) RegisterRoutes(api chi.Router, assembly ...func(http.Handler) http.Handler) {
	api.Get("/books/{bookID}", handler.GetBook)
	api.Get("/chapters/{chapterID}", handler.GetChapter)

	// Document assembly
	api.With(assembly...).Get("/books/{bookID}/pages", handler.GetPages)
	api.With(assembly...).Get("/chapters/{chapterID}/content", handler.GetChapterContent)
}

// # Trees

/*
GET /api/v1/books/{bookID}.

Description: Returns the book with its chapter tree resolved recursively.

Response:
  - 200: BookTree
  - 400: KIND_MISMATCH: Not a book id
  - 404: NOT_FOUND: Book or one of its chapters is missing
*/
func (handler *Handler) GetBook(writer http.ResponseWriter, request *http.Request) {
	tree, err := handler.service.ResolveBook(request.Context(), requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tree)
}

/*
GET /api/v1/chapters/{chapterID}.

Response:
  - 200: ChapterTree
  - 400: KIND_MISMATCH: Not a chapter id
  - 404: NOT_FOUND: Chapter is missing
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	tree, err := handler.service.ResolveChapter(request.Context(), requestutil.ID(request, "chapterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tree)
}

// # Content

/*
GET /api/v1/chapters/{chapterID}/content.

Description: Assembles the chapter's pages into one PDF and returns a signed link.

Response:
  - 200: {url}
  - 400: TOO_MANY_PAGES: Chapter spans more than the page ceiling
  - 404: NOT_FOUND: Chapter is missing
  - 500: PAGE_NOT_FOUND: A page file is missing
*/
func (handler *Handler) GetChapterContent(writer http.ResponseWriter, request *http.Request) {
	url, err := handler.service.GetChapterContentLink(request.Context(), requestutil.ID(request, "chapterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldURL: url})
}

/*
GET /api/v1/books/{bookID}/pages?pages=1-5.

Description: Assembles arbitrary pages of a book, given as "a-b" or "a,b,c".

Response:
  - 200: {url}
  - 400: VALIDATION_ERROR / TOO_MANY_PAGES / KIND_MISMATCH
  - 500: PAGE_NOT_FOUND: A page file is missing
*/
func (handler *Handler) GetPages(writer http.ResponseWriter, request *http.Request) {
	spec, err := requestutil.RequiredQuery(request, FieldPages)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pages, err := ParsePageSpec(spec, constants.MaxAssemblyPages)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	url, err := handler.service.GetArbitraryPages(request.Context(), requestutil.ID(request, "bookID"), pages)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldURL: url})
}
