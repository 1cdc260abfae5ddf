// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/bookworm/internal/platform/request"
	"github.com/taibuivan/bookworm/internal/platform/respond"
	"github.com/taibuivan/bookworm/internal/platform/validate"
)

// Handler implements the HTTP layer for reader libraries and progress.
type Handler struct {
	libraryService *Service
}

// NewHandler constructs a new library [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{libraryService: service}
}

// Routes returns a [chi.Router] with the library endpoints, mounted under /users.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{userID}", handler.getUser)

	// Library set
	router.Post("/{userID}/books", handler.addBook)
	router.Delete("/{userID}/books/{bookID}", handler.removeBook)

	// Reading progress
	router.Get("/{userID}/progress/{bookID}", handler.getProgress)
	router.Put("/{userID}/progress/{bookID}/chapters/{chapterID}", handler.putChapterProgress)

	return router
}

// # Users

/*
GET /api/v1/users/{userID}.

Response:
  - 200: User
  - 400: KIND_MISMATCH: Not a user id
  - 404: NOT_FOUND: User not found
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.libraryService.GetUser(request.Context(), requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Library

// addBookRequest is the body of POST /users/{userID}/books.
type addBookRequest struct {
	BookID string `json:"bookId"`
}

/*
POST /api/v1/users/{userID}/books.

Request:
  - body: addBookRequest

Response:
  - 200: User: Library after the change
  - 400: VALIDATION_ERROR / KIND_MISMATCH
  - 404: NOT_FOUND: User or book not found
*/
func (handler *Handler) addBook(writer http.ResponseWriter, request *http.Request) {
	var input addBookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldBookID, input.BookID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.libraryService.AddBook(request.Context(), requestutil.ID(request, "userID"), input.BookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{userID}/books/{bookID}.

Response:
  - 204: No Content
  - 404: NOT_FOUND: User not found
*/
func (handler *Handler) removeBook(writer http.ResponseWriter, request *http.Request) {
	_, err := handler.libraryService.RemoveBook(request.Context(), requestutil.ID(request, "userID"), requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Progress

/*
GET /api/v1/users/{userID}/progress/{bookID}.

Response:
  - 200: BookProgress (empty chapters when nothing was recorded)
  - 404: NOT_FOUND: User not found
*/
func (handler *Handler) getProgress(writer http.ResponseWriter, request *http.Request) {
	progress, err := handler.libraryService.GetProgress(request.Context(), requestutil.ID(request, "userID"), requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, progress)
}

// putProgressRequest is the body of PUT .../chapters/{chapterID}.
type putProgressRequest struct {
	PercentComplete *float64       `json:"percentComplete"`
	Metadata        map[string]any `json:"metadata"`
}

/*
PUT /api/v1/users/{userID}/progress/{bookID}/chapters/{chapterID}.

Description: Upserts the chapter's progress entry.

Request:
  - body: putProgressRequest

Response:
  - 200: BookProgress: Progress after the write
  - 400: VALIDATION_ERROR: Missing or out-of-range percentComplete
  - 404: NOT_FOUND: User not found
*/
func (handler *Handler) putChapterProgress(writer http.ResponseWriter, request *http.Request) {
	var input putProgressRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.PercentComplete == nil {
		respond.Error(writer, request, validate.RequiredError(FieldPercentComplete, "This field is required"))
		return
	}

	progress, err := handler.libraryService.UpdateChapterProgress(
		request.Context(),
		requestutil.ID(request, "userID"),
		requestutil.ID(request, "bookID"),
		requestutil.ID(request, "chapterID"),
		ProgressInput{PercentComplete: *input.PercentComplete, Metadata: input.Metadata},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, progress)
}
