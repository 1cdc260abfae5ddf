// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/core/book"
)

func serve(t *testing.T, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	service := book.NewService(newFetcher(library(t)), &recordingAssembler{}, nil)
	router := chi.NewRouter()
	router.Route("/api/v1", func(api chi.Router) {
		book.NewHandler(service).RegisterRoutes(api)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder, body
}

/*
TestHandler_Routes covers status codes and envelopes of every reading route.
*/
func TestHandler_Routes(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"book", "/api/v1/books/book-8Q7HM3", http.StatusOK, ""},
		{"book_kind_mismatch", "/api/v1/books/chapter-1", http.StatusBadRequest, "KIND_MISMATCH"},
		{"book_missing", "/api/v1/books/book-none", http.StatusNotFound, "NOT_FOUND"},
		{"chapter", "/api/v1/chapters/chapter-1", http.StatusOK, ""},
		{"chapter_content", "/api/v1/chapters/chapter-2/content", http.StatusOK, ""},
		{"pages", "/api/v1/books/book-8Q7HM3/pages?pages=1-3", http.StatusOK, ""},
		{"pages_missing_query", "/api/v1/books/book-8Q7HM3/pages", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"pages_too_many", "/api/v1/books/book-8Q7HM3/pages?pages=1-100", http.StatusBadRequest, "TOO_MANY_PAGES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, body := serve(t, tt.target)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
				return
			}
			assert.Contains(t, body, "data")
		})
	}
}

/*
TestHandler_ContentLink verifies the link envelope.
*/
func TestHandler_ContentLink(t *testing.T) {
	_, body := serve(t, "/api/v1/chapters/chapter-2/content")

	data := body["data"].(map[string]any)
	assert.Equal(t, "https://links.example/book-8Q7HM3/assembled/pages-11-20.pdf", data["url"])
}
