// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/api"
	"github.com/taibuivan/bookworm/internal/core/assembly"
	"github.com/taibuivan/bookworm/internal/core/blob"
	"github.com/taibuivan/bookworm/internal/core/book"
	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/config"
	"github.com/taibuivan/bookworm/internal/platform/pdftest"
	"github.com/taibuivan/bookworm/internal/platform/sec"
	"github.com/taibuivan/bookworm/internal/users/library"
)

type fixture struct {
	handler http.Handler
	store   *docstore.MemoryStore
	blobs   *blob.FileStore
}

func newFixture(t *testing.T, checks ...api.Check) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{ServerPort: "0", Environment: "test", PublicBaseURL: "http://bookworm.test", LinkTTL: time.Hour}

	signer, err := sec.NewLinkSigner("test-secret", "bookworm.app", cfg.PublicBaseURL)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := docstore.NewMemoryStore()
	gateway := docstore.NewGateway(store, logger)
	blobs := blob.NewFileStore(afero.NewMemMapFs(), signer)
	assembler := assembly.NewAssembler(blobs, assembly.NewPDFMerger(), cfg.LinkTTL, logger)

	liveness, readiness := api.NewHealthHandlers(checks, logger)
	server := api.NewServer(ctx, cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Book:      book.NewHandler(book.NewService(gateway, assembler, logger)),
		Blob:      blob.NewHandler(blobs, signer),
		Library:   library.NewHandler(library.NewService(gateway, logger)),
	})

	return &fixture{handler: server.Handler(), store: store, blobs: blobs}
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

/*
TestServer_ChapterContentEndToEnd resolves, assembles and downloads a chapter.
*/
func TestServer_ChapterContentEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Put(ctx, ident.CollectionBooks, "book-8Q7HM3", docstore.Record{
		"id": "book-8Q7HM3", "title": "Linear Algebra", "chapters": []any{"chapter-1"},
	}))
	require.NoError(t, f.store.Put(ctx, ident.CollectionChapters, "chapter-1", docstore.Record{
		"id": "chapter-1", "title": "Vectors", "range": []any{float64(2), float64(4)},
		"metadata": map[string]any{"book": "book-8Q7HM3"},
	}))
	for page := 1; page <= 5; page++ {
		require.NoError(t, f.blobs.Save(ctx, fmt.Sprintf("book-8Q7HM3/page%d.pdf", page), pdftest.Generate(1, 600+page), "application/pdf"))
	}

	recorder := f.get(t, "/api/v1/books/book-8Q7HM3")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	recorder = f.get(t, "/api/v1/chapters/chapter-1/content")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	link, err := url.Parse(envelope.Data.URL)
	require.NoError(t, err)
	assert.Equal(t, "bookworm.test", link.Host)

	download := f.get(t, link.RequestURI())
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "application/pdf", download.Header().Get("Content-Type"))

	body, err := io.ReadAll(download.Body)
	require.NoError(t, err)

	count, err := assembly.PageCount(body)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

/*
TestServer_MissingPage verifies a missing page file surfaces as PAGE_NOT_FOUND.
*/
func TestServer_MissingPage(t *testing.T) {
	f := newFixture(t)

	recorder := f.get(t, "/api/v1/books/book-1/pages?pages=1,2")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "PAGE_NOT_FOUND")
}

/*
TestServer_Health verifies liveness and readiness reporting.
*/
func TestServer_Health(t *testing.T) {
	healthy := newFixture(t, api.Check{Name: "docstore", Ping: func(context.Context) error { return nil }})
	assert.Equal(t, http.StatusOK, healthy.get(t, "/health").Code)
	assert.Equal(t, http.StatusOK, healthy.get(t, "/ready").Code)

	degraded := newFixture(t, api.Check{Name: "blobstore", Ping: func(context.Context) error { return errors.New("disk gone") }})
	recorder := degraded.get(t, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "disk gone")
}
