// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package blob

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/bookworm/internal/platform/request"
	"github.com/taibuivan/bookworm/internal/platform/respond"
	"github.com/taibuivan/bookworm/internal/platform/sec"
)

// FieldToken is the query parameter carrying a link token.
const FieldToken = "token"

// # Handler Implementation

// Handler serves blobs to holders of a valid signed link.
type Handler struct {
	store  Store
	signer *sec.LinkSigner
}

// NewHandler constructs a new blob [Handler].
func NewHandler(store Store, signer *sec.LinkSigner) *Handler {
	return &Handler{store: store, signer: signer}
}

// RegisterRoutes attaches the download endpoint to the API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/blobs", handler.Download)
}

/*
GET /api/v1/blobs?token=...

Description: Streams the object named by the token's subject. Range requests
and conditional requests are handled by [http.ServeContent].

Response:
  - 200: Object bytes with its stored content type
  - 401: UNAUTHORIZED: Missing, tampered or expired token
  - 404: NOT_FOUND: Object no longer exists
*/
func (handler *Handler) Download(writer http.ResponseWriter, request *http.Request) {
	token, err := requestutil.RequiredQuery(request, FieldToken)
	if err != nil {
		respond.Error(writer, request, apperr.Unauthorized("A signed link is required"))
		return
	}

	claims, err := handler.signer.Verify(token)
	if err != nil {
		ctxutil.GetLogger(request.Context()).Warn("blob_link_rejected", slog.String("error", err.Error()))
		respond.Error(writer, request, apperr.Unauthorized("The link is invalid or has expired"))
		return
	}

	object, err := handler.store.Open(request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(writer, request, apperr.NotFound("Document"))
			return
		}
		respond.Error(writer, request, err)
		return
	}
	defer object.Content.Close()

	writer.Header().Set("Content-Type", object.ContentType)
	if claims.Name != "" {
		writer.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": claims.Name}))
	}

	http.ServeContent(writer, request, claims.Name, object.ModTime, object.Content)
}
