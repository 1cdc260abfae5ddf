// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Bookworm HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the document store selected by DOCSTORE_BACKEND.
//  4. Open the blob store and the link signer.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/bookworm/internal/api"
	"github.com/taibuivan/bookworm/internal/core/assembly"
	"github.com/taibuivan/bookworm/internal/core/blob"
	"github.com/taibuivan/bookworm/internal/core/book"
	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/platform/config"
	"github.com/taibuivan/bookworm/internal/platform/constants"
	"github.com/taibuivan/bookworm/internal/platform/sec"
	"github.com/taibuivan/bookworm/internal/users/library"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Bookworm] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("docstore", cfg.DocStoreBackend),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Document Store ─────────────────────────────────────────────────
	store, closeStore, err := docstore.Open(startupCtx, cfg, log)
	must(log, err, "open document store")
	defer closeStore()

	gateway := docstore.NewGateway(store, log)

	// ── 4. Blob Store ─────────────────────────────────────────────────────
	signer, err := sec.NewLinkSigner(cfg.LinkSecret, constants.LinkIssuer, cfg.PublicBaseURL)
	must(log, err, "initialize link signer")

	blobs, err := blob.NewOSFileStore(cfg.BlobRoot, signer)
	must(log, err, "open blob store")

	// ── 5. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: "docstore", Ping: gateway.Ping},
		{Name: "blobstore", Ping: blobs.Ping},
	}, log)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	assembler := assembly.NewAssembler(blobs, assembly.NewPDFMerger(), cfg.LinkTTL, log)

	bookService := book.NewService(gateway, assembler, log)
	libraryService := library.NewService(gateway, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Book:      book.NewHandler(bookService),
		Blob:      blob.NewHandler(blobs, signer),
		Library:   library.NewHandler(libraryService),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
