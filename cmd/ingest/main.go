// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command ingest loads book metadata and page files into the Bookworm stores.
//
// It reads the same environment as the API server, so documents land in the
// backend selected by DOCSTORE_BACKEND and page files under BLOB_ROOT.
//
//	ingest books    extractions/bookInfo.yaml
//	ingest chapters extractions/chapterInfo.yaml
//	ingest users    extractions/userInfo.yaml
//	ingest pdf --book book-8Q7HM3 books/DDIA.pdf
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/constants"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load textbook metadata and page files into Bookworm",
	Long: `Ingest writes the documents and page files the Bookworm API reads.

Metadata files are YAML holding one mapping or a list of mappings. Records
without an "id" get a freshly minted one. PDFs are split into one file per
page, stored as {bookId}/page{n}.pdf.`,
	Version:       constants.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		recordsCmd("books", "Load book documents", ident.Book),
		recordsCmd("chapters", "Load chapter documents", ident.Chapter),
		recordsCmd("users", "Load user documents", ident.User),
		pdfCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		newLogger().Error("ingest_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "bookworm-ingest"))
}
