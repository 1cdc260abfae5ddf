// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/bookworm/internal/core/blob"
	"github.com/taibuivan/bookworm/internal/ingest"
	"github.com/taibuivan/bookworm/internal/platform/config"
	"github.com/taibuivan/bookworm/internal/platform/constants"
	"github.com/taibuivan/bookworm/internal/platform/sec"
)

func pdfCmd() *cobra.Command {
	var (
		bookID string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "pdf FILE.pdf",
		Short: "Split a book PDF into page files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			document, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			signer, err := sec.NewLinkSigner(cfg.LinkSecret, constants.LinkIssuer, cfg.PublicBaseURL)
			if err != nil {
				return err
			}

			blobs, err := blob.NewOSFileStore(cfg.BlobRoot, signer)
			if err != nil {
				return err
			}

			written, err := ingest.NewSplitter(blobs, log).Split(cmd.Context(), bookID, document, force)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d pages uploaded to %s/\n", written, bookID)
			return nil
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "book id owning the pages (e.g. book-8Q7HM3)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing page files")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}
