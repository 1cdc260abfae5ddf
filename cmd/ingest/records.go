// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/ingest"
	"github.com/taibuivan/bookworm/internal/platform/config"
	"github.com/taibuivan/bookworm/internal/platform/constants"
)

func recordsCmd(use, short string, kind ident.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE.yaml",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			startupCtx, cancel := context.WithTimeout(cmd.Context(), constants.StartupTimeout)
			defer cancel()

			store, closeStore, err := docstore.Open(startupCtx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			loader := ingest.NewLoader(docstore.NewGateway(store, log), log)
			ids, err := loader.Load(cmd.Context(), kind, file)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d %s uploaded to %s\n", len(ids), use, kind.Collection())
			return nil
		},
	}
}
