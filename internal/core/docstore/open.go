// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/bookworm/internal/platform/config"
	"github.com/taibuivan/bookworm/internal/platform/migration"
	pgstore "github.com/taibuivan/bookworm/internal/platform/postgres"
	redisstore "github.com/taibuivan/bookworm/internal/platform/redis"
)

/*
Open connects the backend named by cfg.DocStoreBackend.

Description: PostgreSQL migrations are applied before the store is returned.

Returns:
  - Store: The connected backend
  - func(): Releases the backend's connections; safe to defer
  - error: Connection or migration failures
*/
func Open(context context.Context, cfg *config.Config, log *slog.Logger) (Store, func(), error) {
	switch cfg.DocStoreBackend {
	case config.BackendPostgres:
		pool, err := pgstore.NewPool(context, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}

		if _, err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			pool.Close()
			return nil, nil, err
		}

		return NewPostgresStore(pool), func() {
			log.Info("closing postgres pool")
			pool.Close()
		}, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(context, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}

		return NewRedisStore(client), func() {
			log.Info("closing redis client")
			if cerr := client.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}, nil

	case config.BackendMemory:
		log.Warn("docstore_memory_backend", slog.String("detail", "documents are lost on restart"))
		return NewMemoryStore(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("docstore: unknown backend %q", cfg.DocStoreBackend)
}
