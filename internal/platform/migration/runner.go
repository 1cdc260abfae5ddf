// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the document store schema with golang-migrate.
//
// # Architecture
//
// Migrations run once at startup, before the PostgreSQL document store serves
// any request. The schema is a single table, store.document, so the version
// reported here is the version of that table's layout.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/taibuivan/bookworm/internal/platform/database/schema"
)

// Status reports what [RunUp] did.
type Status struct {
	// FromVersion is the schema version found before migrating; 0 for a fresh database.
	FromVersion uint
	// ToVersion is the schema version after migrating.
	ToVersion uint
}

// Applied reports whether any migration ran.
func (s Status) Applied() bool {
	return s.ToVersion != s.FromVersion
}

/*
RunUp applies all pending UP migrations of the document store.

Parameters:
  - dsn: A libpq-compatible DSN or postgres:// URL
  - migrationsPath: Directory holding the NNNNNN_name.{up,down}.sql files
  - logger: Structured logger for migration events

Returns:
  - Status: Versions before and after
  - error: Missing migrations directory, dirty schema or migration failures
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) (Status, error) {
	if err := checkSource(migrationsPath); err != nil {
		return Status{}, err
	}

	migrator, err := migrate.New("file://"+migrationsPath, pgx5DSN(dsn))
	if err != nil {
		return Status{}, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	from, err := version(migrator)
	if err != nil {
		return Status{}, err
	}
	status := Status{FromVersion: from, ToVersion: from}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_up_to_date",
				slog.String("table", schema.StoreDocument.Table),
				slog.Uint64("version", uint64(from)),
			)
			return status, nil
		}
		return status, fmt.Errorf("migration: up from version %d failed: %w", from, err)
	}

	if status.ToVersion, err = version(migrator); err != nil {
		return status, err
	}

	logger.Info("migration_applied",
		slog.String("table", schema.StoreDocument.Table),
		slog.Uint64("from_version", uint64(status.FromVersion)),
		slog.Uint64("to_version", uint64(status.ToVersion)),
	)
	return status, nil
}

// version returns the current schema version, 0 when none was ever applied.
func version(migrator *migrate.Migrate) (uint, error) {
	current, isDirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migration: failed to get current version: %w", err)
	}
	if isDirty {
		return current, fmt.Errorf("migration: schema is dirty at version %d (manual intervention required)", current)
	}
	return current, nil
}

// checkSource fails fast when the migrations directory is missing, before any connection is made.
func checkSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("migration: migrations directory %q: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("migration: migrations path %q is not a directory", path)
	}
	return nil
}

// pgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme the driver registers.
func pgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return false
}
