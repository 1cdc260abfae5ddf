// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// ErrNoDocument is returned by store drivers when a queried document doesn't exist.
var ErrNoDocument = errors.New("document does not exist")

// Wrap inspects a driver error and classifies it.
//
// Missing-row sentinels from pgx and go-redis collapse into [ErrNoDocument] so
// callers can treat absence uniformly; everything else is wrapped with the action.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, redis.Nil) {
		return ErrNoDocument
	}

	// 2. Everything else keeps its cause for server-side logging
	return fmt.Errorf("%s: %w", action, err)
}
