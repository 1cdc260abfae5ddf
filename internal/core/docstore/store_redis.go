// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookworm/internal/platform/constants"
	"github.com/taibuivan/bookworm/internal/platform/dberr"
)

// maxTxAttempts bounds optimistic retries when a watched key changes mid-update.
const maxTxAttempts = 5

// redisEnvelope is the JSON string stored under each document key.
type redisEnvelope struct {
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// RedisStore implements [Store] with one JSON string per document under
// doc:{collection}:{id}.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore constructs a Redis backed document store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func documentKey(collection, id string) string {
	return constants.RedisPrefixDocument + collection + ":" + id
}

// Get implements [Store].
func (store *RedisStore) Get(context context.Context, collection, id string) (Snapshot, error) {
	raw, err := store.client.Get(context, documentKey(collection, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("redis: get document %s/%s: %w", collection, id, err)
	}

	envelope, data, err := decodeEnvelope(raw)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Exists: true, Data: withTimestamps(data, envelope.CreatedAt, envelope.UpdatedAt)}, nil
}

// Put implements [Store]. The creation time of an existing document is kept.
func (store *RedisStore) Put(context context.Context, collection, id string, data Record) error {
	key := documentKey(collection, id)
	now := store.now().UTC()

	return store.transact(context, key, func(tx *redis.Tx) error {
		created := now
		raw, err := tx.Get(context, key).Bytes()
		switch {
		case err == nil:
			if envelope, _, decodeErr := decodeEnvelope(raw); decodeErr == nil && !envelope.CreatedAt.IsZero() {
				created = envelope.CreatedAt
			}
		case !errors.Is(err, redis.Nil):
			return fmt.Errorf("redis: read document %s/%s: %w", collection, id, err)
		}

		return store.write(context, tx, key, data, created, now)
	})
}

/*
Update performs an optimistic read-modify-write using WATCH/MULTI.

Description: The key is watched while the current body is read and mutated. If
another writer touches the key before EXEC the transaction fails with
[redis.TxFailedErr] and is retried up to maxTxAttempts times.
*/
func (store *RedisStore) Update(context context.Context, collection, id string, mutate MutateFunc) error {
	key := documentKey(collection, id)

	return store.transact(context, key, func(tx *redis.Tx) error {
		raw, err := tx.Get(context, key).Bytes()
		if err != nil {
			return dberr.Wrap(err, fmt.Sprintf("redis: read document %s/%s", collection, id))
		}

		envelope, current, err := decodeEnvelope(raw)
		if err != nil {
			return err
		}

		next, err := mutate(withTimestamps(current, envelope.CreatedAt, envelope.UpdatedAt))
		if err != nil {
			return err
		}

		return store.write(context, tx, key, next, envelope.CreatedAt, store.now().UTC())
	})
}

// Ping implements [Store].
func (store *RedisStore) Ping(context context.Context) error {
	return store.client.Ping(context).Err()
}

func (store *RedisStore) transact(context context.Context, key string, fn func(tx *redis.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = store.client.Watch(context, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis: document %s kept changing: %w", key, err)
}

func (store *RedisStore) write(context context.Context, tx *redis.Tx, key string, data Record, created, updated time.Time) error {
	body, err := MarshalRecord(stripReserved(data))
	if err != nil {
		return err
	}

	payload, err := json.Marshal(redisEnvelope{Data: body, CreatedAt: created, UpdatedAt: updated})
	if err != nil {
		return fmt.Errorf("redis: encode envelope: %w", err)
	}

	_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Set(context, key, payload, 0)
		return nil
	})
	return err
}

func decodeEnvelope(raw []byte) (redisEnvelope, Record, error) {
	var envelope redisEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return envelope, nil, fmt.Errorf("redis: decode envelope: %w", err)
	}

	data, err := decodeBody(envelope.Data)
	if err != nil {
		return envelope, nil, err
	}
	return envelope, data, nil
}
