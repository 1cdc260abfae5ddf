// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/taibuivan/bookworm/internal/core/ident"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/ctxutil"
	"github.com/taibuivan/bookworm/internal/platform/dberr"
)

// ISOTimeLayout renders UTC timestamps with millisecond precision,
// e.g. "2024-03-01T09:30:00.000Z".
const ISOTimeLayout = "2006-01-02T15:04:05.000Z"

// # Gateway

// Gateway is the single read/write path from the domain to a [Store].
type Gateway struct {
	store  Store
	logger *slog.Logger
}

// NewGateway wraps store. A nil logger falls back to [slog.Default].
func NewGateway(store Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: store, logger: logger}
}

/*
FetchEntity loads one entity of the given kind.

Description: The id prefix is checked before the collection is touched. Top-level
timestamps in the result are normalized to ISO-8601 strings; nested ones are left
as store-native values.

Parameters:
  - context: context.Context
  - kind: ident.Kind
  - id: string

Returns:
  - Record: Normalized document body
  - error: KIND_MISMATCH, NOT_FOUND, CORRUPT_RECORD or store failures
*/
func (gateway *Gateway) FetchEntity(context context.Context, kind ident.Kind, id string) (Record, error) {
	if err := ident.AssertKind(id, kind); err != nil {
		return nil, err
	}

	snapshot, err := gateway.store.Get(context, kind.Collection(), id)
	if err != nil {
		ctxutil.LoggerOr(context, gateway.logger).Error("document_fetch_failed",
			slog.String("collection", kind.Collection()),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("fetch %s %s: %w", kind, id, err)
	}

	if !snapshot.Exists {
		return nil, apperr.NotFound(fmt.Sprintf("%s %s", kind.Title(), id))
	}

	if snapshot.Data == nil {
		return nil, apperr.CorruptRecord(fmt.Sprintf("%s %s", kind.Title(), id), errors.New("document has no data"))
	}

	return Normalize(snapshot.Data), nil
}

/*
UpdateEntity runs a transactional read-modify-write on one entity.

Description: mutate receives the normalized current body. Absence maps to
NOT_FOUND and an empty body to CORRUPT_RECORD, mirroring [Gateway.FetchEntity].
*/
func (gateway *Gateway) UpdateEntity(context context.Context, kind ident.Kind, id string, mutate MutateFunc) error {
	if err := ident.AssertKind(id, kind); err != nil {
		return err
	}

	resource := fmt.Sprintf("%s %s", kind.Title(), id)

	err := gateway.store.Update(context, kind.Collection(), id, func(current Record) (Record, error) {
		if current == nil {
			return nil, apperr.CorruptRecord(resource, errors.New("document has no data"))
		}
		return mutate(Normalize(current))
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, dberr.ErrNoDocument):
		return apperr.NotFound(resource)
	case apperr.IsAppError(err):
		return err
	default:
		return fmt.Errorf("update %s %s: %w", kind, id, err)
	}
}

// PutEntity creates or replaces an entity after asserting the id kind.
func (gateway *Gateway) PutEntity(context context.Context, kind ident.Kind, id string, data Record) error {
	if err := ident.AssertKind(id, kind); err != nil {
		return err
	}
	if err := gateway.store.Put(context, kind.Collection(), id, data); err != nil {
		return fmt.Errorf("put %s %s: %w", kind, id, err)
	}
	return nil
}

// Ping checks the underlying store.
func (gateway *Gateway) Ping(context context.Context) error {
	return gateway.store.Ping(context)
}

// # Normalization

// Normalize replaces top-level [time.Time] values with ISO-8601 strings in UTC.
// Values nested in maps or slices are not visited. The input is not modified.
func Normalize(data Record) Record {
	if data == nil {
		return nil
	}
	out := make(Record, len(data))
	for key, value := range data {
		if stamp, ok := value.(time.Time); ok {
			out[key] = stamp.UTC().Format(ISOTimeLayout)
			continue
		}
		out[key] = value
	}
	return out
}

// # Decoding

// Decode converts a record into the struct pointed to by out, matching keys
// on the struct's json tags. Unknown keys are ignored.
func Decode(data Record, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: integralNumbers,
	})
	if err != nil {
		return fmt.Errorf("docstore: build decoder: %w", err)
	}

	if err := decoder.Decode(map[string]any(data)); err != nil {
		return fmt.Errorf("docstore: decode record: %w", err)
	}
	return nil
}

// integralNumbers refuses to truncate a fractional JSON number into an
// integer field.
func integralNumbers(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	value := reflect.ValueOf(data).Float()
	if value != math.Trunc(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("docstore: %v is not an integer", value)
	}
	return data, nil
}
