// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ingest loads book, chapter and user metadata and page files into the
stores read by the API.

Metadata files are YAML holding either one mapping or a list of mappings. Each
mapping becomes one document; a missing "id" is minted for the target kind and an
existing one must carry that kind's prefix. PDFs are split into one page file per
page under "{bookId}/page{n}.pdf".
*/
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/bookworm/internal/core/docstore"
	"github.com/taibuivan/bookworm/internal/core/ident"
)

// FieldID is the document key holding the entity id.
const FieldID = "id"

// ErrNoRecords is returned for a metadata file without any document.
var ErrNoRecords = errors.New("ingest: file holds no records")

// Writer persists entities. Implemented by [docstore.Gateway].
type Writer interface {
	PutEntity(context context.Context, kind ident.Kind, id string, data docstore.Record) error
}

// Loader writes metadata files into the document store.
type Loader struct {
	writer Writer
	logger *slog.Logger
}

// NewLoader constructs a Loader.
func NewLoader(writer Writer, logger *slog.Logger) *Loader {
	return &Loader{writer: writer, logger: logger}
}

/*
ParseRecords decodes a YAML stream into documents.

Description: A top-level mapping yields one record, a top-level sequence yields
one record per item. Any other shape is rejected.
*/
func ParseRecords(reader io.Reader) ([]docstore.Record, error) {
	var document any
	if err := yaml.NewDecoder(reader).Decode(&document); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRecords
		}
		return nil, fmt.Errorf("ingest: decode yaml: %w", err)
	}

	switch typed := document.(type) {
	case map[string]any:
		return []docstore.Record{typed}, nil
	case []any:
		if len(typed) == 0 {
			return nil, ErrNoRecords
		}
		records := make([]docstore.Record, len(typed))
		for i, item := range typed {
			mapping, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ingest: item %d is %T, expected a mapping", i, item)
			}
			records[i] = mapping
		}
		return records, nil
	case nil:
		return nil, ErrNoRecords
	default:
		return nil, fmt.Errorf("ingest: top-level %T, expected a mapping or a list", document)
	}
}

/*
Load parses reader and writes every record as an entity of kind.

Parameters:
  - context: Bounds the store writes
  - kind: Target entity kind; selects the collection
  - reader: YAML stream

Returns:
  - []string: Ids written, in file order
  - error: Parse failures, KIND_MISMATCH for a foreign id, or store errors.
    Records before the failing one stay written.
*/
func (loader *Loader) Load(context context.Context, kind ident.Kind, reader io.Reader) ([]string, error) {
	records, err := ParseRecords(reader)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for i, record := range records {
		id, err := recordID(kind, record)
		if err != nil {
			return ids, fmt.Errorf("ingest: record %d: %w", i, err)
		}

		if err := loader.writer.PutEntity(context, kind, id, record); err != nil {
			return ids, fmt.Errorf("ingest: record %d: %w", i, err)
		}
		ids = append(ids, id)

		loader.logger.Info("record_ingested", slog.String("kind", string(kind)), slog.String("id", id))
	}
	return ids, nil
}

// recordID returns the record's id, minting and storing one when absent.
func recordID(kind ident.Kind, record docstore.Record) (string, error) {
	switch value := record[FieldID].(type) {
	case nil:
		id, err := ident.Generate(kind)
		if err != nil {
			return "", err
		}
		record[FieldID] = id
		return id, nil
	case string:
		if err := ident.AssertKind(value, kind); err != nil {
			return "", err
		}
		return value, nil
	default:
		return "", fmt.Errorf("id is %T, expected a string", value)
	}
}
