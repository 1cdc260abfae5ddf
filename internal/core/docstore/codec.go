// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampKey tags an encoded timestamp inside JSON bodies so that it can be
// restored as a [time.Time] on read: {"$timestamp": "2024-01-02T03:04:05Z"}.
const timestampKey = "$timestamp"

// MarshalRecord encodes data as JSON, tagging every [time.Time] at any depth.
func MarshalRecord(data Record) ([]byte, error) {
	if data == nil {
		return []byte("null"), nil
	}
	payload, err := json.Marshal(encodeValue(map[string]any(data)))
	if err != nil {
		return nil, fmt.Errorf("docstore: encode record: %w", err)
	}
	return payload, nil
}

// UnmarshalRecord decodes a JSON body produced by [MarshalRecord].
// A JSON null yields a nil record.
func UnmarshalRecord(payload []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("docstore: decode record: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return Record(decodeValue(raw).(map[string]any)), nil
}

// encodeValue replaces timestamps with their tagged form.
func encodeValue(value any) any {
	switch typed := value.(type) {
	case time.Time:
		return map[string]any{timestampKey: typed.UTC().Format(time.RFC3339Nano)}
	case Record:
		return encodeValue(map[string]any(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = encodeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return value
	}
}

// decodeValue restores tagged timestamps.
func decodeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if stamp, ok := asTimestamp(typed); ok {
			return stamp
		}
		for key, item := range typed {
			typed[key] = decodeValue(item)
		}
		return typed
	case []any:
		for i, item := range typed {
			typed[i] = decodeValue(item)
		}
		return typed
	default:
		return value
	}
}

func asTimestamp(value map[string]any) (time.Time, bool) {
	if len(value) != 1 {
		return time.Time{}, false
	}
	text, ok := value[timestampKey].(string)
	if !ok {
		return time.Time{}, false
	}
	stamp, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, false
	}
	return stamp, true
}

// cloneValue deep-copies maps and slices so callers cannot alias stored state.
func cloneValue(value any) any {
	switch typed := value.(type) {
	case Record:
		return Record(cloneValue(map[string]any(typed)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// cloneRecord is [cloneValue] for a whole record.
func cloneRecord(data Record) Record {
	if data == nil {
		return nil
	}
	return Record(cloneValue(map[string]any(data)).(map[string]any))
}
