package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Getter is the read half of the store.
type Getter interface {
	Get(ctx context.Context, path string, out any) (bool, error)
}

// Store is the full record store.
type Store interface {
	Getter
	Put(ctx context.Context, path string, data any) error
	Delete(ctx context.Context, path string) error
}

// GetCollection reads every record below path. The tree returns collections
// as an object keyed by id, or as an array when the keys look like indexes;
// both are accepted. Records come back in key order and null entries are
// skipped.
func GetCollection[T any](ctx context.Context, g Getter, path string) ([]T, error) {
	const op = "storage.remote.GetCollection"

	var raw json.RawMessage
	found, err := g.Get(ctx, path, &raw)
	if err != nil {
		return nil, err
	}

	if !found {
		return []T{}, nil
	}

	out, err := decodeCollection[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, path, err)
	}

	return out, nil
}

func decodeCollection[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []T{}, nil
	}

	if raw[0] == '[' {
		var items []*T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}

		out := make([]T, 0, len(items))
		for _, it := range items {
			if it != nil {
				out = append(out, *it)
			}
		}
		return out, nil
	}

	var byKey map[string]*T
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		if byKey[k] != nil {
			out = append(out, *byKey[k])
		}
	}

	return out, nil
}
