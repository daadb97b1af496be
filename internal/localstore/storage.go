// Package localstore provides the key/value storage that client-side state is persisted to.
// It plays the part a browser's local and session storage play for a web storefront.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key holds nothing.
var ErrNotFound = errors.New("localstore: key not found")

// Storage is a flat key/value store. Values are opaque bytes, normally JSON documents.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the document under key into dst.
// It returns ErrNotFound untouched so callers can tell "empty" from "broken".
func LoadJSON(ctx context.Context, s Storage, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("localstore: decode %q: %w", key, err)
	}
	return nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("localstore: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
