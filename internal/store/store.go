// Package store provides the persistent key-value store the data access layer
// keeps its repository snapshots in.
//
// A Store holds serialized JSON documents under string keys. Backends are
// durable (SQLBackend over sqlite or mysql) or process-local (MemoryBackend).
// An Origin shares one backend between several Clients, the way browser tabs
// share localStorage, and tells every other Client when a key changes.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/at-ishikawa/elearn/internal/apperr"
)

//go:generate mockgen -source=store.go -destination=../mocks/store/mock_store.go -package=mock_store Store

// Store is a key-value store of serialized documents.
type Store interface {
	// Get returns the document under key. The bool is false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set overwrites the document under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Clear deletes every key.
	Clear(ctx context.Context) error
	// Keys lists every key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// Change describes a write made through another Client of the same Origin.
// Key is empty when the whole store was cleared, Value is nil when the key was removed.
type Change struct {
	Key    string
	Value  []byte
	Source string
}

// ErrCorrupt marks a document that was read but could not be decoded.
// Errors returned by the backend itself never carry it.
var ErrCorrupt = errors.New("corrupt document")

// IsCorrupt reports whether err came from decoding a stored document.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}

// GetJSON decodes the document under key into v.
// It returns false without touching v when the key is absent.
// A decode failure wraps ErrCorrupt; a backend failure is returned as is.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return false, apperr.Store(fmt.Sprintf("corrupt document under %q", key), fmt.Errorf("%w: %w", ErrCorrupt, err))
	}
	return true, nil
}

// SetJSON serializes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperr.Store(fmt.Sprintf("serialize document for %q", key), err)
	}
	return s.Set(ctx, key, raw)
}
