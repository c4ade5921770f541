// Package storage provides the persistent key-value store used to record
// market snapshots, alerts and order records.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Store is a keyed JSON document store with prefix queries. Writes are
// independent keyed operations, not transactions.
type Store interface {
	// Set marshals value to JSON and stores it under key.
	Set(ctx context.Context, key string, value any) error
	// Get unmarshals the value stored under key into out. Returns
	// ErrNotFound when the key is absent.
	Get(ctx context.Context, key string, out any) error
	// QueryByPrefix returns the raw JSON payloads of all keys with the given
	// prefix for which predicate(key) is true. A nil predicate matches all.
	QueryByPrefix(ctx context.Context, prefix string, predicate func(key string) bool) (map[string][]byte, error)
	Close() error
}
