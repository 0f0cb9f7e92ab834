// Package settings persists the non-secret connection parameters between
// runs. Store is the key-value contract, with a SQLite implementation for
// real use and an in-memory one for tests and --ephemeral runs; Service maps
// models.Settings onto it.
package settings

import "context"

// Store is a string key-value store.
//
// Get returns only the keys that exist. Set upserts every pair atomically.
// Clear removes everything.
type Store interface {
	Get(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}
