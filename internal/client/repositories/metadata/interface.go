// Package metadata is the local key/value table the client keeps in its
// SQLite database. The token store keeps the session credential and the
// cached identity here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value stored under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set inserts or replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
