// Package kv is the CLI's local key/value store, kept in the kv table of
// the SQLite session database.
package kv

import (
	"context"
)

// Repository is a byte-valued map. Get on a missing key returns
// common.ErrorNotFound.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
