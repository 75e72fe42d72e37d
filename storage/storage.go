// Package storage holds the stores job results can be persisted to once a
// job is done. Values are grouped by bucket and key.
package storage

import "context"

type Storage interface {
	// Get returns the values appended under key, or nil.
	Get(ctx context.Context, bucket string, key string) ([]string, error)
	// GetKeys returns the keys of bucket in ascending order.
	GetKeys(ctx context.Context, bucket string) ([]string, error)
	Append(ctx context.Context, bucket string, key string, vals []string) error
}
