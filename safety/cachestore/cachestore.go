// Package cachestore is a small name/key string cache used to keep hot
// reputation snapshots off the primary store. Values expire; a miss returns
// an empty string, not an error.
package cachestore

import (
	"context"
)

type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}
