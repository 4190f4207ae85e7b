package cachestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemCacheStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemCacheStore(10, time.Minute)

	// miss is an empty string, not an error
	v, err := s.Get(ctx, "reputation", "user-1")
	assert.NoError(err)
	assert.Equal("", v)

	assert.NoError(s.Set(ctx, "reputation", "user-1", "cached-blob"))
	v, err = s.Get(ctx, "reputation", "user-1")
	assert.NoError(err)
	assert.Equal("cached-blob", v)

	// names partition the keyspace
	v, err = s.Get(ctx, "other", "user-1")
	assert.NoError(err)
	assert.Equal("", v)

	assert.NoError(s.Purge(ctx, "reputation", "user-1"))
	v, err = s.Get(ctx, "reputation", "user-1")
	assert.NoError(err)
	assert.Equal("", v)
}

func TestMemCacheStoreEvictsAtCapacity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemCacheStore(2, time.Minute)
	assert.NoError(s.Set(ctx, "n", "a", "1"))
	assert.NoError(s.Set(ctx, "n", "b", "2"))
	assert.NoError(s.Set(ctx, "n", "c", "3"))

	v, err := s.Get(ctx, "n", "a")
	assert.NoError(err)
	assert.Equal("", v)
	v, err = s.Get(ctx, "n", "c")
	assert.NoError(err)
	assert.Equal("3", v)
}
