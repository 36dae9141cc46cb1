package blobcache

import (
	"context"
	"fmt"
)

// Cache stores and retrieves opaque computed results keyed by a logical key.
// It is a thin idempotency layer over a TaggedStore: Get serves a previously
// computed result when one exists, and Put upserts under the same key.
type Cache struct {
	store TaggedStore
}

// NewCache wraps a TaggedStore.
func NewCache(store TaggedStore) *Cache {
	return &Cache{store: store}
}

// Get returns the cached result for logicalKey. The second return value
// reports whether a result was present. When the backing store holds more
// than one object under the key's tag, Get fails with ErrAmbiguousTag
// rather than picking one.
func (c *Cache) Get(ctx context.Context, logicalKey string) ([]byte, bool, error) {
	keys, err := c.store.FindByTag(ctx, logicalKey)
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup %q: %w", logicalKey, err)
	}
	if len(keys) == 0 {
		return nil, false, nil
	}
	if len(keys) > 1 {
		return nil, false, fmt.Errorf("cache lookup %q: %w", logicalKey, ErrAmbiguousTag)
	}
	data, err := c.store.Read(ctx, keys[0])
	if err != nil {
		return nil, false, fmt.Errorf("cache read %q: %w", logicalKey, err)
	}
	return data, true, nil
}

// Put stores a computed result under logicalKey, overwriting any prior value
// (never versioned). The object key equals the logical key, so repeated
// writes replace the same object.
func (c *Cache) Put(ctx context.Context, logicalKey string, data []byte) error {
	if err := c.store.Put(ctx, logicalKey, data, logicalKey); err != nil {
		return fmt.Errorf("cache write %q: %w", logicalKey, err)
	}
	return nil
}
