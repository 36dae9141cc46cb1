// Package blobcache implements the idempotent-result cache that wraps the
// expensive, non-deterministic external analysis calls. Computed artifacts
// are stored as opaque blobs in a tagged object store and addressed by an
// application-chosen logical key carried in a single object tag.
//
// The cache has no expiry: correctness rests on the caller's guarantee that
// a logical key always denotes the same physical input. Reads and writes are
// not coordinated, so two concurrent first-time computations for the same
// key can both write; the later write wins. There is no stampede protection.
package blobcache

import (
	"context"
	"errors"
	"sync"
)

// TagName is the object tag under which the logical key is stored.
const TagName = "LogicalKey"

// ErrAmbiguousTag is returned when more than one stored object carries the
// same logical-key tag. This indicates concurrent uncoordinated writers and
// must never be silently resolved to either object.
var ErrAmbiguousTag = errors.New("more than one object found for logical key")

// ErrObjectNotFound is returned by Read when the named object is absent.
var ErrObjectNotFound = errors.New("object not found")

// TaggedStore is the minimal contract the cache needs from an object store:
// tagged upload (upsert), lookup of object keys by tag value, and content
// read. Implementations must report every tag match from FindByTag so the
// cache can detect ambiguity.
type TaggedStore interface {
	// Put uploads data under key with the logical-key tag set to tagValue,
	// overwriting any existing object with the same key.
	Put(ctx context.Context, key string, data []byte, tagValue string) error

	// FindByTag returns the keys of all objects whose logical-key tag equals
	// tagValue. An empty result is not an error.
	FindByTag(ctx context.Context, tagValue string) ([]string, error)

	// Read returns the content of the object stored under key, or
	// ErrObjectNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
}

// MemoryStore is an in-process TaggedStore for tests and single-node dev
// deployments. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	tags    map[string]string // key -> tag value
}

// NewMemoryStore returns an empty in-memory tagged store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		tags:    make(map[string]string),
	}
}

// Put stores a copy of data under key with the given tag value.
func (m *MemoryStore) Put(_ context.Context, key string, data []byte, tagValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = buf
	m.tags[key] = tagValue
	return nil
}

// FindByTag returns every object key tagged with tagValue.
func (m *MemoryStore) FindByTag(_ context.Context, tagValue string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for key, tag := range m.tags {
		if tag == tagValue {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Read returns a copy of the object content, or ErrObjectNotFound.
func (m *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
