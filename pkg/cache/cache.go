// Package cache provides byte-oriented caching for replay results and
// rendered artifacts.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so CLI and server agree on the layout of
// the key space:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ReplayKey(cache.Hash(doc), cache.ReplayKeyOpts{EventsHash: cache.Hash(events)})
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value for key. The bool is false on a miss; expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	ReplayTTL   = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

// Get always misses.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (NullCache) Delete(ctx context.Context, key string) error { return nil }

func (NullCache) Close() error { return nil }
