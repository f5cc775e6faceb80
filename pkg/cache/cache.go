// Package cache stores derived results (resolved netlists and routing
// results) keyed by a hash of everything they were derived from.
//
// Routing is deterministic, so a key built from the board, the nets and the
// routing options identifies its result exactly. Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for API servers
//
// Keys come from a [Keyer]; [NewScopedKeyer] namespaces them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	// TTLNets is how long resolved netlists are kept.
	TTLNets = 7 * 24 * time.Hour

	// TTLRoute is how long routing results are kept.
	TTLRoute = 7 * 24 * time.Hour
)

// NullCache disables caching: every Get misses and every write is dropped.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
