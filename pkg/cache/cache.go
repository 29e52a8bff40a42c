// Package cache provides the byte cache shared by the HTTP client and the
// render pipeline.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: never stores anything, for --no-cache and tests
//
// # Keys
//
// A [Keyer] builds keys for each cached artifact kind. Block responses are
// keyed by height; layouts and artifacts are keyed by a content hash of the
// values plus every option that changes the output, so a key never serves
// stale geometry.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	// Blocks never change once buried; a day bounds the cost of a reorg.
	TTLBlock    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values with an optional TTL. A zero TTL means
// the entry does not expire.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
