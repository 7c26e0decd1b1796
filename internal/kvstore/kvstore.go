// Package kvstore provides access to the shared key-value store that holds
// the round-robin selection counters, the cached repository configurations
// and the GitHub App installation tokens.
//
// All hooky instances that process events for the same repositories must use
// the same store, the increment operation is the only synchronization point
// between concurrently processed webhook deliveries.
package kvstore

import (
	"context"
	"errors"
	"time"
)

const loggerName = "kvstore"

// ErrNotFound is returned by Get when the key does not exist or expired.
var ErrNotFound = errors.New("key not found")

// Store is a networked key-value store.
// Reads racing a write return either the old or the new value, never a
// partially written one.
type Store interface {
	// Incr atomically increments the integer value stored at key by 1
	// and returns the new value. A non-existing key is treated as 0.
	Incr(ctx context.Context, key string) (int64, error)
	// Get returns the value of key. If the key does not exist ErrNotFound
	// is returned.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key without an expiration.
	Set(ctx context.Context, key string, value []byte) error
	// SetEx stores value under key, the key expires after ttl.
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Exists returns true if the key exists and is not expired.
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
