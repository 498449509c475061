// Package cache provides the TTL key/value stores behind the proxy routes.
//
// Entries are opaque bytes (JSON-encoded responses). A store only returns an
// entry while it is younger than the TTL it was written with; expiry is the
// store's job, not the caller's.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a TTL cache shared by the weather, water-level and fire-ban services.
type Store interface {
	// Get returns the value for key. ok is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key for ttl. Later writes replace earlier ones.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// GetJSON reads key and decodes it into a T. A value that no longer decodes
// is reported as a miss so the caller recomputes it.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var zero T
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false, nil
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key for ttl.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value %q: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
