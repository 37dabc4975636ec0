package cache

import (
	"context"
	"time"
)

// NullCache disables caching: every Get misses and writes are dropped.
// The CLI uses it for --no-cache and the "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

// Get reports a miss.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set drops data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete has nothing to remove.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close releases nothing.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
