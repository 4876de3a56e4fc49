package cache

import (
	"context"
	"time"
)

// NullCache is a no-op cache. Every Get is a miss and every Set is
// discarded. Used when caching is disabled.
type NullCache struct{}

// NewNullCache creates a no-op cache.
func NewNullCache() *NullCache { return &NullCache{} }

// Get implements Cache.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set implements Cache.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete implements Cache.
func (*NullCache) Delete(context.Context, string) error { return nil }

// Close implements Cache.
func (*NullCache) Close() error { return nil }
