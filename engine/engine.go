package engine

import (
	"context"
	"fmt"

	"github.com/krisalay/file-cache-server/types"
)

/*
CacheEngine is the policy layer of the file cache.

It decides:
- How a missing file is read (Loader)
- How events are reported (Metrics)
- How a freshly read file becomes a cache entry

It does NOT:
- Store data
- Handle sharding
- Handle locking
- Decide eviction order
*/
type CacheEngine struct {

	// Loader reads a file from disk when the cache does NOT have it.
	Loader types.Loader

	// Metrics is how we keep track of what the cache is doing.
	// Hits, misses, evictions, destructions, uncached inserts.
	Metrics types.Metrics
}

/*
NewCacheEngine creates a CacheEngine.
*/
func NewCacheEngine(loader types.Loader, metrics types.Metrics) *CacheEngine {

	// Ensure metrics is always non-nil
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &CacheEngine{
		Loader:  loader,
		Metrics: metrics,
	}
}

/*
Load reads key through the configured Loader and wraps the result in a new
entry. The entry is not stamped; the store does that on insert.
*/
func (e *CacheEngine) Load(ctx context.Context, key string) (*types.CacheEntry, error) {
	if e.Loader == nil {
		return nil, fmt.Errorf("load %q: no loader configured: %w", key, types.ErrNotFound)
	}

	payload, err := e.Loader.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return types.NewCacheEntry(key, payload), nil
}
