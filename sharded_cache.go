package cache

import (
	"context"
	"sync/atomic"

	"github.com/krisalay/file-cache-server/api"
	"github.com/krisalay/file-cache-server/engine"
	"github.com/krisalay/file-cache-server/eviction"
	"github.com/krisalay/file-cache-server/shard"
	"github.com/krisalay/file-cache-server/types"
	"golang.org/x/sync/singleflight"
)

var _ api.Cache = (*ShardedCache)(nil)

/*
ShardedCache is the main cache implementation.
This struct is the orchestrator that connects:
- shards, each owning one store
- the engine (disk loading and metrics)
- single-flight loading of missing files
*/
type ShardedCache struct {
	// shards are the actual storage units. Each shard is an independent store with its own lock.
	shards []*shard.Shard

	// engine contains the "rules" of the cache: loader and metrics.
	engine *engine.CacheEngine

	// selector decides which shard a key should go to.
	selector shard.Selector

	// capacity is the maximum number of files in the cache. This is divided across shards.
	capacity int

	// sf makes concurrent misses on the same file share one disk read and one insert.
	sf singleflight.Group

	closed atomic.Bool
}

/*
NewShardedCache builds a cache of capacity files split over shards stores of
the given type. Each shard holds capacity/shards files; the shard count is
lowered to capacity when it is larger. opts are
applied to every store; the engine's metrics are wired in automatically.
*/
func NewShardedCache(
	shards int,
	capacity int,
	storeType eviction.StoreType,
	engine *engine.CacheEngine,
	opts ...eviction.Option,
) *ShardedCache {

	if capacity <= 0 {
		capacity = 1
	}
	// Never more shards than files, so the cache holds at most capacity files.
	shards = max(1, min(shards, capacity))
	perShard := capacity / shards

	storeOpts := append([]eviction.Option{eviction.WithMetrics(engine.Metrics)}, opts...)

	// Create shards
	s := make([]*shard.Shard, shards)
	for i := range s {
		s[i] = shard.NewShard(eviction.NewStore(storeType, perShard, storeOpts...))
	}

	return &ShardedCache{
		shards:   s,
		engine:   engine,
		selector: shard.HashSelector{},
		capacity: perShard * shards,
	}
}

/*
Get returns the file named key, from memory when possible.
*/
func (c *ShardedCache) Get(ctx context.Context, key string) (*eviction.Borrow, error) {
	if c.closed.Load() {
		return nil, types.ErrClosed
	}

	if b, ok := c.Lookup(key); ok {
		return b, nil
	}

	/*
		singleflight ensures that if 100 goroutines request the same missing file,
		only ONE of them reads it from disk and inserts it. The others wait for
		the result. The entry returned to every caller is the one that was read;
		once inserted it is shared with the store, which is safe because its
		payload never changes.
	*/
	v, err, _ := c.sf.Do(key, func() (any, error) {
		ent, err := c.engine.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if err := c.Insert(ent); err != nil {
			// Serve it anyway; it just won't be cached.
			c.engine.Metrics.Uncached()
		}
		return ent, nil
	})
	if err != nil {
		return nil, err
	}

	/*
		Borrow the cached copy so that an insert racing with the send cannot
		destroy it while it is being sent. When the store no longer has it
		(evicted before this point, or never cached) the loaded bytes are
		served through a detached borrow.
	*/
	if b, ok := c.selector.Select(key, c.shards).Store.Lookup(key); ok {
		return b, nil
	}
	return eviction.Detached(v.(*types.CacheEntry)), nil
}

/*
Lookup checks the owning shard's store and records a hit or a miss.
*/
func (c *ShardedCache) Lookup(key string) (*eviction.Borrow, bool) {
	sh := c.selector.Select(key, c.shards)

	b, ok := sh.Store.Lookup(key)
	if ok {
		c.engine.Metrics.Hit()
	} else {
		c.engine.Metrics.Miss()
	}
	return b, ok
}

/*
Insert stores ent in the owning shard.
*/
func (c *ShardedCache) Insert(ent *types.CacheEntry) error {
	if c.closed.Load() {
		return types.ErrClosed
	}
	if ent == nil {
		return types.ErrInvalidEntry
	}
	return c.selector.Select(ent.Key, c.shards).Store.Insert(ent)
}

// Capacity returns the total number of files the cache can hold.
func (c *ShardedCache) Capacity() int {
	return c.capacity
}

func (c *ShardedCache) Len() int {
	n := 0
	for _, sh := range c.shards {
		n += sh.Store.Len()
	}
	return n
}

func (c *ShardedCache) Keys() []string {
	var out []string
	for _, sh := range c.shards {
		out = append(out, sh.Store.Keys()...)
	}
	return out
}

// Zombies returns how many evicted files are still held by readers.
func (c *ShardedCache) Zombies() int {
	n := 0
	for _, sh := range c.shards {
		n += sh.Store.Zombies()
	}
	return n
}

func (c *ShardedCache) Purge() {
	for _, sh := range c.shards {
		sh.Store.Purge()
	}
}

/*
Close gracefully shuts down the cache.
Every entry goes through its final invalidation here; borrowed ones are
destroyed by their last Release.
*/
func (c *ShardedCache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.Purge()
	return nil
}
