package api

import (
	"context"

	"github.com/krisalay/file-cache-server/eviction"
	"github.com/krisalay/file-cache-server/types"
)

/*
Cache defines the PUBLIC API of the file cache.
This is a contract that guarantees certain behaviors, without exposing internals.
Sharding, the store strategy, disk loading and metrics are hidden behind this interface.
*/
type Cache interface {

	/*
		Get returns the contents of the file named key.

		BEHAVIOR:
		-------------------
		1. If the file is cached:
		   - Return a borrow of the cached entry (cache hit)

		2. If it is not:
		   - Read it from disk, once, however many goroutines ask at the same time
		   - Insert it into the store
		   - Return a borrow of the bytes that were read (cache miss)

		The caller MUST Release the borrow, typically with defer, and must not
		call other Cache methods on the same goroutine before doing so.
		Errors wrap types.ErrNotFound, types.ErrInvalidKey or types.ErrClosed.
	*/
	Get(ctx context.Context, key string) (*eviction.Borrow, error)

	// Lookup returns a borrow if key is cached. It never touches the disk.
	Lookup(key string) (*eviction.Borrow, bool)

	/*
		Insert puts an entry into the cache directly.

		Errors:
		- types.ErrInvalidEntry for an empty key or a size/payload mismatch
		- types.ErrEntryTooLarge when the store will not retain that many bytes
		- types.ErrClosed after Close
	*/
	Insert(ent *types.CacheEntry) error

	// Len returns the number of cached files across all shards.
	Len() int

	// Keys returns the cached file names, shard by shard.
	Keys() []string

	// Purge drops every cached file. Borrowed entries survive until released.
	Purge()

	/*
		Close gracefully shuts down the cache.

		BEHAVIOR:
		---------
		- Purges every shard
		- Makes further Get and Insert calls fail with types.ErrClosed

		Close is safe to call multiple times.
	*/
	Close() error
}
