package shard

import (
	"github.com/krisalay/file-cache-server/eviction"
)

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the cache.
Instead of having one store behind one lock, the cache can be split into several stores. Each shard:
- Holds the files whose names hash to it
- Has its own store, and therefore its own single lock and its own eviction

A key always lands on the same shard, so everything a store guarantees about
one key still holds. With one shard the cache is exactly one store.
*/
type Shard struct {

	// Store holds the cached files for this shard.
	Store eviction.Store
}

func NewShard(store eviction.Store) *Shard {
	return &Shard{Store: store}
}
