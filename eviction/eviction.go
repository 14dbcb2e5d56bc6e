package eviction

/*
This file defines the contract every cache store follows and how a store is picked.
*/

import (
	"fmt"
	"strings"

	"github.com/krisalay/file-cache-server/types"
)

/*
Store is a bounded, keyed container of cache entries.

Both implementations hold at most Cap() reachable entries and only evict when
an Insert arrives while they are full. They differ in how much a cache hit
serialises everybody else:

  - Heap keeps its single lock for as long as the returned Borrow is held.
  - RefcountedList drops its lock before Lookup returns; the entry is kept
    alive by a reference count, not by the lock.

A Borrow returned by Lookup must be released exactly once. Calling Insert,
Purge, Len, Keys or Zombies on a Heap store from a goroutine that still holds
one of its borrows deadlocks.
*/
type Store interface {

	// Lookup returns a borrow of the entry stored under key.
	// A hit restamps the entry's last access time.
	Lookup(key string) (*Borrow, bool)

	// Insert stores ent, replacing any entry with the same key and evicting one
	// entry if the store is full. The store takes ownership of ent.
	Insert(ent *types.CacheEntry) error

	// Purge invalidates every entry. Entries that are still borrowed are
	// destroyed when their last borrower releases them.
	Purge()

	// Len returns the number of reachable entries.
	Len() int

	// Cap returns the capacity the store was built with.
	Cap() int

	// Keys returns the keys of reachable entries in storage order.
	Keys() []string

	// Zombies returns how many evicted entries are still alive for borrowers.
	Zombies() int
}

// StoreType is a simple identifier for supported store strategies.
type StoreType string

const (
	// Heap is a min-heap over last access time guarded by one lock that is
	// held across the whole use of a hit.
	Heap StoreType = "HEAP"

	// RefcountedList is an insertion-ordered doubly linked list whose nodes
	// outlive eviction while they are borrowed.
	RefcountedList StoreType = "REFCOUNT"
)

// ParseStoreType maps a user supplied name to a StoreType.
func ParseStoreType(s string) (StoreType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Heap), "PQ", "NAIVE":
		return Heap, nil
	case string(RefcountedList), "REFCOUNTED", "LIST", "DEQUE":
		return RefcountedList, nil
	default:
		return "", fmt.Errorf("unknown store type %q", s)
	}
}

// NewStore is a small factory function.
// Given a StoreType and a capacity, it creates the correct store.
func NewStore(t StoreType, capacity int, opts ...Option) Store {
	if capacity <= 0 {
		panic("store capacity must be positive")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	switch t {
	case Heap:
		return newHeapStore(capacity, cfg)
	case RefcountedList:
		return newRefcountedList(capacity, cfg)
	default:
		panic("unknown store type")
	}
}

// Compile-time interface assertions.
var (
	_ Store = (*heapStore)(nil)
	_ Store = (*refcountedList)(nil)
)
