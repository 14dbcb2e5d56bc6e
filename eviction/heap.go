// This file implements the priority-queue store.

package eviction

import (
	"sync"

	"github.com/krisalay/file-cache-server/types"
)

/*
heapStore keeps entries in a fixed array ordered as a min-heap on
LastAccessedAt: a slot is only sifted above its parent when the parent was
accessed strictly later.

The ordering is approximate. A hit restamps the entry with the newest time and
sifts it up, which never moves it, so a touched entry can sit above children
that are older than it. Eviction therefore does not trust the root; it scans
the leaf region instead (see victim).

One mutex guards everything, and a hit keeps it locked until the borrow is
released. Only one goroutine can be sending a cached file at a time.
*/
type heapStore struct {
	mu    sync.Mutex
	slots []*types.CacheEntry
	count int
	cfg   config
}

func newHeapStore(capacity int, cfg config) *heapStore {
	return &heapStore{
		slots: make([]*types.CacheEntry, capacity),
		cfg:   cfg,
	}
}

// Lookup scans the occupied slots. On a hit the lock is handed to the borrow.
func (h *heapStore) Lookup(key string) (*Borrow, bool) {
	h.mu.Lock()

	i := h.indexOf(key)
	if i < 0 {
		h.mu.Unlock()
		return nil, false
	}

	ent := h.slots[i]
	ent.LastAccessedAt = h.cfg.clock.Now()
	h.siftUp(i)

	return newBorrow(ent, h.mu.Unlock), true
}

/*
Insert places ent into the heap.

  - Same key already cached: the old entry is destroyed and ent takes its slot.
  - Room left: ent goes into the next free slot and sifts up.
  - Full: the oldest entry of the leaf region is destroyed and ent takes its slot.
*/
func (h *heapStore) Insert(ent *types.CacheEntry) error {
	if err := h.cfg.validate(ent); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ent.LastAccessedAt = h.cfg.clock.Now()

	if i := h.indexOf(ent.Key); i >= 0 {
		h.cfg.destroyed(h.slots[i])
		h.slots[i] = ent
		h.siftUp(i)
		return nil
	}

	if h.count < len(h.slots) {
		h.slots[h.count] = ent
		h.siftUp(h.count)
		h.count++
		return nil
	}

	i := h.victim()
	old := h.slots[i]
	h.cfg.evicted(old)
	h.cfg.destroyed(old)

	h.slots[i] = ent
	h.siftUp(i)
	return nil
}

/*
victim picks the slot to evict from a full heap.

Only the last count/2+1 slots are examined; the one with the strictly
smallest LastAccessedAt wins and ties keep the later slot. That region holds
every leaf, which is where a min-heap keeps its newest entries, so this is
"least recently used among the leaves" rather than exact LRU.
*/
func (h *heapStore) victim() int {
	last := h.count - 1
	amt := h.count/2 + 1

	oldest := last
	for i := last - 1; i > last-amt && i >= 0; i-- {
		if h.slots[i].LastAccessedAt.Before(h.slots[oldest].LastAccessedAt) {
			oldest = i
		}
	}
	return oldest
}

// siftUp moves slot i toward the root while its parent was accessed later.
func (h *heapStore) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.slots[parent].LastAccessedAt.After(h.slots[i].LastAccessedAt) {
			return
		}
		h.slots[parent], h.slots[i] = h.slots[i], h.slots[parent]
		i = parent
	}
}

func (h *heapStore) indexOf(key string) int {
	for i := 0; i < h.count; i++ {
		if h.slots[i].Key == key {
			return i
		}
	}
	return -1
}

func (h *heapStore) Purge() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := 0; i < h.count; i++ {
		h.cfg.destroyed(h.slots[i])
		h.slots[i] = nil
	}
	h.count = 0
}

func (h *heapStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *heapStore) Cap() int {
	return len(h.slots)
}

// Keys returns keys in slot order; slot 0 is the heap root.
func (h *heapStore) Keys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, h.count)
	for i := 0; i < h.count; i++ {
		out = append(out, h.slots[i].Key)
	}
	return out
}

// Zombies is always zero: a heap entry can only be evicted while nobody holds it.
func (h *heapStore) Zombies() int {
	return 0
}
