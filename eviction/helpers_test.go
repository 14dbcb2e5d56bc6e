package eviction

import (
	"strings"
	"sync"
	"time"

	"github.com/krisalay/file-cache-server/types"
)

// tickClock advances by one millisecond on every reading, so every stamp is distinct and ascending.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickClock() *tickClock {
	return &tickClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// seqClock returns the given times in order, then keeps returning the last one.
type seqClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *seqClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

// destroyLog records every entry a store destroys.
type destroyLog struct {
	mu      sync.Mutex
	entries map[*types.CacheEntry]int
	keys    []string
}

func newDestroyLog() *destroyLog {
	return &destroyLog{entries: make(map[*types.CacheEntry]int)}
}

func (d *destroyLog) record(ent *types.CacheEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[ent]++
	d.keys = append(d.keys, ent.Key)
}

func (d *destroyLog) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.keys)
}

func (d *destroyLog) times(ent *types.CacheEntry) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries[ent]
}

func (d *destroyLog) destroyedKeys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.keys...)
}

// payloadFor builds a payload that can be checked against its key later.
func payloadFor(key string, size int) []byte {
	if size <= 0 {
		return []byte{}
	}
	if key == "" {
		key = "x"
	}
	return []byte(strings.Repeat(key, size/len(key)+1)[:size])
}

func entry(key string, size int) *types.CacheEntry {
	return types.NewCacheEntry(key, payloadFor(key, size))
}
