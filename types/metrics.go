package types

import "sync/atomic"

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.
Implementations are called from many goroutines, sometimes with a store lock held, so they must be fast and safe for concurrent use.
*/
type Metrics interface {

	// Hit is called when a lookup finds the file in memory.
	Hit()

	// Miss is called when the file is not cached and has to be read from disk.
	Miss()

	// Eviction is called when an entry is pushed out because the store is full.
	Eviction()

	// Destroy is called when an entry's memory is finally released. For the
	// refcounted store this can happen long after the eviction.
	Destroy()

	// Uncached is called when a freshly read file could not be inserted and was served without caching.
	Uncached()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.
It lets every component hold a non-nil Metrics without nil checks.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Destroy()  {}
func (NoopMetrics) Uncached() {}

// Counters is a Metrics implementation backed by atomic counters.
type Counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	destroys  atomic.Int64
	uncached  atomic.Int64
}

func (c *Counters) Hit()      { c.hits.Add(1) }
func (c *Counters) Miss()     { c.misses.Add(1) }
func (c *Counters) Eviction() { c.evictions.Add(1) }
func (c *Counters) Destroy()  { c.destroys.Add(1) }
func (c *Counters) Uncached() { c.uncached.Add(1) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Destroys  int64
	Uncached  int64
}

// Snapshot returns a point-in-time copy of the counters.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Destroys:  c.destroys.Load(),
		Uncached:  c.uncached.Load(),
	}
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
