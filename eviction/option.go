package eviction

import "github.com/krisalay/file-cache-server/types"

type config struct {
	clock         types.Clock
	metrics       types.Metrics
	maxEntryBytes int64
	onEvict       func(*types.CacheEntry)
	onDestroy     func(*types.CacheEntry)
}

func defaultConfig() config {
	return config{
		clock:   types.RealClock{},
		metrics: types.NoopMetrics{},
	}
}

// Option configures a Store.
type Option func(*config)

// WithClock sets the clock used to stamp last access times.
func WithClock(clk types.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithMetrics sets where evictions and destructions are reported.
func WithMetrics(m types.Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithMaxEntryBytes makes Insert refuse payloads larger than n bytes with
// ErrEntryTooLarge. Zero or less means no limit.
func WithMaxEntryBytes(n int64) Option {
	return func(c *config) {
		c.maxEntryBytes = n
	}
}

// OnEvict sets a callback invoked, with the store lock held, when an entry is
// evicted to make room.
func OnEvict(fn func(*types.CacheEntry)) Option {
	return func(c *config) {
		c.onEvict = fn
	}
}

// OnDestroy sets a callback invoked, with the store lock held, exactly once
// per entry when the store lets go of it for good.
func OnDestroy(fn func(*types.CacheEntry)) Option {
	return func(c *config) {
		c.onDestroy = fn
	}
}

func (c *config) validate(ent *types.CacheEntry) error {
	if err := ent.Validate(); err != nil {
		return err
	}
	if c.maxEntryBytes > 0 && ent.Size > c.maxEntryBytes {
		return types.ErrEntryTooLarge
	}
	return nil
}

func (c *config) evicted(ent *types.CacheEntry) {
	c.metrics.Eviction()
	if c.onEvict != nil {
		c.onEvict(ent)
	}
}

func (c *config) destroyed(ent *types.CacheEntry) {
	c.metrics.Destroy()
	if c.onDestroy != nil {
		c.onDestroy(ent)
	}
}
