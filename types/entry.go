package types

import "time"

/*
CacheEntry is one cached file: its name, its bytes and when it was last used.

Key, Payload and Size never change once the entry is built. LastAccessedAt is
the only mutable field and it is written only while the owning store's lock is
held, so readers that borrowed the entry must not look at it.
*/
type CacheEntry struct {
	Key            string
	Payload        []byte
	Size           int64
	LastAccessedAt time.Time
}

// NewCacheEntry builds an entry for key. The store stamps LastAccessedAt on insert.
func NewCacheEntry(key string, payload []byte) *CacheEntry {
	return &CacheEntry{
		Key:     key,
		Payload: payload,
		Size:    int64(len(payload)),
	}
}

// Validate reports ErrInvalidEntry for entries a store must refuse.
func (e *CacheEntry) Validate() error {
	if e == nil || e.Key == "" || e.Size != int64(len(e.Payload)) {
		return ErrInvalidEntry
	}
	return nil
}
