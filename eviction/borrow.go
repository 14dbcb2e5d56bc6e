package eviction

import (
	"sync/atomic"

	"github.com/krisalay/file-cache-server/types"
)

/*
Borrow is a scoped claim on a cache entry.

The entry stays valid for reading until Release is called, even if the store
evicts it in the meantime. Release is safe to call more than once; only the
first call has an effect, so the usual pattern is:

	b, ok := store.Lookup(key)
	if !ok {
		...
	}
	defer b.Release()
*/
type Borrow struct {
	entry    *types.CacheEntry
	release  func()
	released atomic.Bool
}

func newBorrow(ent *types.CacheEntry, release func()) *Borrow {
	return &Borrow{entry: ent, release: release}
}

// Detached wraps an entry the caller already owns. Releasing it does nothing
// besides ending the borrow.
func Detached(ent *types.CacheEntry) *Borrow {
	return &Borrow{entry: ent}
}

// Key returns the borrowed entry's key.
func (b *Borrow) Key() string {
	return b.entry.Key
}

// Size returns the borrowed entry's payload length.
func (b *Borrow) Size() int64 {
	return b.entry.Size
}

// Payload returns the borrowed bytes, or nil once the borrow is released.
// The slice must not be modified.
func (b *Borrow) Payload() []byte {
	if b.released.Load() {
		return nil
	}
	return b.entry.Payload
}

// Release ends the borrow.
func (b *Borrow) Release() {
	if !b.released.CompareAndSwap(false, true) {
		return
	}
	if b.release != nil {
		b.release()
	}
}
