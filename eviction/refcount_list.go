// This file implements the refcounted deque store.

package eviction

import (
	"sync"

	"github.com/krisalay/file-cache-server/types"
)

// listNode holds ONE cached entry inside the deque.
type listNode struct {
	entry *types.CacheEntry

	// prev points to the node inserted just after this one
	prev *listNode

	// next points to the node inserted just before this one
	next *listNode

	// valid is true while the node is reachable from head/tail.
	valid bool

	// refs counts borrowers currently reading entry.
	refs int
}

/*
refcountedList keeps entries newest-first by insertion time. Lookups do not
reorder anything, so eviction is strict insertion order: the tail goes.

The lock covers the scan, the reference count and any splice. It is never held
while a borrower reads the payload. An evicted node that is still borrowed
stays alive as a zombie (valid=false, refs>0), unreachable from the list, until
the last borrower releases it.
*/
type refcountedList struct {
	mu sync.Mutex

	// head is the most recently inserted node
	head *listNode

	// tail is the oldest node and the next to be evicted
	tail *listNode

	size     int
	capacity int
	zombies  int
	cfg      config
}

func newRefcountedList(capacity int, cfg config) *refcountedList {
	return &refcountedList{capacity: capacity, cfg: cfg}
}

// Lookup takes a reference on the matching node and returns with the lock released.
func (l *refcountedList) Lookup(key string) (*Borrow, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.find(key)
	if n == nil {
		return nil, false
	}

	n.refs++
	n.entry.LastAccessedAt = l.cfg.clock.Now()

	return newBorrow(n.entry, func() { l.release(n) }), true
}

// release drops one reference. The last reference on an invalid node destroys it.
func (l *refcountedList) release(n *listNode) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n.refs--
	if n.refs == 0 && !n.valid {
		l.zombies--
		l.destroy(n)
	}
}

/*
Insert splices ent in at the head.

  - Same key already cached: the old node is invalidated first.
  - Full: the tail is detached and invalidated. It is destroyed now if nobody
    borrows it, otherwise on its last release.
*/
func (l *refcountedList) Insert(ent *types.CacheEntry) error {
	if err := l.cfg.validate(ent); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ent.LastAccessedAt = l.cfg.clock.Now()

	if old := l.find(ent.Key); old != nil {
		l.invalidate(old)
	}

	if l.size == l.capacity {
		old := l.tail
		l.cfg.evicted(old.entry)
		l.invalidate(old)
	}

	l.addFront(&listNode{entry: ent, valid: true})
	return nil
}

func (l *refcountedList) find(key string) *listNode {
	for n := l.head; n != nil; n = n.next {
		if n.entry.Key == key {
			return n
		}
	}
	return nil
}

// addFront makes n the new head.
func (l *refcountedList) addFront(n *listNode) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n

	// If the list was empty, head and tail are the same
	if l.tail == nil {
		l.tail = n
	}
	l.size++
}

// unlink removes n from the list, fixing head and tail as needed.
func (l *refcountedList) unlink(n *listNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	l.size--
}

// invalidate detaches a valid node and either destroys it or leaves it to its borrowers.
func (l *refcountedList) invalidate(n *listNode) {
	l.unlink(n)
	n.valid = false

	if n.refs == 0 {
		l.destroy(n)
		return
	}
	l.zombies++
}

func (l *refcountedList) destroy(n *listNode) {
	l.cfg.destroyed(n.entry)
	n.entry = nil
}

func (l *refcountedList) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.head != nil {
		l.invalidate(l.head)
	}
}

func (l *refcountedList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *refcountedList) Cap() int {
	return l.capacity
}

// Keys returns keys newest first.
func (l *refcountedList) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, l.size)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.entry.Key)
	}
	return out
}

func (l *refcountedList) Zombies() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zombies
}
