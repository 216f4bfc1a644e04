// Package strcache records, for recently decoded strings, that their bytes were already
// confirmed well-formed UTF-8, keyed by xxHash64, so a Reader decoding the same topic/type
// name repeatedly in a session can skip re-running utf8.Valid on every call.
//
// Grounded on the teacher's internal/hash package (xxhash.Sum64String as a fast,
// allocation-free map key for strings) generalized from metric-name identification to a
// small fixed-capacity LRU.
package strcache

import (
	"container/list"

	"github.com/cespare/xxhash/v2"
)

// entry is the value stored per cached string.
type entry struct {
	key     uint64
	str     string
	byteLen int
}

// Cache is a fixed-capacity, xxHash64-keyed LRU of string -> UTF-8 byte length.
//
// Not safe for concurrent use; a cdr.Reader that opts into a Cache (WithStringCache) uses
// it without locking, consistent with the Reader's own single-threaded-instance contract.
type Cache struct {
	capacity int
	entries  map[uint64]*list.Element
	order    *list.List
}

// New creates a Cache holding up to capacity entries. A non-positive capacity disables
// caching: Get always misses and Put is a no-op.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element, max(capacity, 0)),
		order:    list.New(),
	}
}

// Get reports whether s was previously confirmed well-formed UTF-8, returning its byte
// length as recorded by Put. A hash collision between two different strings is resolved
// by verifying the stored string still equals s; on mismatch, Get reports a miss rather
// than a false positive.
func (c *Cache) Get(s string) (int, bool) {
	if c.capacity <= 0 {
		return 0, false
	}

	key := xxhash.Sum64String(s)
	elem, ok := c.entries[key]
	if !ok {
		return 0, false
	}

	ent := elem.Value.(*entry) //nolint:forcetypeassert
	if ent.str != s {
		return 0, false
	}

	c.order.MoveToFront(elem)

	return ent.byteLen, true
}

// Put records that s was confirmed well-formed UTF-8 with the given byte length, evicting
// the least-recently-used entry if the cache is at capacity.
func (c *Cache) Put(s string, byteLen int) {
	if c.capacity <= 0 {
		return
	}

	key := xxhash.Sum64String(s)
	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry) //nolint:forcetypeassert
		// On a hash collision, s replaces the other string's entry.
		ent.str = s
		ent.byteLen = byteLen
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&entry{key: key, str: s, byteLen: byteLen})
	c.entries[key] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key) //nolint:forcetypeassert
		}
	}
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	return c.order.Len()
}
