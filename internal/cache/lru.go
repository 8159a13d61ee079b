// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package cache

import (
	"sync"

	"github.com/marekv42/reelrank/internal/recommend"
)

// recListKey identifies one cached ranking: the seed movie and the
// requested list length. Different k values are distinct entries, so a
// cached top-10 is never truncated into a top-5 answer.
type recListKey struct {
	movieID int64
	k       int
}

// entry is a node in the doubly-linked recency list.
type entry struct {
	key  recListKey
	recs []recommend.Rec
	prev *entry
	next *entry
}

// RecListCache is a thread-safe LRU cache for ranked recommendation
// lists. Get, Add, and eviction are all O(1): a hashmap provides
// lookups and a doubly-linked list tracks recency, with sentinel head
// and tail nodes so edge handling stays uniform.
//
// Cached slices are shared between the cache and its callers. Callers
// must treat them as read-only, which the serving layer already does:
// it copies entries into response structs instead of mutating them.
type RecListCache struct {
	mu sync.RWMutex

	capacity int
	items    map[recListKey]*entry

	// head.next is the most recently used, tail.prev the least.
	head *entry
	tail *entry

	hits   int64
	misses int64
}

// NewRecListCache creates a cache holding at most capacity rankings.
// Non-positive capacities fall back to 1024.
func NewRecListCache(capacity int) *RecListCache {
	if capacity <= 0 {
		capacity = 1024
	}

	c := &RecListCache{
		capacity: capacity,
		items:    make(map[recListKey]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the cached ranking for a seed movie and k. A hit moves
// the entry to the front of the recency list.
func (c *RecListCache) Get(movieID int64, k int) ([]recommend.Rec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[recListKey{movieID: movieID, k: k}]
	if !ok {
		c.misses++
		return nil, false
	}

	c.moveToFront(e)
	c.hits++
	return e.recs, true
}

// Add stores a ranking, evicting the least recently used entry when the
// cache is full. Re-adding an existing key replaces its value.
func (c *RecListCache) Add(movieID int64, k int, recs []recommend.Rec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := recListKey{movieID: movieID, k: k}
	if e, ok := c.items[key]; ok {
		e.recs = recs
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, recs: recs}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Len returns the number of cached rankings.
func (c *RecListCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear drops every entry. Stats are kept.
func (c *RecListCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[recListKey]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Stats returns hit and miss counts plus the current size.
func (c *RecListCache) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// List manipulation below must run with the write lock held.

func (c *RecListCache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *RecListCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *RecListCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	oldest.prev.next = oldest.next
	oldest.next.prev = oldest.prev
	delete(c.items, oldest.key)
}
