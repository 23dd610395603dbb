// Package mru keeps a recency index of recently touched note titles.
package mru

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the recency index; older titles fall off the end.
const DefaultSize = 64

// Cache tracks note recency. Every patch or import touches its title; a
// rename re-keys the entry instead of dropping the note's recency.
type Cache struct {
	cache *lru.Cache[string, struct{}]
}

// New returns a cache holding up to size titles.
func New(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	c, _ := lru.New[string, struct{}](size)
	return &Cache{cache: c}
}

// Touch marks title as the most recently used entry. When oldTitle names a
// different key, the entry is migrated before the touch so a rename does not
// leave a stale key behind.
func (c *Cache) Touch(oldTitle, title string) {
	if title == "" {
		return
	}
	if oldTitle != "" && oldTitle != title {
		c.cache.Remove(oldTitle)
	}
	c.cache.Add(title, struct{}{})
}

// Remove drops a title from the index.
func (c *Cache) Remove(title string) {
	c.cache.Remove(title)
}

// Recent returns up to n titles, most recent first.
func (c *Cache) Recent(n int) []string {
	keys := c.cache.Keys() // oldest to newest
	if n <= 0 || n > len(keys) {
		n = len(keys)
	}
	out := make([]string, 0, n)
	for i := len(keys) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, keys[i])
	}
	return out
}

// Len returns the number of tracked titles.
func (c *Cache) Len() int {
	return c.cache.Len()
}
