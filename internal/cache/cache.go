// Package cache is the client-side result cache of the dashboard. Entries are
// keyed by entity type and query parameters; invalidation is coarse and
// drops every entry of an entity type at once.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	Tasks     = "tasks"
	Employees = "employees"
)

const DefaultSize = 256

type Key struct {
	Entity string
	Params string
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Entity
	}
	return k.Entity + "|" + k.Params
}

// QueryCache is safe for concurrent use.
type QueryCache struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, any]
	gens    map[string]uint64
}

func New(size int) (*QueryCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[Key, any](size)
	if err != nil {
		return nil, err
	}
	return &QueryCache{
		entries: entries,
		gens:    make(map[string]uint64),
	}, nil
}

func (c *QueryCache) Get(key Key) (any, bool) {
	return c.entries.Get(key)
}

// Generation is bumped by every invalidation of the entity. A loader reads
// it before querying and passes it to SetAt.
func (c *QueryCache) Generation(entity string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[entity]
}

// SetAt stores v only if the entity was not invalidated since gen, so a
// result loaded before a mutation never lands after it.
func (c *QueryCache) SetAt(key Key, v any, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key.Entity] != gen {
		return false
	}
	c.entries.Add(key, v)
	return true
}

// InvalidateEntity drops every cached query of the entity type.
func (c *QueryCache) InvalidateEntity(entity string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[entity]++
	n := 0
	for _, k := range c.entries.Keys() {
		if k.Entity == entity && c.entries.Remove(k) {
			n++
		}
	}
	return n
}

func (c *QueryCache) InvalidateKey(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key.Entity]++
	return c.entries.Remove(key)
}

// Len reports the number of cached queries across all entities.
func (c *QueryCache) Len() int {
	return c.entries.Len()
}
