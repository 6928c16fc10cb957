// Package cache provides the in-memory freshness cache that sits in front of
// seed retrieval. Entries expire after a fixed TTL and are dropped on writes
// to the same key, locally or from another store client.
package cache

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/at-ishikawa/elearn/internal/store"
)

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value     any
	timestamp time.Time
}

// Cache maps a logical key to a value and the time it was stored.
// There is no size-based eviction.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// New creates a Cache with the given TTL; a non-positive ttl means DefaultTTL.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a Cache that reads the current time from now.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the value under key if it was stored less than TTL ago.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, timestamp: c.now()}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Subscriber delivers store changes made elsewhere. *store.Client implements it.
type Subscriber interface {
	OnChange(fn func(store.Change)) func()
}

// Watch invalidates the changed key whenever sub reports a change.
// A change without a key (a cleared store) empties the cache.
// The returned function stops watching.
func (c *Cache) Watch(sub Subscriber) func() {
	return sub.OnChange(func(change store.Change) {
		if change.Key == "" {
			c.Clear()
			return
		}
		c.Invalidate(change.Key)
	})
}

// EntryInfo describes one cached entry. Age is in milliseconds.
type EntryInfo struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
	Age  int64  `json:"age"`
}

// Info summarizes the cache contents. Size is the length of the JSON encoding of a value.
type Info struct {
	Count     int         `json:"count"`
	Entries   []EntryInfo `json:"entries"`
	TotalSize int         `json:"totalSize"`
}

func (c *Cache) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	info := Info{
		Count:   len(c.entries),
		Entries: make([]EntryInfo, 0, len(c.entries)),
	}
	for key, e := range c.entries {
		size := 0
		if b, err := json.Marshal(e.value); err == nil {
			size = len(b)
		}
		info.Entries = append(info.Entries, EntryInfo{
			Key:  key,
			Size: size,
			Age:  now.Sub(e.timestamp).Milliseconds(),
		})
		info.TotalSize += size
	}
	sort.Slice(info.Entries, func(i, j int) bool {
		return info.Entries[i].Key < info.Entries[j].Key
	})
	return info
}
