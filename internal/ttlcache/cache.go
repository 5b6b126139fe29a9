package ttlcache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Key construction helpers shared by callers
const ZoneListKey = "zones"

// ZonePrefix returns the key prefix covering everything cached for one zone
func ZonePrefix(zoneID string) string {
	return "zone:" + zoneID + ":"
}

// RecordListKey returns the cache key for one user's view of a zone's
// record listing with the given canonical query string. The user id is
// part of the key: listings are fetched with that user's credential
// and must never be served to anyone else. Zone-level invalidation
// still covers every user's entries because the zone prefix leads.
func RecordListKey(userID int, zoneID, query string) string {
	return ZonePrefix(zoneID) + "u" + strconv.Itoa(userID) + ":records:" + query
}

type entry struct {
	value      interface{}
	insertedAt time.Time
	stamp      uint64
}

// invalidation records when a key or prefix was invalidated. seq
// orders it against put stamps; at bounds how long the record is kept.
type invalidation struct {
	seq uint64
	at  time.Time
}

// minRetention bounds how long invalidation records are kept. A record
// only matters while a fetch stamped before it can still land a Put,
// and provider calls time out well under a minute.
const minRetention = time.Minute

// Cache is an in-process TTL cache for idempotent read paths. It is
// created once per process with an injected clock, so tests drive
// expiry without sleeping.
//
// Invalidation wins over concurrent puts: Put carries a stamp taken
// before the remote fetch began, and is discarded if a matching
// invalidation happened after that stamp. A stale put can never
// resurrect an invalidated key.
type Cache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	entries map[string]entry
	seq     uint64
	// latest invalidation per exact key / per prefix
	invalidKeys     map[string]invalidation
	invalidPrefixes map[string]invalidation
}

// New creates a cache with the given TTL. now may be nil, in which case
// time.Now is used.
func New(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:             ttl,
		now:             now,
		entries:         make(map[string]entry),
		invalidKeys:     make(map[string]invalidation),
		invalidPrefixes: make(map[string]invalidation),
	}
}

// Stamp returns a token callers take before starting the remote fetch
// that will feed a Put.
func (c *Cache) Stamp() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Get returns the cached value for key, or a miss when the key is
// absent or its age exceeds the TTL. Expired entries are removed
// lazily.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Put stores value under key unless an invalidation covering key was
// issued after stamp was taken. Overwrites reset the insertion time.
func (c *Cache) Put(key string, value interface{}, stamp uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneInvalidations()
	if c.invalidatedSince(key, stamp) {
		return
	}

	c.entries[key] = entry{
		value:      value,
		insertedAt: c.now(),
		stamp:      stamp,
	}
}

// Invalidate removes the exact key and every key under it as a prefix,
// and blocks in-flight puts for those keys that began before this call.
func (c *Cache) Invalidate(prefixOrKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneInvalidations()
	c.seq++
	inv := invalidation{seq: c.seq, at: c.now()}
	c.invalidKeys[prefixOrKey] = inv
	c.invalidPrefixes[prefixOrKey] = inv

	delete(c.entries, prefixOrKey)
	for k := range c.entries {
		if strings.HasPrefix(k, prefixOrKey) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of live entries (expired ones may be counted
// until their lazy removal).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) invalidatedSince(key string, stamp uint64) bool {
	if inv, ok := c.invalidKeys[key]; ok && inv.seq > stamp {
		return true
	}
	for prefix, inv := range c.invalidPrefixes {
		if inv.seq > stamp && strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// pruneInvalidations drops invalidation records old enough that no
// in-flight fetch stamped before them can still complete. Callers must
// hold c.mu.
func (c *Cache) pruneInvalidations() {
	retention := c.ttl
	if retention < minRetention {
		retention = minRetention
	}
	cutoff := c.now().Add(-retention)

	for k, inv := range c.invalidKeys {
		if inv.at.Before(cutoff) {
			delete(c.invalidKeys, k)
		}
	}
	for k, inv := range c.invalidPrefixes {
		if inv.at.Before(cutoff) {
			delete(c.invalidPrefixes, k)
		}
	}
}
