// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package cache provides a thread-safe in-memory TTL cache used by the
// reports layer to avoid recomputing expensive analytics on every
// request.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// sweepInterval is how often the background janitor removes expired
// entries that were never read again after expiring.
const sweepInterval = 5 * time.Minute

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL. Expired
// entries are evicted lazily on read and swept periodically by a
// background janitor goroutine.
type Cache struct {
	mu         sync.RWMutex
	items      map[string]entry
	defaultTTL time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	lastSweep atomic.Int64 // unix nanos
}

// Stats is a point-in-time snapshot of the cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache whose entries expire after ttl and starts the
// janitor goroutine, which runs for the cache's lifetime.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		items:      make(map[string]entry),
		defaultTTL: ttl,
	}
	c.lastSweep.Store(time.Now().UnixNano())
	go c.janitor()
	return c
}

// Get retrieves a value by key. An expired entry is removed on access
// and counted as both a miss and an eviction.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		c.misses.Add(1)
		c.evictions.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return e.value, true
}

// Set stores a value with the cache's default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with a custom TTL, overwriting any existing
// entry under the same key.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes a cache entry. Safe to call for keys that do not exist.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	c.evictions.Add(1)
}

// Clear drops all entries in one map swap, typically after a write path
// invalidates derived analytics.
func (c *Cache) Clear() {
	c.mu.Lock()
	dropped := int64(len(c.items))
	c.items = make(map[string]entry)
	c.mu.Unlock()
	c.evictions.Add(dropped)
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	keys := int64(len(c.items))
	c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		TotalKeys:   keys,
		LastCleanup: time.Unix(0, c.lastSweep.Load()),
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0.0
	}
	return float64(hits) / float64(hits+misses) * 100.0
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		c.mu.Lock()
		var swept int64
		for key, e := range c.items {
			if now.After(e.expiresAt) {
				delete(c.items, key)
				swept++
			}
		}
		c.mu.Unlock()

		c.evictions.Add(swept)
		c.lastSweep.Store(now.UnixNano())
	}
}

// GenerateKey creates a cache key from a report name and its parameters.
// Parameters are JSON-serialized and hashed for a compact, stable key.
func GenerateKey(report string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", report, params)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", report, sum[:16])
}
