// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package cache provides the bounded in-memory TTL cache used in front of the
// recipe source. Expired entries are dropped lazily on Get and in bulk by
// Cleanup, which the supervisor's janitor service calls periodically.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/nivremi/recipe-web-app/internal/metrics"
)

// DefaultMaxEntries bounds a cache created with a non-positive capacity.
const DefaultMaxEntries = 1000

// Entry is a cached item with its expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe TTL cache with a fixed capacity.
type Cache struct {
	mu         sync.RWMutex
	name       string
	entries    map[string]Entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	stats      Stats
}

// Stats tracks cache performance.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache whose entries live for ttl. name labels the cache in
// Prometheus metrics ("recipe", "listing").
func New(name string, ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		name:       name,
		entries:    make(map[string]Entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		stats: Stats{
			LastCleanup: time.Now(),
		},
	}
}

// Name returns the metrics label of the cache.
func (c *Cache) Name() string {
	return c.name
}

// Get returns the value for key. Expired entries are removed and reported as
// misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if current, ok := c.entries[key]; ok && c.now().After(current.ExpiresAt) {
			delete(c.entries, key)
			c.mu.Unlock()
			c.recordEviction(1)
		} else {
			c.mu.Unlock()
		}
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL. When the cache is full
// the entry closest to expiry is evicted.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	evicted := 0
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		evicted = c.evictOneLocked()
	}
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: c.now().Add(ttl),
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.TotalKeys = total
	c.stats.mu.Unlock()

	if evicted > 0 {
		c.recordEviction(evicted)
	}
}

// evictOneLocked removes the entry with the earliest expiry. Caller holds mu.
func (c *Cache) evictOneLocked() int {
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for key, entry := range c.entries {
		if !found || entry.ExpiresAt.Before(oldest) {
			victim, oldest, found = key, entry.ExpiresAt, true
		}
	}
	if !found {
		return 0
	}
	delete(c.entries, victim)
	return 1
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if existed {
		c.recordEviction(1)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	evictions := len(c.entries)
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
	c.recordEviction(evictions)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a copy of the current statistics.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Cleanup removes all expired entries and returns how many were removed.
func (c *Cache) Cleanup() int {
	now := c.now()
	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.TotalKeys = total
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()

	c.recordEviction(removed)
	return removed
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.RecordCacheLookup(c.name, true)
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.RecordCacheLookup(c.name, false)
}

func (c *Cache) recordEviction(n int) {
	if n <= 0 {
		return
	}
	c.stats.mu.Lock()
	c.stats.Evictions += int64(n)
	c.stats.mu.Unlock()
	metrics.RecordCacheEvictions(n)
}

// GenerateKey builds a compact cache key from a method name and parameters.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
