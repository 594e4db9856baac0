// ABOUTME: In-memory caching of audit results to avoid rescanning identical sources.
// ABOUTME: Keys are content hashes; TTL-based expiration keeps the map bounded.

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/types"
)

type CacheEntry struct {
	Data      *types.AuditResult
	ExpiresAt time.Time
}

type AuditCache struct {
	cache  map[string]*CacheEntry
	mutex  sync.RWMutex
	ttl    time.Duration
	logger *logrus.Logger
}

func NewAuditCache(logger *logrus.Logger) *AuditCache {
	cache := &AuditCache{
		cache:  make(map[string]*CacheEntry),
		ttl:    30 * time.Minute,
		logger: logger,
	}

	// Start cleanup goroutine
	go cache.startCleanup()

	return cache
}

// Key derives the cache key for a source text and language tag.
func Key(source, language string) string {
	h := sha256.New()
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *AuditCache) Get(key string) *types.AuditResult {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil
	}

	// Check if entry has expired
	if time.Now().After(entry.ExpiresAt) {
		// Don't delete here to avoid write lock in read operation
		// Cleanup will handle expired entries
		return nil
	}

	c.logger.WithField("key", key).Debug("Cache hit")
	return entry.Data
}

func (c *AuditCache) Set(key string, result *types.AuditResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = &CacheEntry{
		Data:      result,
		ExpiresAt: time.Now().Add(c.ttl),
	}

	c.logger.WithField("key", key).Debug("Cached audit result")
}

func (c *AuditCache) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *AuditCache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, entry := range c.cache {
		if now.After(entry.ExpiresAt) {
			delete(c.cache, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.WithFields(logrus.Fields{
			"expired_entries":   expiredCount,
			"remaining_entries": len(c.cache),
		}).Debug("Cache cleanup completed")
	}
}

func (c *AuditCache) Stats() (total int, expired int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := time.Now()
	total = len(c.cache)

	for _, entry := range c.cache {
		if now.After(entry.ExpiresAt) {
			expired++
		}
	}

	return total, expired
}
