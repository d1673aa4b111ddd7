package scorer

import (
	"sync"
	"time"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/model"
)

// ScoreCache caches LLM scores keyed by pane id and content hash. When
// pane content hasn't changed since the last cycle, the cached score is
// reused, saving an API call per pane per cycle.
//
// Entries carry a TTL. After expiry the pane is re-scored even when the
// content is identical, so a stale judgment cannot pin a layout forever.
type ScoreCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry // keyed by pane id
	ttl     time.Duration
}

type cacheEntry struct {
	contentHash string
	score       model.LLMScore
	cachedAt    time.Time
	hitCount    int
}

// NewScoreCache creates a cache with the given TTL.
// A TTL of 0 disables caching.
func NewScoreCache(ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Lookup returns the cached score for the pane if the content is
// unchanged and the entry has not expired.
func (c *ScoreCache) Lookup(paneID, content string) (*model.LLMScore, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	hash := analyzer.ContentHash(content)

	c.mu.RLock()
	entry, ok := c.entries[paneID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if entry.contentHash != hash {
		return nil, false
	}
	if time.Since(entry.cachedAt) > c.ttl {
		return nil, false
	}

	c.mu.Lock()
	entry.hitCount++
	c.mu.Unlock()

	s := entry.score
	return &s, true
}

// Store saves a score for the pane's current content.
func (c *ScoreCache) Store(paneID, content string, score model.LLMScore) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[paneID] = &cacheEntry{
		contentHash: analyzer.ContentHash(content),
		score:       score,
		cachedAt:    time.Now(),
	}
}

// Invalidate removes the cache entry for a pane, forcing a re-score on
// the next cycle regardless of content.
func (c *ScoreCache) Invalidate(paneID string) {
	c.mu.Lock()
	delete(c.entries, paneID)
	c.mu.Unlock()
}

// Len returns the number of live entries.
func (c *ScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
