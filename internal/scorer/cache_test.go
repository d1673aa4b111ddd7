package scorer

import (
	"testing"
	"time"

	"github.com/timvw/panefit/internal/model"
)

func TestScoreCacheStoreAndLookup(t *testing.T) {
	c := NewScoreCache(time.Minute)
	score := model.LLMScore{ImportanceScore: 0.7, Summary: "tests running"}

	c.Store("%1", "content v1", score)

	got, ok := c.Lookup("%1", "content v1")
	if !ok {
		t.Fatal("expected cache hit for unchanged content")
	}
	if got.ImportanceScore != 0.7 || got.Summary != "tests running" {
		t.Errorf("cached score mangled: %+v", got)
	}
}

func TestScoreCacheMissOnChangedContent(t *testing.T) {
	c := NewScoreCache(time.Minute)
	c.Store("%1", "content v1", model.LLMScore{ImportanceScore: 0.7})

	if _, ok := c.Lookup("%1", "content v2"); ok {
		t.Error("cache hit despite changed content")
	}
	if _, ok := c.Lookup("%2", "content v1"); ok {
		t.Error("cache hit for unknown pane")
	}
}

func TestScoreCacheTTLExpiry(t *testing.T) {
	c := NewScoreCache(10 * time.Millisecond)
	c.Store("%1", "same content", model.LLMScore{ImportanceScore: 0.7})

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Lookup("%1", "same content"); ok {
		t.Error("cache hit after TTL expiry")
	}
}

func TestScoreCacheZeroTTLDisabled(t *testing.T) {
	c := NewScoreCache(0)
	c.Store("%1", "content", model.LLMScore{ImportanceScore: 0.7})

	if _, ok := c.Lookup("%1", "content"); ok {
		t.Error("zero-TTL cache should never hit")
	}
	if c.Len() != 0 {
		t.Errorf("zero-TTL cache stored %d entries", c.Len())
	}
}

func TestScoreCacheInvalidate(t *testing.T) {
	c := NewScoreCache(time.Minute)
	c.Store("%1", "content", model.LLMScore{ImportanceScore: 0.7})
	c.Invalidate("%1")

	if _, ok := c.Lookup("%1", "content"); ok {
		t.Error("cache hit after invalidation")
	}
}
