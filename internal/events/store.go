package events

import (
	"sort"
	"sync"
	"time"
)

// Store keeps the latest event per pane. Entries older than the TTL are
// pruned lazily on snapshot; a TTL of 0 keeps everything.
type Store struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]Event
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, data: make(map[string]Event)}
}

func (s *Store) Upsert(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[e.Pane] = e
}

// Snapshot returns the live events sorted by pane id.
func (s *Store) Snapshot(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(now, false)
}

// SnapshotAttention returns only the live attention events.
func (s *Store) SnapshotAttention(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(now, true)
}

// ActivePanes returns the ids of panes with a live event, sorted.
func (s *Store) ActivePanes(now time.Time) []string {
	events := s.Snapshot(now)
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.Pane)
	}
	return ids
}

func (s *Store) snapshotLocked(now time.Time, attentionOnly bool) []Event {
	if s.ttl > 0 {
		for pane, e := range s.data {
			if now.Sub(e.TS) > s.ttl {
				delete(s.data, pane)
			}
		}
	}
	result := make([]Event, 0, len(s.data))
	for _, e := range s.data {
		if attentionOnly && !IsAttentionKind(e.Kind) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Pane == result[j].Pane {
			return result[i].TS.Before(result[j].TS)
		}
		return result[i].Pane < result[j].Pane
	})
	return result
}
