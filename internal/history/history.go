// Package history keeps the most recent decision records in memory for the
// admin API. Unlike the JSONL file it is bounded and lossy by design.
package history

import (
	"sync"

	"bargein/interrupt/internal/decisionlog"
)

type Store struct {
	mu   sync.RWMutex
	recs []decisionlog.Record
	max  int
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = 100
	}
	return &Store{max: max}
}

// Append records a decision, evicting the oldest entries beyond the cap.
func (s *Store) Append(rec decisionlog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	if len(s.recs) > s.max {
		// Copy down instead of re-slicing so the backing array doesn't pin
		// evicted records.
		keep := len(s.recs) - s.max
		s.recs = append(s.recs[:0:0], s.recs[keep:]...)
	}
}

// List returns a copy of the retained records, oldest first.
func (s *Store) List() []decisionlog.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]decisionlog.Record, len(s.recs))
	copy(out, s.recs)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// Close satisfies the engine sink interface; nothing to release.
func (s *Store) Close() error { return nil }
