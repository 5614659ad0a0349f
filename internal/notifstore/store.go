// Package notifstore holds the ordered, capped collection of inbound
// notifications. Display order is delivery order (newest first), independent
// of the timestamps the backend stamped on each frame.
package notifstore

import (
	"sync"

	"github.com/hoshimi/periscope/internal/model"
)

const DefaultCap = 50

type Store struct {
	mu      sync.RWMutex
	max     int
	entries []model.Notification
}

func New(max int) *Store {
	if max <= 0 {
		max = DefaultCap
	}
	return &Store{max: max}
}

// Append inserts at the front and evicts oldest-first past capacity.
// Existing entries are never reordered.
func (s *Store) Append(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]model.Notification{n}, s.entries...)
	if len(s.entries) > s.max {
		s.entries = s.entries[:s.max]
	}
}

// Dismiss removes the matching entry if present. A missing id is a no-op: a
// dismiss click racing capacity eviction or a double click is expected.
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.entries {
		if n.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy in display order, newest first.
func (s *Store) Snapshot() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Notification, len(s.entries))
	copy(out, s.entries)
	return out
}
