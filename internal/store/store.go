// Package store holds the authoritative in-memory table of active
// notifications. It owns identity assignment and the replacement invariant;
// everything else (timers, signals, publishing) reacts to what happens here.
package store

import (
	"errors"
	"math"
	"sync"

	"github.com/notifd/notifd/internal/notification"
)

// ErrIDExhausted is returned once the uint32 id space has been used up.
// Identities are never reused within a process lifetime, so this is a fatal
// condition: the daemon must refuse further notifications until restarted.
var ErrIDExhausted = errors.New("notification id space exhausted")

// Store is the table of currently active notifications. Mutations are
// serialized by an internal lock; Snapshot and Get never observe a
// half-applied mutation.
type Store struct {
	mu      sync.RWMutex
	entries map[uint32]notification.Notification
	// order lists ids by insertion; a replacement keeps its slot so renderer
	// rows stay stable.
	order []uint32
	// nextID is tracked as uint64 so exhaustion of the uint32 space is
	// detectable instead of silently wrapping into a collision.
	nextID uint64
}

func New() *Store {
	return &Store{
		entries: make(map[uint32]notification.Notification),
		nextID:  1,
	}
}

// Upsert inserts n, or replaces the entry named by n.ID if that id is
// currently active. It returns the assigned (or reused) id and whether an
// existing entry was replaced.
func (s *Store) Upsert(n notification.Notification) (uint32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID != 0 {
		if _, ok := s.entries[n.ID]; ok {
			s.entries[n.ID] = n.Clone()
			return n.ID, true, nil
		}
		// Stale replaces_id: the target is gone, treat as a new notification.
	}

	if s.nextID > math.MaxUint32 {
		return 0, false, ErrIDExhausted
	}
	id := uint32(s.nextID)
	s.nextID++

	n.ID = id
	s.entries[id] = n.Clone()
	s.order = append(s.order, id)
	return id, false, nil
}

// Remove deletes the entry if present and returns it. Removing an absent id
// is a no-op; the bool return is the only way callers distinguish the two,
// which is what makes close/expire races resolve to exactly one removal.
func (s *Store) Remove(id uint32) (notification.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[id]
	if !ok {
		return notification.Notification{}, false
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return n, true
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id uint32) (notification.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.entries[id]
	if !ok {
		return notification.Notification{}, false
	}
	return n.Clone(), true
}

// Snapshot returns the active notifications in insertion order. The result
// is a deep copy; mutating it cannot affect the store.
func (s *Store) Snapshot() []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make([]notification.Notification, 0, len(s.order))
	for _, id := range s.order {
		snap = append(snap, s.entries[id].Clone())
	}
	return snap
}

// Len reports the number of active notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
