package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/leasedesk/notify-stream/internal/domain"
)

// Kind identifies one of the two logical streams.
type Kind string

const (
	Personal      Kind = "personal"
	Announcements Kind = "announcements"
)

// ReadMarker persists read state on the backend.
type ReadMarker interface {
	MarkAsRead(ctx context.Context, tenantID, id string) error
}

// Store holds the personal notifications and announcements lists.
// All mutation goes through its methods; readers get copies.
type Store struct {
	mu            sync.RWMutex
	notifications []domain.Notification
	announcements []domain.Notification
	// epoch changes on Reset so late mark-as-read results can be discarded.
	epoch uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		notifications: []domain.Notification{},
		announcements: []domain.Notification{},
	}
}

func (s *Store) list(kind Kind) *[]domain.Notification {
	if kind == Announcements {
		return &s.announcements
	}
	return &s.notifications
}

// ApplySnapshot replaces the list of kind. Entries already read locally stay
// read. A repeated id keeps its first occurrence.
func (s *Store) ApplySnapshot(kind Kind, list []domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.list(kind)
	read := make(map[domain.ID]bool)
	for _, n := range *target {
		if n.IsRead {
			read[n.ID] = true
		}
	}
	next := make([]domain.Notification, 0, len(list))
	seen := make(map[domain.ID]bool, len(list))
	for _, n := range list {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if read[n.ID] {
			n.IsRead = true
		}
		next = append(next, n)
	}
	*target = next
}

// ApplyIncremental prepends n to the list of kind. An entry with the same id
// is replaced, keeping its read state if it was read.
func (s *Store) ApplyIncremental(kind Kind, n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.list(kind)
	next := make([]domain.Notification, 0, len(*target)+1)
	next = append(next, n)
	for _, existing := range *target {
		if existing.ID == n.ID {
			if existing.IsRead {
				next[0].IsRead = true
			}
			continue
		}
		next = append(next, existing)
	}
	*target = next
}

// MarkAsRead persists the read state through marker and, on success, marks
// every entry with id as read in both lists. The backend call runs without
// holding the store lock. A result arriving after Reset is discarded.
func (s *Store) MarkAsRead(ctx context.Context, marker ReadMarker, tenantID, id string) error {
	return s.MarkAsReadAt(ctx, s.Epoch(), marker, tenantID, id)
}

// Epoch identifies the current contents; it changes on every Reset.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// MarkAsReadAt is MarkAsRead for a caller that captured epoch together with
// tenantID. The local mark is skipped when the store was reset since.
func (s *Store) MarkAsReadAt(ctx context.Context, epoch uint64, marker ReadMarker, tenantID, id string) error {
	if err := marker.MarkAsRead(ctx, tenantID, id); err != nil {
		return fmt.Errorf("mark %s as read: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	markRead(s.notifications, domain.ID(id))
	markRead(s.announcements, domain.ID(id))
	return nil
}

func markRead(list []domain.Notification, id domain.ID) {
	for i := range list {
		if list[i].ID == id {
			list[i].IsRead = true
		}
	}
}

// Reset empties both lists.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = []domain.Notification{}
	s.announcements = []domain.Notification{}
	s.epoch++
}

// Notifications returns a copy of the personal list.
func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.notifications)
}

// Announcements returns a copy of the announcements list.
func (s *Store) Announcements() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.announcements)
}

// Find looks id up in the personal list, then in announcements.
func (s *Store) Find(id string) (domain.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range [][]domain.Notification{s.notifications, s.announcements} {
		for _, n := range list {
			if n.ID == domain.ID(id) {
				return n, true
			}
		}
	}
	return domain.Notification{}, false
}

func clone(list []domain.Notification) []domain.Notification {
	out := make([]domain.Notification, len(list))
	copy(out, list)
	return out
}
