package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type starKey struct {
	room domain.RoomID
	conn domain.ConnID
}

// starSet keeps insertion order so listings are stable.
type starSet struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

// StarIndex maps (room, connection) to the set of starred message ids.
// Entries are created on first star and never cleaned up: connection ids are not reused.
type StarIndex struct {
	sets sync.Map // starKey -> *starSet
}

func NewStarIndex() *StarIndex {
	return &StarIndex{}
}

func (s *StarIndex) set(room domain.RoomID, conn domain.ConnID, create bool) (*starSet, bool) {
	key := starKey{room: room, conn: conn}
	if value, ok := s.sets.Load(key); ok {
		return value.(*starSet), true
	}
	if !create {
		return nil, false
	}
	value, _ := s.sets.LoadOrStore(key, &starSet{})
	return value.(*starSet), true
}

// Star inserts messageID. Starring twice returns ErrAlreadyStarred and leaves the set unchanged.
func (s *StarIndex) Star(room domain.RoomID, conn domain.ConnID, messageID uuid.UUID) error {
	set, _ := s.set(room, conn, true)
	set.mu.Lock()
	defer set.mu.Unlock()
	if lo.Contains(set.ids, messageID) {
		return fmt.Errorf("%w: %s", errors.ErrAlreadyStarred, messageID)
	}
	set.ids = append(set.ids, messageID)
	return nil
}

// Unstar fails with ErrNotStarred, without mutation, when messageID is absent.
func (s *StarIndex) Unstar(room domain.RoomID, conn domain.ConnID, messageID uuid.UUID) error {
	set, ok := s.set(room, conn, false)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrNotStarred, messageID)
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	idx := slices.Index(set.ids, messageID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", errors.ErrNotStarred, messageID)
	}
	set.ids = slices.Delete(set.ids, idx, idx+1)
	return nil
}

func (s *StarIndex) IsStarred(room domain.RoomID, conn domain.ConnID, messageID uuid.UUID) bool {
	set, ok := s.set(room, conn, false)
	if !ok {
		return false
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	return lo.Contains(set.ids, messageID)
}

// List never returns nil so an empty listing encodes as [].
func (s *StarIndex) List(room domain.RoomID, conn domain.ConnID) []uuid.UUID {
	set, ok := s.set(room, conn, false)
	if !ok {
		return []uuid.UUID{}
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	return slices.Clone(set.ids)
}
