package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// roomEntry couples a room with its critical section.
type roomEntry struct {
	mu   sync.Mutex
	room *domain.Room
}

// RoomRegistry is the concurrent map from room id to room record.
// The map itself only guards insertion and lookup; every read or mutation of a room
// happens under that room's own mutex, so distinct rooms never contend.
// Rooms are never removed.
type RoomRegistry struct {
	rooms sync.Map // domain.RoomID -> *roomEntry
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{}
}

// EnsureRoom inserts the room if absent and reports whether it was created.
// The check and the insert are a single LoadOrStore, so concurrent first joins
// can never create two records for the same id.
func (r *RoomRegistry) EnsureRoom(id domain.RoomID, defaultName string) bool {
	if _, ok := r.rooms.Load(id); ok {
		return false
	}
	_, loaded := r.rooms.LoadOrStore(id, &roomEntry{room: domain.NewRoom(id, defaultName)})
	return !loaded
}

// Create inserts a brand new room with a fresh id.
func (r *RoomRegistry) Create(name string) domain.RoomSummary {
	for {
		id := domain.NewRoomID()
		if r.EnsureRoom(id, name) {
			summary, _ := r.Summary(id)
			return summary
		}
	}
}

func (r *RoomRegistry) entry(id domain.RoomID) (*roomEntry, error) {
	value, ok := r.rooms.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrRoomNotFound, id)
	}
	return value.(*roomEntry), nil
}

// Update runs fn inside the room's critical section.
// fn must not block on I/O: anything to deliver is captured and sent after release.
func (r *RoomRegistry) Update(id domain.RoomID, fn func(room *domain.Room) error) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.room)
}

func (r *RoomRegistry) Exists(id domain.RoomID) bool {
	_, ok := r.rooms.Load(id)
	return ok
}

func (r *RoomRegistry) AddMember(id domain.RoomID, conn domain.ConnID) error {
	return r.Update(id, func(room *domain.Room) error {
		room.AddMember(conn)
		return nil
	})
}

func (r *RoomRegistry) RemoveMember(id domain.RoomID, conn domain.ConnID) error {
	return r.Update(id, func(room *domain.Room) error {
		room.RemoveMember(conn)
		return nil
	})
}

// AppendEvent fails with ErrRoomNotFound when the room is absent.
func (r *RoomRegistry) AppendEvent(id domain.RoomID, event domain.Event) error {
	return r.Update(id, func(room *domain.Room) error {
		room.Append(event)
		return nil
	})
}

// FindEvent returns a copy of the event with the given id.
func (r *RoomRegistry) FindEvent(id domain.RoomID, eventID uuid.UUID) (domain.Event, error) {
	var found domain.Event
	err := r.Update(id, func(room *domain.Room) error {
		evt, ok := room.FindEvent(eventID)
		if !ok {
			return fmt.Errorf("%w: %s", errors.ErrMessageNotFound, eventID)
		}
		found = evt.Clone()
		return nil
	})
	return found, err
}

func (r *RoomRegistry) ListMembers(id domain.RoomID) ([]domain.ConnID, error) {
	var members []domain.ConnID
	err := r.Update(id, func(room *domain.Room) error {
		members = room.Members()
		return nil
	})
	return members, err
}

func (r *RoomRegistry) ListEvents(id domain.RoomID) ([]domain.Event, error) {
	var events []domain.Event
	err := r.Update(id, func(room *domain.Room) error {
		events = room.Events()
		return nil
	})
	return events, err
}

func (r *RoomRegistry) Summary(id domain.RoomID) (domain.RoomSummary, error) {
	var summary domain.RoomSummary
	err := r.Update(id, func(room *domain.Room) error {
		summary = room.Summary()
		return nil
	})
	return summary, err
}

// List returns every room summary sorted by name then id.
// Each room is locked on its own, the list is not a global snapshot.
func (r *RoomRegistry) List() []domain.RoomSummary {
	summaries := make([]domain.RoomSummary, 0)
	r.rooms.Range(func(key, _ any) bool {
		if summary, err := r.Summary(key.(domain.RoomID)); err == nil {
			summaries = append(summaries, summary)
		}
		return true
	})
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Name != summaries[j].Name {
			return summaries[i].Name < summaries[j].Name
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// RoomsOf enumerates the rooms currently containing conn.
func (r *RoomRegistry) RoomsOf(conn domain.ConnID) []domain.RoomID {
	var ids []domain.RoomID
	r.rooms.Range(func(key, value any) bool {
		e := value.(*roomEntry)
		e.mu.Lock()
		member := e.room.HasMember(conn)
		e.mu.Unlock()
		if member {
			ids = append(ids, key.(domain.RoomID))
		}
		return true
	})
	return lo.Uniq(ids)
}

func (r *RoomRegistry) Count() int {
	count := 0
	r.rooms.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
