package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type RoomID string

// ConnID identifies one transport connection. Connection ids are never reused.
type ConnID string

func NewRoomID() RoomID {
	return RoomID(uuid.NewString())
}

func (id RoomID) DefaultName() string {
	return fmt.Sprintf("Room %s", id)
}

// Room is a named broadcast group with a membership set and an append-only event log.
// A Room is not safe for concurrent use: callers must hold the room's critical section,
// see repositories.RoomRegistry.
type Room struct {
	ID       RoomID
	Name     string
	members  map[ConnID]struct{}
	events   []Event
	sequence uint64
}

func NewRoom(id RoomID, name string) *Room {
	if name == "" {
		name = id.DefaultName()
	}
	return &Room{
		ID:      id,
		Name:    name,
		members: make(map[ConnID]struct{}),
		events:  nil,
	}
}

// AddMember reports whether conn was not already a member.
func (r *Room) AddMember(conn ConnID) bool {
	if _, ok := r.members[conn]; ok {
		return false
	}
	r.members[conn] = struct{}{}
	return true
}

// RemoveMember reports whether conn was a member.
func (r *Room) RemoveMember(conn ConnID) bool {
	if _, ok := r.members[conn]; !ok {
		return false
	}
	delete(r.members, conn)
	return true
}

func (r *Room) HasMember(conn ConnID) bool {
	_, ok := r.members[conn]
	return ok
}

func (r *Room) MemberCount() int {
	return len(r.members)
}

// Members returns a sorted snapshot of the member set.
func (r *Room) Members() []ConnID {
	members := lo.Keys(r.members)
	slices.Sort(members)
	return members
}

// Append adds an event at the end of the log.
func (r *Room) Append(event Event) {
	r.events = append(r.events, event)
}

// FindEvent scans the log for the event with the given id.
// The returned pointer aliases the stored entry so that edits and tombstones happen in place;
// it must not escape the critical section. Cost is linear in the log length.
func (r *Room) FindEvent(id uuid.UUID) (*Event, bool) {
	for i := range r.events {
		if r.events[i].ID == id {
			return &r.events[i], true
		}
	}
	return nil, false
}

// Events returns a copy of the log, safe to use after the critical section is released.
func (r *Room) Events() []Event {
	return lo.Map(r.events, func(item Event, _ int) Event {
		return item.Clone()
	})
}

func (r *Room) Len() int {
	return len(r.events)
}

// NextSequence stamps an outbound batch so deliveries can be released in commit order.
func (r *Room) NextSequence() uint64 {
	r.sequence++
	return r.sequence
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{ID: r.ID, Name: r.Name, MemberCount: len(r.members)}
}

type RoomSummary struct {
	ID          RoomID `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}
