package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoom_DefaultName(t *testing.T) {
	req := require.New(t)

	// Given a room created without a name
	room := NewRoom("42", "")

	// Then it is named after its id
	req.Equal("Room 42", room.Name)
	req.Equal(0, room.MemberCount())
	req.Equal(0, room.Len())
}

func TestRoom_Membership_IsASet(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r", "general")

	// When the same connection is added twice
	first := room.AddMember("b")
	second := room.AddMember("b")
	room.AddMember("a")

	// Then only the first addition counts and members come back sorted
	req.True(first)
	req.False(second)
	req.Equal([]ConnID{"a", "b"}, room.Members())

	// When removing a member twice
	req.True(room.RemoveMember("b"))
	req.False(room.RemoveMember("b"))
	req.False(room.HasMember("b"))
}

func TestRoom_FindEvent_AliasesTheLog(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r", "general")
	event := NewEvent("a", time.Now().UTC(), &MessagePayload{Content: "hello"})
	room.Append(event)

	// When editing through the pointer returned by FindEvent
	stored, ok := room.FindEvent(event.ID)
	req.True(ok)
	stored.Data.(*MessagePayload).Edit("bye")

	// Then the log itself changed
	again, _ := room.FindEvent(event.ID)
	req.Equal("bye", again.Data.(*MessagePayload).Content)
	req.True(again.Data.(*MessagePayload).Edited)
}

func TestRoom_Events_IsASnapshot(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r", "general")
	event := NewEvent("a", time.Now().UTC(), &MessagePayload{Content: "hello"})
	room.Append(event)

	// Given a snapshot taken before a tombstone
	snapshot := room.Events()
	stored, _ := room.FindEvent(event.ID)
	stored.Data.(*MessagePayload).Tombstone()

	// Then the snapshot still shows the original content
	req.Equal("hello", snapshot[0].Data.(*MessagePayload).Content)
	req.False(snapshot[0].Data.(*MessagePayload).Deleted)
}

func TestRoom_NextSequence_IsMonotonic(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r", "general")

	req.Equal(uint64(1), room.NextSequence())
	req.Equal(uint64(2), room.NextSequence())
}
