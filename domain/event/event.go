// Package event declares the notifications pushed to connections.
// A notification is addressed either to the requesting connection or to a room.
package event

import (
	"chat-hub/domain"

	"github.com/google/uuid"
)

type Topic string

const (
	RoomEventTopic       Topic = "room.event"
	RoomMembersTopic     Topic = "room.members"
	RoomListTopic        Topic = "room.list"
	RoomCreatedTopic     Topic = "room.created"
	UsernameSetTopic     Topic = "username.set"
	TypingStartTopic     Topic = "typing.start"
	TypingStopTopic      Topic = "typing.stop"
	StarredMessagesTopic Topic = "starred_messages.list"
	ErrorTopic           Topic = "error"
)

type Notification interface {
	Topic() Topic
}

// RoomEvent carries either a logged event or a broadcast-only edit/delete notification.
type RoomEvent struct {
	RoomID domain.RoomID
	Event  domain.Event
}

func (RoomEvent) Topic() Topic { return RoomEventTopic }

func (r RoomEvent) MarshalJSON() ([]byte, error) {
	return r.Event.MarshalJSON()
}

type RoomMembers struct {
	RoomID  domain.RoomID   `json:"room_id"`
	Members []domain.Member `json:"members"`
}

func (RoomMembers) Topic() Topic { return RoomMembersTopic }

type RoomList struct {
	Rooms []domain.RoomSummary `json:"rooms"`
}

func (RoomList) Topic() Topic { return RoomListTopic }

type RoomCreated struct {
	Room domain.RoomSummary `json:"room"`
}

func (RoomCreated) Topic() Topic { return RoomCreatedTopic }

type UsernameSet struct {
	Username string `json:"username"`
}

func (UsernameSet) Topic() Topic { return UsernameSetTopic }

type TypingStarted struct {
	domain.TypingIndicator
}

func (TypingStarted) Topic() Topic { return TypingStartTopic }

type TypingStopped struct {
	domain.TypingIndicator
}

func (TypingStopped) Topic() Topic { return TypingStopTopic }

type StarredMessages struct {
	RoomID            domain.RoomID `json:"room_id"`
	StarredMessageIDs []uuid.UUID   `json:"starred_message_ids"`
}

func (StarredMessages) Topic() Topic { return StarredMessagesTopic }

// Failure tells the requester why its request was rejected.
type Failure struct {
	Request domain.CommandType `json:"request,omitempty"`
	Message string             `json:"message"`
}

func (Failure) Topic() Topic { return ErrorTopic }
