package domain

import (
	"github.com/google/uuid"
)

type CommandType string

const (
	JoinRoomType      CommandType = "room.join"
	LeaveRoomType     CommandType = "room.leave"
	SendEventType     CommandType = "room.send"
	EditMessageType   CommandType = "message.edit"
	DeleteMessageType CommandType = "message.delete"
	StarMessageType   CommandType = "message.star"
	UnstarMessageType CommandType = "message.unstar"
	ListStarredType   CommandType = "starred_messages.get"
	SetUsernameType   CommandType = "user.set_username"
	ListRoomsType     CommandType = "room.list"
	CreateRoomType    CommandType = "room.create"
	GetMembersType    CommandType = "room.get_members"
	StartTypingType   CommandType = "typing.start"
	StopTypingType    CommandType = "typing.stop"
)

// Command is an inbound request issued by one connection.
type Command interface {
	Type() CommandType
}

type JoinRoomCommand struct {
	RoomID   RoomID  `json:"room_id" validate:"required,uuid"`
	RoomName *string `json:"room_name,omitempty" validate:"omitempty,max=128"`
}

func (JoinRoomCommand) Type() CommandType { return JoinRoomType }

type LeaveRoomCommand struct {
	RoomID RoomID `json:"room_id" validate:"required"`
}

func (LeaveRoomCommand) Type() CommandType { return LeaveRoomType }

// SendEventCommand carries a payload built by the client; the engine rebuilds the stored event.
type SendEventCommand struct {
	RoomID  RoomID  `json:"room" validate:"required"`
	Payload Payload `json:"-" validate:"required"`
}

func (SendEventCommand) Type() CommandType { return SendEventType }

type EditMessageCommand struct {
	RoomID     RoomID    `json:"room" validate:"required"`
	MessageID  uuid.UUID `json:"message_id" validate:"required"`
	NewContent string    `json:"new_content" validate:"required"`
}

func (EditMessageCommand) Type() CommandType { return EditMessageType }

type DeleteMessageCommand struct {
	RoomID    RoomID    `json:"room" validate:"required"`
	MessageID uuid.UUID `json:"message_id" validate:"required"`
}

func (DeleteMessageCommand) Type() CommandType { return DeleteMessageType }

type StarMessageCommand struct {
	RoomID    RoomID    `json:"room_id" validate:"required"`
	MessageID uuid.UUID `json:"message_id" validate:"required"`
}

func (StarMessageCommand) Type() CommandType { return StarMessageType }

type UnstarMessageCommand struct {
	RoomID    RoomID    `json:"room_id" validate:"required"`
	MessageID uuid.UUID `json:"message_id" validate:"required"`
}

func (UnstarMessageCommand) Type() CommandType { return UnstarMessageType }

type ListStarredCommand struct {
	RoomID RoomID `json:"room_id" validate:"required"`
}

func (ListStarredCommand) Type() CommandType { return ListStarredType }

type SetUsernameCommand struct {
	Username string `json:"username" validate:"required"`
}

func (SetUsernameCommand) Type() CommandType { return SetUsernameType }

type ListRoomsCommand struct{}

func (ListRoomsCommand) Type() CommandType { return ListRoomsType }

type CreateRoomCommand struct {
	Name string `json:"name" validate:"required,max=128"`
}

func (CreateRoomCommand) Type() CommandType { return CreateRoomType }

type GetMembersCommand struct {
	RoomID RoomID `json:"room_id" validate:"required"`
}

func (GetMembersCommand) Type() CommandType { return GetMembersType }

type StartTypingCommand struct {
	RoomID RoomID `json:"room_id" validate:"required"`
}

func (StartTypingCommand) Type() CommandType { return StartTypingType }

type StopTypingCommand struct {
	RoomID RoomID `json:"room_id" validate:"required"`
}

func (StopTypingCommand) Type() CommandType { return StopTypingType }
