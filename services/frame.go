package services

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"encoding/json"
	"fmt"
)

// InboundFrame is what a client writes on the socket: {"type": "room.join", "data": {...}}.
type InboundFrame struct {
	Type domain.CommandType `json:"type"`
	Data json.RawMessage    `json:"data,omitempty"`
}

// OutboundFrame is what the hub pushes: the topic, the room when there is one, and the body.
type OutboundFrame struct {
	Type event.Topic    `json:"type"`
	Room *domain.RoomID `json:"room,omitempty"`
	Data any            `json:"data"`
}

// DecodeCommand parses one inbound frame. The returned type is set even on failure
// whenever the frame itself was readable, so the rejection can name the request.
func DecodeCommand(raw []byte) (domain.CommandType, domain.Command, error) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return "", nil, fmt.Errorf("%w: malformed frame", errors.ErrInvalidRequest)
	}

	var cmd domain.Command
	var err error
	switch frame.Type {
	case domain.JoinRoomType:
		cmd, err = decode[domain.JoinRoomCommand](frame.Data)
	case domain.LeaveRoomType:
		cmd, err = decode[domain.LeaveRoomCommand](frame.Data)
	case domain.SendEventType:
		cmd, err = decodeSend(frame.Data)
	case domain.EditMessageType:
		cmd, err = decode[domain.EditMessageCommand](frame.Data)
	case domain.DeleteMessageType:
		cmd, err = decode[domain.DeleteMessageCommand](frame.Data)
	case domain.StarMessageType:
		cmd, err = decode[domain.StarMessageCommand](frame.Data)
	case domain.UnstarMessageType:
		cmd, err = decode[domain.UnstarMessageCommand](frame.Data)
	case domain.ListStarredType:
		cmd, err = decode[domain.ListStarredCommand](frame.Data)
	case domain.SetUsernameType:
		cmd, err = decode[domain.SetUsernameCommand](frame.Data)
	case domain.ListRoomsType:
		cmd = domain.ListRoomsCommand{}
	case domain.CreateRoomType:
		cmd, err = decode[domain.CreateRoomCommand](frame.Data)
	case domain.GetMembersType:
		cmd, err = decode[domain.GetMembersCommand](frame.Data)
	case domain.StartTypingType:
		cmd, err = decode[domain.StartTypingCommand](frame.Data)
	case domain.StopTypingType:
		cmd, err = decode[domain.StopTypingCommand](frame.Data)
	default:
		return frame.Type, nil, fmt.Errorf("%w: %q", errors.ErrUnknownCommand, frame.Type)
	}
	if err != nil {
		return frame.Type, nil, err
	}
	return frame.Type, cmd, nil
}

func decode[T domain.Command](data json.RawMessage) (T, error) {
	var cmd T
	if len(data) == 0 {
		return cmd, fmt.Errorf("%w: missing data", errors.ErrInvalidRequest)
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return cmd, fmt.Errorf("%w: malformed data", errors.ErrInvalidRequest)
	}
	return cmd, nil
}

func decodeSend(data json.RawMessage) (domain.Command, error) {
	body, err := decode[sendEventBody](data)
	if err != nil {
		return nil, err
	}
	if len(body.Payload) == 0 {
		return nil, fmt.Errorf("%w: missing payload", errors.ErrInvalidRequest)
	}
	payload, err := domain.UnmarshalPayload(body.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidRequest, err)
	}
	return domain.SendEventCommand{RoomID: body.RoomID, Payload: payload}, nil
}

// sendEventBody holds the payload still tagged, it is resolved by domain.UnmarshalPayload.
type sendEventBody struct {
	RoomID  domain.RoomID   `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

func (sendEventBody) Type() domain.CommandType { return domain.SendEventType }

// EncodeNotification builds the outbound frame for n.
func EncodeNotification(n event.Notification) ([]byte, error) {
	frame := OutboundFrame{Type: n.Topic(), Data: n}
	if re, ok := n.(event.RoomEvent); ok {
		room := re.RoomID
		frame.Room = &room
	}
	return json.Marshal(frame)
}
