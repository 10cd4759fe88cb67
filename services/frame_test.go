package services

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	id := uuid.MustParse("0b6f4c0e-7d51-4a3a-9a5c-7d3c1f2e8b10")
	tests := []struct {
		name     string
		raw      string
		wantType domain.CommandType
		want     domain.Command
		wantErr  error
	}{
		{
			name:     "join",
			raw:      `{"type":"room.join","data":{"room_id":"r1","room_name":"general"}}`,
			wantType: domain.JoinRoomType,
			want:     domain.JoinRoomCommand{RoomID: "r1", RoomName: ptr("general")},
		},
		{
			name:     "send message",
			raw:      `{"type":"room.send","data":{"room":"r1","payload":{"Message":{"content":"hi","edited":true}}}}`,
			wantType: domain.SendEventType,
			want:     domain.SendEventCommand{RoomID: "r1", Payload: &domain.MessagePayload{Content: "hi", Edited: true}},
		},
		{
			name:     "edit",
			raw:      `{"type":"message.edit","data":{"room":"r1","message_id":"` + id.String() + `","new_content":"bye"}}`,
			wantType: domain.EditMessageType,
			want:     domain.EditMessageCommand{RoomID: "r1", MessageID: id, NewContent: "bye"},
		},
		{
			name:     "list rooms needs no data",
			raw:      `{"type":"room.list"}`,
			wantType: domain.ListRoomsType,
			want:     domain.ListRoomsCommand{},
		},
		{
			name:     "unknown type",
			raw:      `{"type":"room.explode","data":{}}`,
			wantType: "room.explode",
			wantErr:  errors.ErrUnknownCommand,
		},
		{
			name:    "not json",
			raw:     `hello`,
			wantErr: errors.ErrInvalidRequest,
		},
		{
			name:     "missing data",
			raw:      `{"type":"room.leave"}`,
			wantType: domain.LeaveRoomType,
			wantErr:  errors.ErrInvalidRequest,
		},
		{
			name:     "two payload variants",
			raw:      `{"type":"room.send","data":{"room":"r1","payload":{"Message":{"content":"a"},"Reaction":{"reaction":"b"}}}}`,
			wantType: domain.SendEventType,
			wantErr:  errors.ErrInvalidRequest,
		},
		{
			name:     "missing payload",
			raw:      `{"type":"room.send","data":{"room":"r1"}}`,
			wantType: domain.SendEventType,
			wantErr:  errors.ErrInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			cmdType, cmd, err := DecodeCommand([]byte(tt.raw))

			req.Equal(tt.wantType, cmdType)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				req.Nil(cmd)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, cmd)
		})
	}
}

func TestEncodeNotification_RoomEvent(t *testing.T) {
	req := require.New(t)
	id := uuid.MustParse("0b6f4c0e-7d51-4a3a-9a5c-7d3c1f2e8b10")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := event.RoomEvent{RoomID: "r1", Event: domain.Event{
		ID: id, From: "x", Timestamp: at, Data: &domain.MessagePayload{Content: "hi"},
	}}

	raw, err := EncodeNotification(n)

	req.NoError(err)
	req.JSONEq(`{
		"type": "room.event",
		"room": "r1",
		"data": {
			"id": "0b6f4c0e-7d51-4a3a-9a5c-7d3c1f2e8b10",
			"from": "x",
			"timestamp": "2024-05-01T12:00:00Z",
			"data": {"Message": {"content": "hi", "edited": false, "deleted": false}}
		}
	}`, string(raw))
}

func TestEncodeNotification_Direct(t *testing.T) {
	req := require.New(t)

	raw, err := EncodeNotification(event.StarredMessages{RoomID: "r1", StarredMessageIDs: []uuid.UUID{}})

	req.NoError(err)
	var frame map[string]json.RawMessage
	req.NoError(json.Unmarshal(raw, &frame))
	req.NotContains(frame, "room")
	req.JSONEq(`{"room_id":"r1","starred_message_ids":[]}`, string(frame["data"]))
	req.JSONEq(`"starred_messages.list"`, string(frame["type"]))
}

func ptr[T any](v T) *T { return &v }
