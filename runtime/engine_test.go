package runtime

import (
	"bytes"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestEngine(t *testing.T) (*Engine, *domain.Room) {
	t.Helper()
	filter, err := moderation.NewFilter([]string{"darn"}, '*')
	require.NoError(t, err)
	engine := NewEngine(logs.GetLoggerFromLevel(slog.LevelDebug), repositories.NewStore(), filter, EngineConfig{MaxContentLength: 20, MaxImageBytes: 64})
	room := domain.NewRoom("r", "")
	room.AddMember("x")
	return engine, room
}

func TestEngine_Send_MasksContent(t *testing.T) {
	req := require.New(t)
	engine, room := newTestEngine(t)

	// When a message contains a forbidden word
	outcomes, err := engine.Send(room, "x", &domain.MessagePayload{Content: "oh d4rn"})

	// Then the logged copy is masked
	req.NoError(err)
	req.Len(outcomes, 1)
	req.Equal(Persisted, outcomes[0].Kind)
	req.Equal("oh ****", outcomes[0].Event.Data.(*domain.MessagePayload).Content)
	req.Equal(domain.ConnID("x"), outcomes[0].Event.From)
	req.NotEqual(uuid.Nil, outcomes[0].Event.ID)
}

func TestEngine_Send_ContentLimit(t *testing.T) {
	req := require.New(t)
	engine, room := newTestEngine(t)

	// Then the limit counts characters, not bytes
	_, err := engine.Send(room, "x", &domain.MessagePayload{Content: "éééééééééééééééééééé"})
	req.NoError(err)
	_, err = engine.Send(room, "x", &domain.MessagePayload{Content: "ééééééééééééééééééééé"})
	req.ErrorIs(err, errors.ErrInvalidRequest)
}

func TestEngine_Send_Image(t *testing.T) {
	req := require.New(t)
	engine, room := newTestEngine(t)
	encoded := base64.StdEncoding.EncodeToString(pngSignature)

	// When a client sends a png with a forged mime type and size, as a data url
	outcomes, err := engine.Send(room, "x", domain.ImagePayload{
		Data:       "data:image/gif;base64," + encoded,
		MimeType:   "image/gif",
		Size:       1,
		Dimensions: &domain.Dimensions{Width: 1, Height: 1},
	})

	// Then the detected values are kept
	req.NoError(err)
	image := outcomes[0].Event.Data.(domain.ImagePayload)
	req.Equal("image/png", image.MimeType)
	req.Equal(len(pngSignature), image.Size)
	req.Equal("image.png", image.Filename)
}

func TestEngine_Send_InvalidImages(t *testing.T) {
	engine, room := newTestEngine(t)
	tests := []struct {
		name    string
		payload domain.ImagePayload
	}{
		{name: "not base64", payload: domain.ImagePayload{Data: "%%%"}},
		{name: "empty", payload: domain.ImagePayload{Data: ""}},
		{name: "not an image", payload: domain.ImagePayload{Data: base64.StdEncoding.EncodeToString([]byte("plain text"))}},
		{name: "too large", payload: domain.ImagePayload{Data: base64.StdEncoding.EncodeToString(append(bytes.Clone(pngSignature), make([]byte, 64)...))}},
		{name: "zero width", payload: domain.ImagePayload{
			Data:       base64.StdEncoding.EncodeToString(pngSignature),
			Dimensions: &domain.Dimensions{Width: 0, Height: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Send(room, "x", tt.payload)
			require.ErrorIs(t, err, errors.ErrInvalidImage)
		})
	}
}

func TestEngine_Send_Reactions(t *testing.T) {
	req := require.New(t)
	engine, room := newTestEngine(t)

	// Then a reaction needs a value but not a known target
	_, err := engine.Send(room, "x", domain.ReactionPayload{MessageID: uuid.New(), Reaction: " "})
	req.ErrorIs(err, errors.ErrInvalidRequest)
	outcomes, err := engine.Send(room, "x", domain.ReactionRemovePayload{MessageID: uuid.New(), Reaction: "👍"})
	req.NoError(err)
	req.Equal(domain.KindReactionRemove, outcomes[0].Event.Data.Kind())
}

func TestEngine_Join_Outcomes(t *testing.T) {
	req := require.New(t)
	engine, room := newTestEngine(t)
	room.Append(domain.NewEvent("x", engine.now(), &domain.MessagePayload{Content: "hi"}))

	// When y joins
	outcomes := engine.Join(room, "y")

	// Then it gets the replay, its join is logged and the room gets the members
	req.Len(outcomes, 3)
	req.Equal(Ephemeral, outcomes[0].Kind)
	req.Equal(ToRequester, outcomes[0].Audience)
	req.Equal("hi", outcomes[0].Notification.(event.RoomEvent).Event.Data.(*domain.MessagePayload).Content)
	req.Equal(Persisted, outcomes[1].Kind)
	req.Equal(domain.UserJoinPayload{UserID: "y"}, outcomes[1].Event.Data)
	req.Equal(ToRoom, outcomes[2].Audience)
	req.Equal(event.RoomMembersTopic, outcomes[2].Notification.Topic())

	// When it joins again
	outcomes = engine.Join(room, "y")

	// Then nothing is logged
	req.Len(outcomes, 2)
	for _, out := range outcomes {
		req.Equal(Ephemeral, out.Kind)
		req.Equal(ToRequester, out.Audience)
	}
}

func TestEngine_Leave_NonMember(t *testing.T) {
	engine, room := newTestEngine(t)
	require.Empty(t, engine.Leave(room, "y"))
	require.Len(t, engine.Leave(room, "x"), 2)
}
