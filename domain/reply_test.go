package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestPreview_Truncation(t *testing.T) {
	req := require.New(t)

	// Given contents around the limit
	exact := strings.Repeat("a", PreviewLimit)
	long := strings.Repeat("a", PreviewLimit+50)

	// Then only the longer one is cut and marked
	req.Equal(exact, Preview(exact))
	req.Equal(exact+"...", Preview(long))
	req.Len([]rune(Preview(long)), PreviewLimit+3)
}

func TestPreview_CountsCharactersNotBytes(t *testing.T) {
	req := require.New(t)

	// Given a multibyte content longer than the limit
	content := strings.Repeat("é", PreviewLimit+1)

	// When previewing
	preview := Preview(content)

	// Then the cut happens on a character boundary
	req.Equal(strings.Repeat("é", PreviewLimit)+"...", preview)
}

func TestBuildReply(t *testing.T) {
	at := time.Now().UTC()
	tests := []struct {
		name        string
		data        Payload
		wantOK      bool
		wantKind    ReplyKind
		wantPreview string
	}{
		{"text", &MessagePayload{Content: "hello"}, true, ReplyText, "hello"},
		{"deleted", &MessagePayload{Deleted: true}, true, ReplyDeleted, "This message was deleted"},
		{"image", ImagePayload{Filename: "cat.png"}, true, ReplyImage, "📷 cat.png"},
		{"reaction", ReactionPayload{Reaction: "👍"}, false, "", ""},
		{"join", UserJoinPayload{UserID: "a"}, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			original := NewEvent("author", at, tt.data)

			reply, ok := BuildReply(original, lo.ToPtr("alice"))

			req.Equal(tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			req.Equal(original.ID, reply.MessageID)
			req.Equal(ConnID("author"), reply.UserID)
			req.Equal("alice", *reply.Username)
			req.Equal(tt.wantKind, reply.MessageType)
			req.Equal(tt.wantPreview, reply.ContentPreview)
		})
	}
}
