package domain

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	PreviewLimit       = 100
	previewMarker      = "..."
	deletedPlaceholder = "This message was deleted"
	imagePlaceholder   = "📷 %s"
)

type ReplyKind string

const (
	ReplyText    ReplyKind = "Text"
	ReplyImage   ReplyKind = "Image"
	ReplyDeleted ReplyKind = "Deleted"
)

// Reply is the denormalized preview of the message being answered, resolved at send time.
// On inbound payloads only MessageID is read.
type Reply struct {
	MessageID      uuid.UUID `json:"message_id"`
	UserID         ConnID    `json:"user_id"`
	Username       *string   `json:"username,omitempty"`
	ContentPreview string    `json:"content_preview"`
	MessageType    ReplyKind `json:"message_type"`
}

// BuildReply renders original as a reply preview.
// Only Message and Image events can be replied to.
func BuildReply(original Event, username *string) (Reply, bool) {
	reply := Reply{
		MessageID: original.ID,
		UserID:    original.From,
		Username:  username,
	}
	switch p := original.Data.(type) {
	case *MessagePayload:
		if p.Deleted {
			reply.ContentPreview, reply.MessageType = deletedPlaceholder, ReplyDeleted
		} else {
			reply.ContentPreview, reply.MessageType = Preview(p.Content), ReplyText
		}
	case ImagePayload:
		reply.ContentPreview, reply.MessageType = fmt.Sprintf(imagePlaceholder, p.Filename), ReplyImage
	default:
		return Reply{}, false
	}
	return reply, true
}

// Preview keeps up to PreviewLimit characters and marks the truncation.
// Characters are runes, so multibyte content is never cut in half.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLimit {
		return content
	}
	return string(runes[:PreviewLimit]) + previewMarker
}
