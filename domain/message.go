// Package domain contains core concepts of the chat system.
// This file defines room events and their payload variants.
// Events are immutable once logged, except for Message edits and tombstones.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type PayloadKind string

const (
	KindMessage        PayloadKind = "Message"
	KindImage          PayloadKind = "Image"
	KindMessageEdit    PayloadKind = "MessageEdit"
	KindMessageDelete  PayloadKind = "MessageDelete"
	KindReaction       PayloadKind = "Reaction"
	KindReactionRemove PayloadKind = "ReactionRemove"
	KindUserJoin       PayloadKind = "UserJoin"
	KindUserLeave      PayloadKind = "UserLeave"
	KindMessageStar    PayloadKind = "MessageStar"
	KindMessageUnstar  PayloadKind = "MessageUnstar"
)

// Payload is the closed set of event variants.
type Payload interface {
	Kind() PayloadKind
}

// Event is one entry of a room log.
type Event struct {
	ID        uuid.UUID
	From      ConnID
	Timestamp time.Time
	Data      Payload
}

func NewEvent(from ConnID, at time.Time, data Payload) Event {
	return Event{ID: uuid.New(), From: from, Timestamp: at, Data: data}
}

// Clone copies the mutable payloads so a snapshot cannot observe later in-place edits.
func (e Event) Clone() Event {
	switch p := e.Data.(type) {
	case *MessagePayload:
		cp := *p
		if p.ReplyTo != nil {
			reply := *p.ReplyTo
			cp.ReplyTo = &reply
		}
		e.Data = &cp
	}
	return e
}

// MessagePayload is the only variant mutated in place (edit, tombstone), hence a pointer.
type MessagePayload struct {
	Content string `json:"content"`
	Edited  bool   `json:"edited"`
	Deleted bool   `json:"deleted"`
	ReplyTo *Reply `json:"reply_to,omitempty"`
}

func (*MessagePayload) Kind() PayloadKind { return KindMessage }

// Tombstone redacts the message while keeping its position and id.
func (m *MessagePayload) Tombstone() {
	m.Content = ""
	m.Deleted = true
}

func (m *MessagePayload) Edit(content string) {
	m.Content = content
	m.Edited = true
}

type Dimensions struct {
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

type ImagePayload struct {
	Data       string      `json:"data"`
	Filename   string      `json:"filename"`
	MimeType   string      `json:"mime_type"`
	Size       int         `json:"size"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	ReplyTo    *Reply      `json:"reply_to,omitempty"`
}

func (ImagePayload) Kind() PayloadKind { return KindImage }

type MessageEditPayload struct {
	MessageID  uuid.UUID `json:"message_id"`
	NewContent string    `json:"new_content"`
}

func (MessageEditPayload) Kind() PayloadKind { return KindMessageEdit }

type MessageDeletePayload struct {
	MessageID uuid.UUID `json:"message_id"`
}

func (MessageDeletePayload) Kind() PayloadKind { return KindMessageDelete }

type ReactionPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	Reaction  string    `json:"reaction"`
}

func (ReactionPayload) Kind() PayloadKind { return KindReaction }

type ReactionRemovePayload struct {
	MessageID uuid.UUID `json:"message_id"`
	Reaction  string    `json:"reaction"`
}

func (ReactionRemovePayload) Kind() PayloadKind { return KindReactionRemove }

type UserJoinPayload struct {
	UserID   ConnID  `json:"user_id"`
	Username *string `json:"username,omitempty"`
}

func (UserJoinPayload) Kind() PayloadKind { return KindUserJoin }

type UserLeavePayload struct {
	UserID   ConnID  `json:"user_id"`
	Username *string `json:"username,omitempty"`
}

func (UserLeavePayload) Kind() PayloadKind { return KindUserLeave }

type MessageStarPayload struct {
	MessageID uuid.UUID `json:"message_id"`
}

func (MessageStarPayload) Kind() PayloadKind { return KindMessageStar }

type MessageUnstarPayload struct {
	MessageID uuid.UUID `json:"message_id"`
}

func (MessageUnstarPayload) Kind() PayloadKind { return KindMessageUnstar }
