package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payloads travel externally tagged: {"Message": {...}}.

type wireEvent struct {
	ID        uuid.UUID                  `json:"id"`
	From      ConnID                     `json:"from"`
	Timestamp time.Time                  `json:"timestamp"`
	Data      map[string]json.RawMessage `json:"data"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	data, err := MarshalPayload(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		ID        uuid.UUID       `json:"id"`
		From      ConnID          `json:"from"`
		Timestamp time.Time       `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}{e.ID, e.From, e.Timestamp, data})
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	raw, err := json.Marshal(w.Data)
	if err != nil {
		return err
	}
	payload, err := UnmarshalPayload(raw)
	if err != nil {
		return err
	}
	*e = Event{ID: w.ID, From: w.From, Timestamp: w.Timestamp, Data: payload}
	return nil
}

func MarshalPayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil payload")
	}
	return json.Marshal(map[PayloadKind]Payload{p.Kind(): p})
}

// UnmarshalPayload decodes a single-key tagged payload.
func UnmarshalPayload(b []byte) (Payload, error) {
	var tagged map[PayloadKind]json.RawMessage
	if err := json.Unmarshal(b, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("payload must carry exactly one variant, got %d", len(tagged))
	}
	for kind, raw := range tagged {
		payload, err := newPayload(kind)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(raw, payload); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", kind, err)
		}
		return deref(payload), nil
	}
	return nil, nil
}

func newPayload(kind PayloadKind) (Payload, error) {
	switch kind {
	case KindMessage:
		return &MessagePayload{}, nil
	case KindImage:
		return &ImagePayload{}, nil
	case KindMessageEdit:
		return &MessageEditPayload{}, nil
	case KindMessageDelete:
		return &MessageDeletePayload{}, nil
	case KindReaction:
		return &ReactionPayload{}, nil
	case KindReactionRemove:
		return &ReactionRemovePayload{}, nil
	case KindUserJoin:
		return &UserJoinPayload{}, nil
	case KindUserLeave:
		return &UserLeavePayload{}, nil
	case KindMessageStar:
		return &MessageStarPayload{}, nil
	case KindMessageUnstar:
		return &MessageUnstarPayload{}, nil
	default:
		return nil, fmt.Errorf("unknown payload variant %q", kind)
	}
}

// deref turns decoding targets back into the value variants; Message stays a pointer.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *ImagePayload:
		return *v
	case *MessageEditPayload:
		return *v
	case *MessageDeletePayload:
		return *v
	case *ReactionPayload:
		return *v
	case *ReactionRemovePayload:
		return *v
	case *UserJoinPayload:
		return *v
	case *UserLeavePayload:
		return *v
	case *MessageStarPayload:
		return *v
	case *MessageUnstarPayload:
		return *v
	default:
		return p
	}
}
