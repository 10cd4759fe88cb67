package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
)

// OutcomeKind tells the orchestrator whether an outcome enters the room log.
type OutcomeKind uint8

const (
	// Persisted outcomes are appended to the log, then broadcast to the room.
	Persisted OutcomeKind = iota + 1
	// Ephemeral outcomes are only delivered.
	Ephemeral
)

type Audience uint8

const (
	ToRoom Audience = iota + 1
	ToOthers
	ToRequester
)

// Outcome is one accepted result of the engine, in delivery order.
type Outcome struct {
	Kind         OutcomeKind
	Audience     Audience
	Event        domain.Event
	Notification event.Notification
}

func persisted(e domain.Event) Outcome {
	return Outcome{Kind: Persisted, Audience: ToRoom, Event: e}
}

func ephemeral(audience Audience, n event.Notification) Outcome {
	return Outcome{Kind: Ephemeral, Audience: audience, Notification: n}
}

// Delivery is an outcome resolved against the member set captured in the critical section.
type Delivery struct {
	Recipients   []domain.ConnID
	Notification event.Notification
	// Logged is set when the notification carries an event that was appended to the log.
	Logged *domain.Event
}

// Batch is everything one room transaction has to deliver.
// Seq orders batches of the same room, zero means unordered.
type Batch struct {
	Room       domain.RoomID
	Seq        uint64
	Deliveries []Delivery
}
