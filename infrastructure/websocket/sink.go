package websocket

import (
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
)

// Sink is the outbound queue of one socket. The fanout fills it, the write pump drains it.
type Sink struct {
	Notifications chan event.Notification
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Notifications: make(chan event.Notification, bufferSize)}
}

// Consume never waits on the network: a full queue drops the notification for this
// connection only.
func (s *Sink) Consume(ctx context.Context, n event.Notification) error {
	select {
	case s.Notifications <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}
