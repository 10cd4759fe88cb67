package sink

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/repositories"
	"context"
	"log/slog"
)

// ArchiveSink hands logged events to the archive worker.
// It never waits for the disk: when the worker lags behind, the event is not archived.
type ArchiveSink struct {
	events chan<- repositories.ArchivedEvent
	log    *slog.Logger
}

func NewArchiveSink(events chan<- repositories.ArchivedEvent, log *slog.Logger) ArchiveSink {
	return ArchiveSink{events: events, log: log}
}

func (a ArchiveSink) Consume(ctx context.Context, room domain.RoomID, e domain.Event) error {
	select {
	case a.events <- repositories.ArchivedEvent{Room: room, Event: e}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		a.log.Warn("Archive queue full, event not archived", "room", room, "event", e.ID)
		return errors.ErrSinkFull
	}
}
