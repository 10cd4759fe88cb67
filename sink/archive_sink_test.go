package sink

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/repositories"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestArchiveSink_Enqueues(t *testing.T) {
	req := require.New(t)
	events := make(chan repositories.ArchivedEvent, 1)
	sink := NewArchiveSink(events, logs.GetLoggerFromLevel(slog.LevelDebug))
	event := domain.NewEvent("c1", time.Now().UTC(), &domain.MessagePayload{Content: "hi"})

	// When consuming an event
	err := sink.Consume(context.Background(), "r", event)

	// Then it is queued with its room
	req.NoError(err)
	req.Equal(repositories.ArchivedEvent{Room: "r", Event: event}, <-events)
}

func TestArchiveSink_FullQueue_DoesNotBlock(t *testing.T) {
	req := require.New(t)
	events := make(chan repositories.ArchivedEvent, 1)
	sink := NewArchiveSink(events, logs.GetLoggerFromLevel(slog.LevelDebug))
	event := domain.NewEvent("c1", time.Now().UTC(), &domain.MessagePayload{Content: "hi"})
	req.NoError(sink.Consume(context.Background(), "r", event))

	// When the queue is already full
	err := sink.Consume(context.Background(), "r", event)

	// Then the event is dropped
	req.ErrorIs(err, errors.ErrSinkFull)
	req.Len(events, 1)
}
