package repositories

import (
	"chat-hub/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openArchive(t *testing.T, limit *int) ArchiveRepository {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewArchiveRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug), limit)
}

func archived(room domain.RoomID, at time.Time, content string) ArchivedEvent {
	return ArchivedEvent{Room: room, Event: domain.NewEvent("c1", at, &domain.MessagePayload{Content: content})}
}

func TestArchiveRepository_NewestFirst(t *testing.T) {
	req := require.New(t)
	repository := openArchive(t, nil)
	at := time.Now().UTC()

	// Given three events stored out of order
	events := []ArchivedEvent{
		archived("r", at.Add(time.Minute), "second"),
		archived("r", at, "first"),
		archived("r", at.Add(2*time.Minute), "third"),
	}
	for _, e := range events {
		req.NoError(repository.StoreEvent(e))
	}

	// When reading the room
	fetched, cursor, err := repository.GetEvents("r", nil)

	// Then they come back newest first
	req.NoError(err)
	req.NotNil(cursor)
	req.Len(fetched, 3)
	req.Equal("third", fetched[0].Event.Data.(*domain.MessagePayload).Content)
	req.Equal("second", fetched[1].Event.Data.(*domain.MessagePayload).Content)
	req.Equal("first", fetched[2].Event.Data.(*domain.MessagePayload).Content)
	req.Equal(events[1].Event.ID, fetched[2].Event.ID)
}

func TestArchiveRepository_Paging(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := openArchive(t, &limit)
	at := time.Now().UTC()
	for i, content := range []string{"a", "b", "c"} {
		req.NoError(repository.StoreEvent(archived("r", at.Add(time.Duration(i)*time.Second), content)))
	}

	// When reading the first page
	page, cursor, err := repository.GetEvents("r", nil)
	req.NoError(err)
	req.Len(page, limit)
	req.Equal("c", page[0].Event.Data.(*domain.MessagePayload).Content)

	// Then the cursor leads to the rest
	rest, next, err := repository.GetEvents("r", cursor)
	req.NoError(err)
	req.Len(rest, 1)
	req.Equal("a", rest[0].Event.Data.(*domain.MessagePayload).Content)
	req.NotNil(next)

	// And past the end there is nothing left
	empty, last, err := repository.GetEvents("r", next)
	req.NoError(err)
	req.Empty(empty)
	req.Nil(last)
}

func TestArchiveRepository_RoomIsolation(t *testing.T) {
	req := require.New(t)
	repository := openArchive(t, nil)
	at := time.Now().UTC()
	req.NoError(repository.StoreEvent(archived("r1", at, "one")))
	req.NoError(repository.StoreEvent(archived("r2", at, "two")))

	fetched, _, err := repository.GetEvents("r1", nil)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal(domain.RoomID("r1"), fetched[0].Room)
}
