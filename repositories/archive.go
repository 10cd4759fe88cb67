//go:generate go run go.uber.org/mock/mockgen -source=archive.go -destination=../mocks/mock_archive_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IArchiveRepository interface {
	StoreEvent(event ArchivedEvent) error
	GetEvents(room domain.RoomID, cursor *string) ([]ArchivedEvent, *string, error)
}

// ArchivedEvent is a logged room event as written to disk.
type ArchivedEvent struct {
	Room  domain.RoomID `json:"room"`
	Event domain.Event  `json:"event"`
}

// ArchiveRepository keeps an append-only copy of every logged event.
// It is an audit trail, nothing reads it back into the room registry.
type ArchiveRepository struct {
	db          *badger.DB
	log         *slog.Logger
	limitEvents *int
}

func NewArchiveRepository(db *badger.DB, log *slog.Logger, limitEvents *int) ArchiveRepository {
	return ArchiveRepository{db: db, log: log, limitEvents: limitEvents}
}

func archivePrefix(room domain.RoomID) string {
	return fmt.Sprintf("evt:%s:", room)
}

// StoreEvent writes the event under "evt:{room}:{timestamp_padded}:{uuid}".
// The 19-digit padding keeps lexicographical order equal to chronological order,
// the uuid separates events stamped within the same nanosecond.
func (a ArchiveRepository) StoreEvent(archived ArchivedEvent) error {
	key := fmt.Sprintf("%s%019d:%s",
		archivePrefix(archived.Room),
		archived.Event.Timestamp.UnixNano(),
		archived.Event.ID,
	)
	bytes, err := json.Marshal(archived)
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetEvents pages backwards through a room's archive, newest first.
// The returned cursor is the key suffix of the last event read; pass it back to continue.
func (a ArchiveRepository) GetEvents(room domain.RoomID, cursor *string) ([]ArchivedEvent, *string, error) {
	var values [][]byte
	var lastKey string
	err := a.db.View(func(txn *badger.Txn) error {
		prefixStr := archivePrefix(room)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Highest possible timestamp so the reverse scan starts at the newest entry
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999;")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if a.limitEvents != nil && len(values) == *a.limitEvents {
				a.log.Debug("Archive page limit reached", "limit", *a.limitEvents)
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	events := make([]ArchivedEvent, 0, len(values))
	for _, value := range values {
		var archived ArchivedEvent
		if err = json.Unmarshal(value, &archived); err != nil {
			return nil, nil, err
		}
		events = append(events, archived)
	}
	if len(events) == 0 {
		return events, nil, nil
	}
	return events, lo.ToPtr(lastKey), nil
}
