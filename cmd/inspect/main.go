// Command inspect prints the archived events of a room, newest first.
package main

import (
	"chat-hub/domain"
	"chat-hub/repositories"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "", "Path to the archive (ARCHIVE_FILEPATH)")
	room := flag.String("room", "", "Room id to print")
	limit := flag.Int("limit", 50, "Events per page")
	cursor := flag.String("cursor", "", "Continue after this cursor")
	flag.Parse()

	if *dbPath == "" || *room == "" {
		color.Red.Println("both -db and -room are required")
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*dbPath, domain.RoomID(*room), *limit, *cursor); err != nil {
		color.Red.Printf("inspect failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, room domain.RoomID, limit int, cursor string) error {
	db, err := badger.Open(badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer db.Close()

	repository := repositories.NewArchiveRepository(db, logs.GetLoggerFromLevel(slog.LevelWarn), &limit)
	var from *string
	if cursor != "" {
		from = &cursor
	}
	events, next, err := repository.GetEvents(room, from)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		color.Yellow.Printf("No archived event for room %s\n", room)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Timestamp", "ID", "From", "Kind", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, archived := range events {
		e := archived.Event
		table.Append([]string{
			e.Timestamp.Format("2006-01-02 15:04:05"),
			shortID(e.ID.String()),
			string(e.From),
			string(e.Data.Kind()),
			detail(e.Data),
		})
	}
	table.Render()

	if next != nil && len(events) == limit {
		color.Cyan.Printf("next page: -cursor %s\n", *next)
	}
	return nil
}

func detail(p domain.Payload) string {
	switch v := p.(type) {
	case *domain.MessagePayload:
		if v.Deleted {
			return "(deleted)"
		}
		return domain.Preview(v.Content)
	case domain.ImagePayload:
		return fmt.Sprintf("%s %s %d bytes", v.Filename, v.MimeType, v.Size)
	case domain.ReactionPayload:
		return fmt.Sprintf("%s on %s", v.Reaction, shortID(v.MessageID.String()))
	case domain.ReactionRemovePayload:
		return fmt.Sprintf("-%s on %s", v.Reaction, shortID(v.MessageID.String()))
	case domain.MessageStarPayload:
		return shortID(v.MessageID.String())
	case domain.MessageUnstarPayload:
		return shortID(v.MessageID.String())
	case domain.UserJoinPayload:
		return name(v.Username)
	case domain.UserLeavePayload:
		return name(v.Username)
	default:
		return ""
	}
}

func name(username *string) string {
	if username == nil {
		return "(anonymous)"
	}
	return strings.TrimSpace(*username)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
