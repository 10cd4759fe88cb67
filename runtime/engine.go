// Package runtime validates requests against the stores, orders their effects per room
// and hands the resulting notifications to the broadcast gateway.
package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type EngineConfig struct {
	MaxContentLength int
	MaxImageBytes    int
}

// Engine holds the rules of every room operation.
// Its methods run inside the room's critical section: they read and mutate the locked
// room, never block, and return outcomes instead of delivering anything themselves.
type Engine struct {
	log      *slog.Logger
	sessions *repositories.SessionDirectory
	stars    *repositories.StarIndex
	filter   *moderation.Filter
	cfg      EngineConfig
	now      func() time.Time
}

func NewEngine(log *slog.Logger, store *repositories.Store, filter *moderation.Filter, cfg EngineConfig) *Engine {
	return &Engine{
		log:      log,
		sessions: store.Sessions,
		stars:    store.Stars,
		filter:   filter,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) requireMember(room *domain.Room, conn domain.ConnID) error {
	if !room.HasMember(conn) {
		return fmt.Errorf("%w: %s in %s", errors.ErrNotMember, conn, room.ID)
	}
	return nil
}

// Join adds conn, replays the current log to it, then logs the join when it is new.
func (e *Engine) Join(room *domain.Room, conn domain.ConnID) []Outcome {
	added := room.AddMember(conn)
	outcomes := lo.Map(room.Events(), func(item domain.Event, _ int) Outcome {
		return ephemeral(ToRequester, event.RoomEvent{RoomID: room.ID, Event: item})
	})
	if !added {
		return append(outcomes, ephemeral(ToRequester, e.members(room)))
	}
	join := domain.NewEvent(conn, e.now(), domain.UserJoinPayload{UserID: conn, Username: e.sessions.Name(conn)})
	return append(outcomes, persisted(join), ephemeral(ToRoom, e.members(room)))
}

// Leave removes conn; leaving a room one is not in changes nothing.
func (e *Engine) Leave(room *domain.Room, conn domain.ConnID) []Outcome {
	if !room.RemoveMember(conn) {
		return nil
	}
	leave := domain.NewEvent(conn, e.now(), domain.UserLeavePayload{UserID: conn, Username: e.sessions.Name(conn)})
	return []Outcome{persisted(leave), ephemeral(ToRoom, e.members(room))}
}

func (e *Engine) Members(room *domain.Room) []Outcome {
	return []Outcome{ephemeral(ToRequester, e.members(room))}
}

func (e *Engine) members(room *domain.Room) event.RoomMembers {
	return event.RoomMembers{RoomID: room.ID, Members: e.sessions.Members(room.Members())}
}

// Send builds the canonical event for a client payload.
// The client never chooses ids, timestamps, edit flags or reply previews.
func (e *Engine) Send(room *domain.Room, author domain.ConnID, payload domain.Payload) ([]Outcome, error) {
	if err := e.requireMember(room, author); err != nil {
		return nil, err
	}

	var data domain.Payload
	switch p := payload.(type) {
	case *domain.MessagePayload:
		content, err := e.content(p.Content)
		if err != nil {
			return nil, err
		}
		data = &domain.MessagePayload{Content: content, ReplyTo: e.resolveReply(room, p.ReplyTo)}
	case domain.ImagePayload:
		image, err := e.image(p)
		if err != nil {
			return nil, err
		}
		image.ReplyTo = e.resolveReply(room, p.ReplyTo)
		data = image
	case domain.ReactionPayload:
		if strings.TrimSpace(p.Reaction) == "" {
			return nil, fmt.Errorf("%w: empty reaction", errors.ErrInvalidRequest)
		}
		data = p
	case domain.ReactionRemovePayload:
		if strings.TrimSpace(p.Reaction) == "" {
			return nil, fmt.Errorf("%w: empty reaction", errors.ErrInvalidRequest)
		}
		data = p
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnsupportedPayload, payload)
	}

	return []Outcome{persisted(domain.NewEvent(author, e.now(), data))}, nil
}

// resolveReply swaps the client reference for a preview of the original.
// An unknown or non-message target drops the reply silently.
func (e *Engine) resolveReply(room *domain.Room, ref *domain.Reply) *domain.Reply {
	if ref == nil {
		return nil
	}
	original, ok := room.FindEvent(ref.MessageID)
	if !ok {
		return nil
	}
	reply, ok := domain.BuildReply(*original, e.sessions.Name(original.From))
	if !ok {
		return nil
	}
	return &reply
}

// ownMessage resolves a live message of author for edit and delete.
func (e *Engine) ownMessage(room *domain.Room, author domain.ConnID, id uuid.UUID) (*domain.MessagePayload, error) {
	if err := e.requireMember(room, author); err != nil {
		return nil, err
	}
	stored, ok := room.FindEvent(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrMessageNotFound, id)
	}
	if stored.From != author {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotOwner, id)
	}
	message, ok := stored.Data.(*domain.MessagePayload)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", errors.ErrMessageNotFound, id, stored.Data.Kind())
	}
	return message, nil
}

// Edit rewrites the stored message in place. The returned MessageEdit is broadcast only:
// the log entry itself is authoritative for later replays.
func (e *Engine) Edit(room *domain.Room, author domain.ConnID, id uuid.UUID, newContent string) ([]Outcome, error) {
	message, err := e.ownMessage(room, author, id)
	if err != nil {
		return nil, err
	}
	if message.Deleted {
		return nil, fmt.Errorf("%w: %s was deleted", errors.ErrMessageNotFound, id)
	}
	content, err := e.content(newContent)
	if err != nil {
		return nil, err
	}
	message.Edit(content)
	notice := domain.NewEvent(author, e.now(), domain.MessageEditPayload{MessageID: id, NewContent: content})
	return []Outcome{ephemeral(ToRoom, event.RoomEvent{RoomID: room.ID, Event: notice})}, nil
}

// Delete tombstones the stored message in place; deleting a tombstone is a no-op.
func (e *Engine) Delete(room *domain.Room, author domain.ConnID, id uuid.UUID) ([]Outcome, error) {
	message, err := e.ownMessage(room, author, id)
	if err != nil {
		return nil, err
	}
	if message.Deleted {
		return nil, nil
	}
	message.Tombstone()
	notice := domain.NewEvent(author, e.now(), domain.MessageDeletePayload{MessageID: id})
	return []Outcome{ephemeral(ToRoom, event.RoomEvent{RoomID: room.ID, Event: notice})}, nil
}

// starTarget checks membership and that id names a message or an image of this room.
func (e *Engine) starTarget(room *domain.Room, user domain.ConnID, id uuid.UUID) error {
	if err := e.requireMember(room, user); err != nil {
		return err
	}
	stored, ok := room.FindEvent(id)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrMessageNotFound, id)
	}
	switch stored.Data.(type) {
	case *domain.MessagePayload, domain.ImagePayload:
		return nil
	default:
		return fmt.Errorf("%w: %s is a %s", errors.ErrMessageNotFound, id, stored.Data.Kind())
	}
}

// Star logs a MessageStar the first time user stars id.
// A second star returns ErrAlreadyStarred, which callers treat as a no-op.
func (e *Engine) Star(room *domain.Room, user domain.ConnID, id uuid.UUID) ([]Outcome, error) {
	if err := e.starTarget(room, user, id); err != nil {
		return nil, err
	}
	if err := e.stars.Star(room.ID, user, id); err != nil {
		return nil, err
	}
	return []Outcome{persisted(domain.NewEvent(user, e.now(), domain.MessageStarPayload{MessageID: id}))}, nil
}

func (e *Engine) Unstar(room *domain.Room, user domain.ConnID, id uuid.UUID) ([]Outcome, error) {
	if err := e.starTarget(room, user, id); err != nil {
		return nil, err
	}
	if err := e.stars.Unstar(room.ID, user, id); err != nil {
		return nil, err
	}
	return []Outcome{persisted(domain.NewEvent(user, e.now(), domain.MessageUnstarPayload{MessageID: id}))}, nil
}

func (e *Engine) ListStarred(room *domain.Room, user domain.ConnID) ([]Outcome, error) {
	if err := e.requireMember(room, user); err != nil {
		return nil, err
	}
	return []Outcome{ephemeral(ToRequester, event.StarredMessages{
		RoomID:            room.ID,
		StarredMessageIDs: e.stars.List(room.ID, user),
	})}, nil
}

// Typing is relayed to every member but the typist and never logged.
func (e *Engine) Typing(room *domain.Room, user domain.ConnID, started bool) ([]Outcome, error) {
	if err := e.requireMember(room, user); err != nil {
		return nil, err
	}
	indicator := domain.TypingIndicator{UserID: user, Username: e.sessions.Name(user), RoomID: room.ID}
	if started {
		return []Outcome{ephemeral(ToOthers, event.TypingStarted{TypingIndicator: indicator})}, nil
	}
	return []Outcome{ephemeral(ToOthers, event.TypingStopped{TypingIndicator: indicator})}, nil
}

func (e *Engine) content(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty content", errors.ErrInvalidRequest)
	}
	if e.cfg.MaxContentLength > 0 && utf8.RuneCountInString(raw) > e.cfg.MaxContentLength {
		return "", fmt.Errorf("%w: content longer than %d characters", errors.ErrInvalidRequest, e.cfg.MaxContentLength)
	}
	if e.filter == nil {
		return raw, nil
	}
	masked, found := e.filter.Apply(raw)
	if len(found) > 0 {
		e.log.Info("Content censored", "words", len(found), "lang", moderation.Language(raw))
	}
	return masked, nil
}

// image decodes the base64 body and trusts only what it sniffs: mime type and size
// are overwritten with the detected values.
func (e *Engine) image(p domain.ImagePayload) (domain.ImagePayload, error) {
	encoded := p.Data
	if strings.HasPrefix(encoded, "data:") {
		_, encoded, _ = strings.Cut(encoded, ",")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) == 0 {
		return domain.ImagePayload{}, fmt.Errorf("%w: payload is not base64", errors.ErrInvalidImage)
	}
	if e.cfg.MaxImageBytes > 0 && len(raw) > e.cfg.MaxImageBytes {
		return domain.ImagePayload{}, fmt.Errorf("%w: %d bytes over the %d limit", errors.ErrInvalidImage, len(raw), e.cfg.MaxImageBytes)
	}
	mime := mimetype.Detect(raw)
	if !strings.HasPrefix(mime.String(), "image/") {
		return domain.ImagePayload{}, fmt.Errorf("%w: detected %s", errors.ErrInvalidImage, mime.String())
	}
	if p.Dimensions != nil && (p.Dimensions.Width <= 0 || p.Dimensions.Height <= 0) {
		return domain.ImagePayload{}, fmt.Errorf("%w: non positive dimensions", errors.ErrInvalidImage)
	}
	if strings.TrimSpace(p.Filename) == "" {
		p.Filename = "image" + mime.Extension()
	}
	p.MimeType = mime.String()
	p.Size = len(raw)
	p.ReplyTo = nil
	return p, nil
}
