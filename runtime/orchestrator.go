package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/repositories"
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Orchestrator runs every request as one transaction on the room it targets.
//
// Inside the room's critical section the engine validates and mutates, persisted
// outcomes are appended and the recipients are captured. Delivery happens after the
// lock is released, through the room's sequencer, so members observe the log order
// and a joiner always receives its replay before any later broadcast.
type Orchestrator struct {
	log        *slog.Logger
	store      *repositories.Store
	engine     *Engine
	fanout     *Fanout
	sequencers sync.Map // domain.RoomID -> *sequencer
}

func NewOrchestrator(log *slog.Logger, store *repositories.Store, engine *Engine, fanout *Fanout) *Orchestrator {
	return &Orchestrator{log: log, store: store, engine: engine, fanout: fanout}
}

func (o *Orchestrator) sequencer(room domain.RoomID) *sequencer {
	value, _ := o.sequencers.LoadOrStore(room, newSequencer())
	return value.(*sequencer)
}

func (o *Orchestrator) transact(ctx context.Context, conn domain.ConnID, roomID domain.RoomID,
	fn func(room *domain.Room) ([]Outcome, error)) error {
	var batch Batch
	err := o.store.Rooms.Update(roomID, func(room *domain.Room) error {
		outcomes, err := fn(room)
		if err != nil {
			return err
		}
		batch = commit(room, conn, outcomes)
		return nil
	})
	if err != nil {
		return err
	}
	if batch.Seq == 0 {
		return nil
	}
	// Deliveries outlive the request that triggered them.
	deliveryCtx := context.WithoutCancel(ctx)
	o.sequencer(roomID).submit(batch, func(b Batch) {
		o.fanout.Publish(deliveryCtx, b)
	})
	return nil
}

// commit must run inside the room's critical section.
func commit(room *domain.Room, conn domain.ConnID, outcomes []Outcome) Batch {
	if len(outcomes) == 0 {
		return Batch{}
	}
	deliveries := make([]Delivery, 0, len(outcomes))
	for _, out := range outcomes {
		switch out.Kind {
		case Persisted:
			room.Append(out.Event)
			logged := out.Event.Clone()
			deliveries = append(deliveries, Delivery{
				Recipients:   room.Members(),
				Notification: event.RoomEvent{RoomID: room.ID, Event: logged},
				Logged:       &logged,
			})
		case Ephemeral:
			deliveries = append(deliveries, Delivery{
				Recipients:   recipients(room, conn, out.Audience),
				Notification: out.Notification,
			})
		}
	}
	return Batch{Room: room.ID, Seq: room.NextSequence(), Deliveries: deliveries}
}

func recipients(room *domain.Room, conn domain.ConnID, audience Audience) []domain.ConnID {
	switch audience {
	case ToRequester:
		return []domain.ConnID{conn}
	case ToOthers:
		return lo.Without(room.Members(), conn)
	default:
		return room.Members()
	}
}

// reply sends n to conn alone, outside any room ordering.
func (o *Orchestrator) reply(ctx context.Context, conn domain.ConnID, n event.Notification) {
	o.fanout.Publish(ctx, Batch{Deliveries: []Delivery{{Recipients: []domain.ConnID{conn}, Notification: n}}})
}

// Join creates the room on first use, then adds conn and replays the log to it.
func (o *Orchestrator) Join(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, name *string) error {
	if o.store.Rooms.EnsureRoom(roomID, lo.FromPtr(name)) {
		o.log.Info("Room created on join", "room", roomID)
	}
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Join(room, conn), nil
	})
}

// Leave is a no-op for an unknown room or a non member.
func (o *Orchestrator) Leave(ctx context.Context, conn domain.ConnID, roomID domain.RoomID) error {
	err := o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Leave(room, conn), nil
	})
	if errors.Is(err, errors.ErrRoomNotFound) {
		return nil
	}
	return err
}

// Disconnect leaves every room conn is in and forgets its display name.
func (o *Orchestrator) Disconnect(ctx context.Context, conn domain.ConnID) {
	for _, roomID := range o.store.Rooms.RoomsOf(conn) {
		if err := o.Leave(ctx, conn, roomID); err != nil {
			o.log.Warn("Leave on disconnect failed", "conn", conn, "room", roomID, "error", err)
		}
	}
	o.store.Sessions.Remove(conn)
}

func (o *Orchestrator) Send(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, payload domain.Payload) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Send(room, conn, payload)
	})
}

func (o *Orchestrator) Edit(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, id uuid.UUID, content string) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Edit(room, conn, id, content)
	})
}

func (o *Orchestrator) Delete(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, id uuid.UUID) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Delete(room, conn, id)
	})
}

func (o *Orchestrator) Star(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, id uuid.UUID) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Star(room, conn, id)
	})
}

func (o *Orchestrator) Unstar(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, id uuid.UUID) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Unstar(room, conn, id)
	})
}

func (o *Orchestrator) ListStarred(ctx context.Context, conn domain.ConnID, roomID domain.RoomID) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.ListStarred(room, conn)
	})
}

func (o *Orchestrator) GetMembers(ctx context.Context, conn domain.ConnID, roomID domain.RoomID) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Members(room), nil
	})
}

func (o *Orchestrator) Typing(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, started bool) error {
	return o.transact(ctx, conn, roomID, func(room *domain.Room) ([]Outcome, error) {
		return o.engine.Typing(room, conn, started)
	})
}

// SetDisplayName applies to events produced from now on; logged events keep the old name.
func (o *Orchestrator) SetDisplayName(ctx context.Context, conn domain.ConnID, name string) {
	o.store.Sessions.SetName(conn, name)
	o.reply(ctx, conn, event.UsernameSet{Username: name})
}

func (o *Orchestrator) ListRooms(ctx context.Context, conn domain.ConnID) {
	o.reply(ctx, conn, event.RoomList{Rooms: o.store.Rooms.List()})
}

// CreateRoom registers an empty room; the creator still has to join it.
func (o *Orchestrator) CreateRoom(ctx context.Context, conn domain.ConnID, name string) domain.RoomSummary {
	summary := o.store.Rooms.Create(name)
	o.log.Info("Room created", "room", summary.ID, "name", summary.Name, "by", conn)
	o.reply(ctx, conn, event.RoomCreated{Room: summary})
	o.reply(ctx, conn, event.RoomList{Rooms: o.store.Rooms.List()})
	return summary
}

// Reject reports a failed request to its sender. Silent rejections are dropped.
func (o *Orchestrator) Reject(ctx context.Context, conn domain.ConnID, request domain.CommandType, err error) {
	if errors.IsSilent(err) {
		o.log.Debug("Request ignored", "conn", conn, "request", request, "error", err)
		return
	}
	o.log.Debug("Request rejected", "conn", conn, "request", request, "error", err)
	o.reply(ctx, conn, event.Failure{Request: request, Message: errors.Reason(err)})
}
