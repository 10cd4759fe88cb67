package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/repositories"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

// recorder is a gateway keeping every notification per connection, in arrival order.
type recorder struct {
	mu  sync.Mutex
	got map[domain.ConnID][]event.Notification
}

func newRecorder() *recorder {
	return &recorder{got: make(map[domain.ConnID][]event.Notification)}
}

func (r *recorder) Deliver(_ context.Context, conn domain.ConnID, n event.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got[conn] = append(r.got[conn], n)
	return nil
}

func (r *recorder) of(conn domain.ConnID) []event.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Notification(nil), r.got[conn]...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = make(map[domain.ConnID][]event.Notification)
}

// events keeps the room events seen by conn.
func (r *recorder) events(conn domain.ConnID) []domain.Event {
	return lo.FilterMap(r.of(conn), func(n event.Notification, _ int) (domain.Event, bool) {
		re, ok := n.(event.RoomEvent)
		return re.Event, ok
	})
}

func (r *recorder) kinds(conn domain.ConnID) []domain.PayloadKind {
	return lo.Map(r.events(conn), func(e domain.Event, _ int) domain.PayloadKind {
		return e.Data.Kind()
	})
}

func (r *recorder) topics(conn domain.ConnID) []event.Topic {
	return lo.Map(r.of(conn), func(n event.Notification, _ int) event.Topic {
		return n.Topic()
	})
}

type harness struct {
	ctx          context.Context
	store        *repositories.Store
	gateway      *recorder
	orchestrator *Orchestrator
}

func newHarness(t *testing.T) harness {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := repositories.NewStore()
	gateway := newRecorder()
	engine := NewEngine(log, store, nil, EngineConfig{MaxContentLength: 500, MaxImageBytes: 1024})
	fanout := NewFanout(log, gateway, time.Second, nil)
	return harness{
		ctx:          context.Background(),
		store:        store,
		gateway:      gateway,
		orchestrator: NewOrchestrator(log, store, engine, fanout),
	}
}

func message(content string) *domain.MessagePayload {
	return &domain.MessagePayload{Content: content}
}

// lastMessage returns the last Message event seen by conn.
func (h harness) lastMessage(conn domain.ConnID) domain.Event {
	events := h.gateway.events(conn)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Data.Kind() == domain.KindMessage {
			return events[i]
		}
	}
	return domain.Event{}
}
