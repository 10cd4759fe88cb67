//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker lifecycle events,
// avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ConnectionSink is the outbound queue of one connection, owned by the transport.
// Consume must not block on network I/O.
type ConnectionSink interface {
	Consume(ctx context.Context, n event.Notification) error
}

// Gateway delivers a notification to one connection.
// Delivery is best effort: an error means this connection missed it, nothing more.
type Gateway interface {
	Deliver(ctx context.Context, conn domain.ConnID, n event.Notification) error
}

// EventSink observes every logged event, in log order per room.
type EventSink interface {
	Consume(ctx context.Context, room domain.RoomID, e domain.Event) error
}

type IRegistry interface {
	Gateway
	Register(conn domain.ConnID, sink ConnectionSink)
	Unregister(conn domain.ConnID)
	Count() int
}
