package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
	"fmt"
	"sync"
)

var _ contract.IRegistry = (*Registry)(nil)

// Registry is the broadcast gateway: it knows the live outbound sink of every connection.
// Room membership lives in the room registry, a Registry only resolves a connection id
// into the queue the transport drains.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]contract.ConnectionSink
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnID]contract.ConnectionSink),
	}
}

// Register attaches the connection's sink. Registering twice replaces the sink.
func (r *Registry) Register(conn domain.ConnID, sink contract.ConnectionSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conn] = sink
}

func (r *Registry) Unregister(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, conn)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Deliver hands n to the connection's sink.
// A connection that is already gone yields ErrConnectionUnknown.
func (r *Registry) Deliver(ctx context.Context, conn domain.ConnID, n event.Notification) error {
	r.mu.RLock()
	sink, ok := r.sessions[conn]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrConnectionUnknown, conn)
	}
	return sink.Consume(ctx, n)
}
