package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/observability"
	"context"
	"log/slog"
	"time"
)

// Fanout delivers a batch to its recipients and forwards logged events to the sinks.
//
// Delivery is best effort: a recipient that is gone or too slow misses the notification,
// it never fails the request nor the other recipients. Sinks are observers of the log
// (archive) and are fed in the same per-room order as the members.
type Fanout struct {
	log     *slog.Logger
	gateway contract.Gateway
	sinks   []contract.EventSink
	timeout time.Duration
	metrics *observability.Metrics
}

func NewFanout(log *slog.Logger, gateway contract.Gateway, timeout time.Duration, metrics *observability.Metrics) *Fanout {
	return &Fanout{log: log, gateway: gateway, timeout: timeout, metrics: metrics}
}

func (f *Fanout) Add(sinks ...contract.EventSink) *Fanout {
	f.sinks = append(f.sinks, sinks...)
	return f
}

func (f *Fanout) Publish(ctx context.Context, b Batch) {
	for _, d := range b.Deliveries {
		for _, conn := range d.Recipients {
			f.deliver(ctx, conn, d)
		}
		if d.Logged == nil {
			continue
		}
		for _, sink := range f.sinks {
			if err := sink.Consume(ctx, b.Room, *d.Logged); err != nil {
				f.log.Warn("Sink rejected event", "room", b.Room, "event", d.Logged.ID, "error", err)
			}
		}
	}
}

func (f *Fanout) deliver(ctx context.Context, conn domain.ConnID, d Delivery) {
	deliverCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		deliverCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	err := f.gateway.Deliver(deliverCtx, conn, d.Notification)
	switch {
	case err == nil:
		f.metrics.Delivery(observability.OutcomeOK)
	case errors.Is(err, errors.ErrConnectionUnknown):
		f.log.Debug("Recipient already gone", "conn", conn, "topic", d.Notification.Topic())
		f.metrics.Delivery(observability.OutcomeDropped)
	default:
		f.log.Warn("Delivery failed", "conn", conn, "topic", d.Notification.Topic(), "error", err)
		f.metrics.Delivery(observability.OutcomeFailed)
	}
}
