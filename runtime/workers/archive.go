package workers

import (
	"chat-hub/observability"
	"chat-hub/repositories"
	"context"
	"log/slog"
)

// ArchiveWorker drains the archive queue into the repository.
// A failed write is logged and counted, the event is lost for the archive only.
type ArchiveWorker struct {
	log        *slog.Logger
	repository repositories.IArchiveRepository
	events     <-chan repositories.ArchivedEvent
	metrics    *observability.Metrics
}

func NewArchiveWorker(log *slog.Logger, repository repositories.IArchiveRepository,
	events <-chan repositories.ArchivedEvent, metrics *observability.Metrics) *ArchiveWorker {
	return &ArchiveWorker{log: log, repository: repository, events: events, metrics: metrics}
}

func (w *ArchiveWorker) Run(ctx context.Context) error {
	for {
		select {
		case archived := <-w.events:
			w.store(archived)
		case <-ctx.Done():
			w.drain()
			w.log.Debug("Context done, archive worker stopped")
			return nil
		}
	}
}

// drain writes whatever is already queued, without waiting for more.
func (w *ArchiveWorker) drain() {
	for {
		select {
		case archived := <-w.events:
			w.store(archived)
		default:
			return
		}
	}
}

func (w *ArchiveWorker) store(archived repositories.ArchivedEvent) {
	if err := w.repository.StoreEvent(archived); err != nil {
		w.log.Error("Cannot archive event", "room", archived.Room, "event", archived.Event.ID, "error", err)
		w.metrics.Archived(observability.OutcomeFailed)
		return
	}
	w.metrics.Archived(observability.OutcomeOK)
}
