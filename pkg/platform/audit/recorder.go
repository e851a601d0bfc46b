package audit

import (
	"context"
	"log/slog"
	"time"

	id "fastpass/pkg/domain"
)

// Recorder is the producer side: domain code emits, the worker drains. Emit
// never blocks; when the inbox is full the event is dropped and logged, since
// activity history must not stall an approval.
type Recorder struct {
	inbox  chan Event
	store  Store
	logger *slog.Logger
}

// NewRecorder builds a recorder with the given inbox capacity.
func NewRecorder(store Store, logger *slog.Logger, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Recorder{
		inbox:  make(chan Event, capacity),
		store:  store,
		logger: logger,
	}
}

// Emit queues an event for persistence.
func (r *Recorder) Emit(ctx context.Context, event Event) {
	event.Fill(time.Now().UTC())
	select {
	case r.inbox <- event:
	default:
		r.logger.WarnContext(ctx, "activity inbox full, dropping event",
			"action", event.Action,
			"user_id", event.UserID,
		)
	}
}

// List returns a user's events, newest first.
func (r *Recorder) List(ctx context.Context, userID id.UserID, limit int) ([]Event, error) {
	return r.store.ListByUser(ctx, userID, limit)
}

// Worker consumes events from the recorder inbox and persists them, fanning
// out to an optional secondary sink.
type Worker struct {
	recorder *Recorder
	sink     Sink
	logger   *slog.Logger
}

// Sink receives every persisted event; used for the Kafka fan-out.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

func NewWorker(recorder *Recorder, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{recorder: recorder, sink: sink, logger: logger}
}

// Run drains the inbox until the context ends. Store failures are logged, not
// fatal: losing one activity row must not take the worker down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.recorder.inbox:
			if err := w.recorder.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist activity event",
					"error", err.Error(),
					"action", event.Action,
				)
				continue
			}
			if w.sink != nil {
				if err := w.sink.Publish(ctx, event); err != nil {
					w.logger.WarnContext(ctx, "failed to publish activity event",
						"error", err.Error(),
						"action", event.Action,
					)
				}
			}
		}
	}
}
