package auditlog

import (
	"context"
	"log/slog"
)

// Worker drains the mirror inbox into a sink. Export is best effort:
// a failed publish is logged and the loop keeps going.
type Worker struct {
	sink   Sink
	inbox  <-chan Entry
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Entry, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-w.inbox:
			if err := w.sink.Publish(ctx, e); err != nil {
				w.logger.ErrorContext(ctx, "audit entry not exported",
					"entry_id", e.ID,
					"action", string(e.Action),
					"error", err,
				)
			}
		}
	}
}
