package audit

import (
	"context"

	"salesrep_sync/internal/events"
	"salesrep_sync/platform/logger"
)

// Recorder turns sync events into audit entries.
type Recorder struct {
	store Store
	log   *logger.Logger
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store Store, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Discard()
	}
	return &Recorder{store: store, log: log}
}

// RegisterHandlers subscribes the recorder to sync outcomes.
func (r *Recorder) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.SalesRepAssigned{}.EventName(), r)
	bus.Subscribe(events.SalesRepSyncFailed{}.EventName(), r)
}

// Handle routes events to the store.
func (r *Recorder) Handle(ctx context.Context, event events.Event) error {
	var entry Entry
	switch e := event.(type) {
	case events.SalesRepAssigned:
		entry = Entry{
			Outcome:       OutcomeAssigned,
			CustomerEmail: e.CustomerEmail,
			CustomerID:    e.CustomerID,
			Identifier:    e.Identifier,
			RepID:         e.RepID,
			RepHandle:     e.RepHandle,
			Fallback:      e.Fallback,
			RequestID:     e.RequestID,
			OccurredAt:    e.OccurredAt(),
		}
	case events.SalesRepSyncFailed:
		entry = Entry{
			Outcome:       OutcomeFailed,
			CustomerEmail: e.CustomerEmail,
			Identifier:    e.Identifier,
			FailedAt:      e.FailedAt,
			ErrorKind:     e.Kind,
			Message:       e.Message,
			RequestID:     e.RequestID,
			OccurredAt:    e.OccurredAt(),
		}
	default:
		return nil
	}

	if err := r.store.Insert(ctx, entry); err != nil {
		r.log.WithContext(ctx).Error("failed to record sync outcome", "outcome", entry.Outcome, "customer_email", entry.CustomerEmail, "error", err)
		return err
	}
	return nil
}
