package services

import (
	"context"
	"log/slog"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
)

// EventRecorder streams audit events from a ledger service into an
// EventStore. Persistence is best-effort: a failed save is logged and
// skipped, never blocking the ledger.
type EventRecorder struct {
	ledger *protocol.Service
	store  EventStore
	log    *slog.Logger
	done   chan struct{}
}

// NewEventRecorder creates a recorder. A nil logger uses the default.
func NewEventRecorder(ledger *protocol.Service, store EventStore, log *slog.Logger) *EventRecorder {
	if log == nil {
		log = slog.Default()
	}
	return &EventRecorder{
		ledger: ledger,
		store:  store,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Run persists any events emitted before the recorder started, then
// follows the live stream until ctx is canceled.
func (r *EventRecorder) Run(ctx context.Context) {
	defer close(r.done)

	events := r.ledger.Subscribe(ctx)

	for _, e := range r.ledger.Events() {
		r.save(e)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			r.save(e)
		}
	}
}

// Done is closed when Run returns.
func (r *EventRecorder) Done() <-chan struct{} {
	return r.done
}

func (r *EventRecorder) save(e protocol.Event) {
	if err := r.store.SaveEvent(e); err != nil {
		r.log.Error("persisting audit event", "seq", e.Seq, "kind", e.Kind, "err", err)
	}
}
