package notify

import (
	"context"

	"bugtracker/backend/app/metrics"
	"bugtracker/backend/app/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Outbox accepts notifications from request handlers.
type Outbox struct {
	queue   Queue
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewOutbox(q Queue, m *metrics.Metrics, logger zerolog.Logger) *Outbox {
	return &Outbox{queue: q, metrics: m, logger: logger}
}

// Notify enqueues m and returns. The enqueue outlives cancellation of ctx,
// and a failure to enqueue is logged rather than returned.
func (o *Outbox) Notify(ctx context.Context, m Message) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := o.queue.Push(context.WithoutCancel(ctx), m); err != nil {
		o.logger.Warn().Err(err).Str("notification", m.ID).Str("event", m.Event).Uint("bug", m.BugID).Msg("notification dropped")
		o.metrics.NotificationResult(models.NotificationDropped)
	}
}
