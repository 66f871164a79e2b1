package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fixitnow/fixitnow/internal/api/metrics"
	"github.com/fixitnow/fixitnow/internal/core/ports"
)

// Deduper abstracts the duplicate-suppression store (Redis).
type Deduper interface {
	Seen(ctx context.Context, subject, message string) (bool, error)
	Mark(ctx context.Context, subject, message string) error
}

// Deduped wraps a Notifier and drops notifications already sent recently.
// Dedup store failures are logged and the notification is sent anyway.
type Deduped struct {
	next   ports.Notifier
	dedup  Deduper
	logger zerolog.Logger
}

func NewDeduped(next ports.Notifier, dedup Deduper, logger zerolog.Logger) *Deduped {
	return &Deduped{next: next, dedup: dedup, logger: logger}
}

func (d *Deduped) Notify(ctx context.Context, subject, message string) {
	seen, err := d.dedup.Seen(ctx, subject, message)
	if err != nil {
		d.logger.Warn().Err(err).Str("subject", subject).Msg("dedup check failed, notifying anyway")
	} else if seen {
		metrics.NotificationsTotal.WithLabelValues("suppressed").Inc()
		d.logger.Debug().Str("subject", subject).Msg("duplicate notification suppressed")
		return
	}

	if markErr := d.dedup.Mark(ctx, subject, message); markErr != nil {
		d.logger.Warn().Err(markErr).Str("subject", subject).Msg("failed to set dedup key")
	}

	d.next.Notify(ctx, subject, message)
}
