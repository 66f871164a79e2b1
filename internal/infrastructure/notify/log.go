package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier is the degraded sink used when no transport is configured. The
// attempt is still recorded locally, there is just no external delivery.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, subject, message string) {
	n.logger.Info().Str("subject", subject).Str("message", message).Msg("notification (no transport configured)")
}
