package ports

import "context"

// Notifier delivers human-readable event messages, best-effort. Notify must
// never block beyond dispatch and never surface delivery failures to the
// caller; failures are logged by the implementation and swallowed.
type Notifier interface {
	Notify(ctx context.Context, subject, message string)
}
