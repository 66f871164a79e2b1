package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type recordingNotifier struct {
	calls []string
}

func (n *recordingNotifier) Notify(_ context.Context, subject, message string) {
	n.calls = append(n.calls, subject+"|"+message)
}

type stubDeduper struct {
	seen    map[string]bool
	seenErr error
	markErr error
}

func newStubDeduper() *stubDeduper {
	return &stubDeduper{seen: make(map[string]bool)}
}

func (d *stubDeduper) Seen(_ context.Context, subject, message string) (bool, error) {
	if d.seenErr != nil {
		return false, d.seenErr
	}
	return d.seen[subject+"|"+message], nil
}

func (d *stubDeduper) Mark(_ context.Context, subject, message string) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.seen[subject+"|"+message] = true
	return nil
}

func TestDeduped_SuppressesRepeats(t *testing.T) {
	next := &recordingNotifier{}
	d := NewDeduped(next, newStubDeduper(), zerolog.Nop())
	ctx := context.Background()

	d.Notify(ctx, "Service Status Update", "Service service_01 status updated to: scheduled")
	d.Notify(ctx, "Service Status Update", "Service service_01 status updated to: scheduled")

	if len(next.calls) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(next.calls))
	}
}

func TestDeduped_DistinctMessagesAllPass(t *testing.T) {
	next := &recordingNotifier{}
	d := NewDeduped(next, newStubDeduper(), zerolog.Nop())
	ctx := context.Background()

	d.Notify(ctx, "Service Status Update", "Service service_01 status updated to: scheduled")
	d.Notify(ctx, "Service Status Update", "Service service_01 status updated to: completed")
	d.Notify(ctx, "New Service Request", "Service service_01 status updated to: scheduled")

	if len(next.calls) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(next.calls))
	}
}

func TestDeduped_DedupFailureStillNotifies(t *testing.T) {
	next := &recordingNotifier{}
	dedup := newStubDeduper()
	dedup.seenErr = errors.New("redis down")
	dedup.markErr = errors.New("redis down")
	d := NewDeduped(next, dedup, zerolog.Nop())

	d.Notify(context.Background(), "New Service Request", "msg")
	d.Notify(context.Background(), "New Service Request", "msg")

	// With the dedup store down, duplicates are the lesser evil.
	if len(next.calls) != 2 {
		t.Fatalf("expected 2 deliveries when dedup is down, got %d", len(next.calls))
	}
}
