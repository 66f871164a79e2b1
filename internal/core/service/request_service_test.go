package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixitnow/fixitnow/internal/core/domain"
	"github.com/fixitnow/fixitnow/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

type stubRequestStore struct {
	requests  map[string]*domain.ServiceRequest
	createErr error // if set, Create returns this error
	updateErr error // if set, UpdateFields returns this error
}

func newStubRequestStore() *stubRequestStore {
	return &stubRequestStore{requests: make(map[string]*domain.ServiceRequest)}
}

func (s *stubRequestStore) Create(_ context.Context, req *domain.ServiceRequest) (ports.StoreResult, error) {
	if s.createErr != nil {
		return ports.StoreDurable, s.createErr
	}
	if _, exists := s.requests[req.ID]; exists {
		return ports.StoreDurable, domain.ErrRequestExists
	}
	clone := *req
	s.requests[req.ID] = &clone
	return ports.StoreDurable, nil
}

func (s *stubRequestStore) Get(_ context.Context, id string) (*domain.ServiceRequest, ports.StoreResult, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, ports.StoreDurable, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, ports.StoreDurable, nil
}

func (s *stubRequestStore) Query(_ context.Context, filter ports.RequestFilter) ([]*domain.ServiceRequest, ports.StoreResult, error) {
	var out []*domain.ServiceRequest
	for _, req := range s.requests {
		if filter.Matches(req) {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, ports.StoreDurable, nil
}

// UpdateFields enforces the expect precondition the same way the real
// backends do, so conflict paths are exercised end to end.
func (s *stubRequestStore) UpdateFields(_ context.Context, id string, patch ports.RequestPatch, expect ports.UpdateExpect) (ports.StoreResult, error) {
	if s.updateErr != nil {
		return ports.StoreDurable, s.updateErr
	}
	req, ok := s.requests[id]
	if !ok {
		return ports.StoreDurable, domain.ErrRequestNotFound
	}
	if expect.Status != "" && req.Status != expect.Status {
		return ports.StoreDurable, domain.ErrConflict
	}
	if expect.Unassigned && req.Assigned() {
		return ports.StoreDurable, domain.ErrConflict
	}

	if patch.Status != nil {
		req.Status = *patch.Status
	}
	if patch.ServiceProvider != nil {
		req.ServiceProvider = *patch.ServiceProvider
	}
	if patch.StartDate != nil {
		v := *patch.StartDate
		req.StartDate = &v
	}
	if patch.Cost != nil {
		v := *patch.Cost
		req.Cost = &v
	}
	if patch.Duration != nil {
		v := *patch.Duration
		req.Duration = &v
	}
	if patch.Rating != nil {
		v := *patch.Rating
		req.Rating = &v
	}
	if !patch.UpdatedAt.IsZero() {
		req.UpdatedAt = patch.UpdatedAt
	}
	return ports.StoreDurable, nil
}

// recordingNotifier captures every notification for assertion.
type recordingNotifier struct {
	subjects []string
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, subject, message string) {
	n.subjects = append(n.subjects, subject)
	n.messages = append(n.messages, message)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var (
	alice = ports.Actor{Username: "alice", Role: domain.RoleHomeowner}
	bob   = ports.Actor{Username: "bob", Role: domain.RoleServiceProvider}
	carol = ports.Actor{Username: "carol", Role: domain.RoleServiceProvider}
)

func newService(store ports.RequestStore) (*RequestService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewRequestService(store, notifier, discardLogger), notifier
}

func plumbingInput() ports.CreateRequestInput {
	return ports.CreateRequestInput{
		ServiceType: "plumbing",
		Priority:    "high",
		Description: "Leaking kitchen sink",
	}
}

func createRequest(t *testing.T, svc *RequestService) *domain.ServiceRequest {
	t.Helper()
	req, err := svc.Create(context.Background(), alice, plumbingInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return req
}

func acceptRequest(t *testing.T, svc *RequestService, id string) {
	t.Helper()
	if _, err := svc.Accept(context.Background(), bob, id); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

func startRequest(t *testing.T, svc *RequestService, id string) {
	t.Helper()
	if _, err := svc.Start(context.Background(), bob, id, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func completeRequest(t *testing.T, svc *RequestService, id string, cost float64) {
	t.Helper()
	if _, err := svc.Complete(context.Background(), bob, id, ports.CompleteInput{Cost: &cost}); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestRequestService_Create_Defaults(t *testing.T) {
	store := newStubRequestStore()
	svc, notifier := newService(store)

	req := createRequest(t, svc)

	if !strings.HasPrefix(req.ID, "service_") {
		t.Errorf("id format wrong: %s", req.ID)
	}
	if req.Status != domain.StatusPending {
		t.Errorf("expected status %q, got %q", domain.StatusPending, req.Status)
	}
	if req.Homeowner != "alice" {
		t.Errorf("expected homeowner alice, got %q", req.Homeowner)
	}
	if req.Assigned() {
		t.Error("new request must be unassigned")
	}
	if req.CreatedAt.IsZero() || req.UpdatedAt.IsZero() {
		t.Error("timestamps must be set")
	}
	if len(notifier.subjects) != 1 || notifier.subjects[0] != "New Service Request" {
		t.Errorf("expected one creation notification, got %v", notifier.subjects)
	}
}

func TestRequestService_Create_ProviderDenied(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	_, err := svc.Create(context.Background(), bob, plumbingInput())
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestRequestService_Create_MissingFields(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	cases := []struct {
		name string
		in   ports.CreateRequestInput
	}{
		{"missing service_type", ports.CreateRequestInput{Priority: "low", Description: "x"}},
		{"missing priority", ports.CreateRequestInput{ServiceType: "electrical", Description: "x"}},
		{"missing description", ports.CreateRequestInput{ServiceType: "electrical", Priority: "low"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), alice, tc.in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestRequestService_Create_PreferredDateLayouts(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	in := plumbingInput()
	in.PreferredDate = "2026-09-01 14:30"
	req, err := svc.Create(context.Background(), alice, in)
	if err != nil {
		t.Fatalf("datetime layout: %v", err)
	}
	want := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	if req.PreferredDate == nil || !req.PreferredDate.Equal(want) {
		t.Errorf("expected %v, got %v", want, req.PreferredDate)
	}

	in.PreferredDate = "2026-09-01"
	if _, err := svc.Create(context.Background(), alice, in); err != nil {
		t.Errorf("date-only layout should be accepted: %v", err)
	}

	in.PreferredDate = "01/09/2026"
	if _, err := svc.Create(context.Background(), alice, in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for bad date, got %v", err)
	}
}

func TestRequestService_Create_StoreError(t *testing.T) {
	store := newStubRequestStore()
	store.createErr = errors.New("db unavailable")
	svc, notifier := newService(store)

	_, err := svc.Create(context.Background(), alice, plumbingInput())
	if err == nil {
		t.Fatal("expected error when store fails, got nil")
	}
	if len(notifier.subjects) != 0 {
		t.Error("failed create must not notify")
	}
}

// ---------------------------------------------------------------------------
// Lifecycle tests
// ---------------------------------------------------------------------------

func TestRequestService_FullLifecycle(t *testing.T) {
	store := newStubRequestStore()
	svc, notifier := newService(store)
	ctx := context.Background()

	req := createRequest(t, svc)

	accepted, err := svc.Accept(ctx, bob, req.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.StatusScheduled || accepted.ServiceProvider != "bob" {
		t.Errorf("after accept: status=%s provider=%s", accepted.Status, accepted.ServiceProvider)
	}

	started, err := svc.Start(ctx, bob, req.ID, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != domain.StatusInProgress || started.StartDate == nil {
		t.Errorf("after start: status=%s startDate=%v", started.Status, started.StartDate)
	}

	cost := 150.0
	completed, err := svc.Complete(ctx, bob, req.ID, ports.CompleteInput{Cost: &cost})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.StatusCompleted {
		t.Errorf("after complete: status=%s", completed.Status)
	}
	if completed.Cost == nil || *completed.Cost != 150.0 {
		t.Errorf("expected cost 150, got %v", completed.Cost)
	}
	if completed.Duration == nil || *completed.Duration < 0 {
		t.Errorf("expected non-negative duration, got %v", completed.Duration)
	}

	rated, err := svc.Rate(ctx, alice, req.ID, 5)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 5 {
		t.Errorf("expected rating 5, got %v", rated.Rating)
	}

	// Create, accept, and complete notify; start and rate do not.
	if len(notifier.subjects) != 3 {
		t.Errorf("expected 3 notifications, got %d (%v)", len(notifier.subjects), notifier.subjects)
	}
}

func TestRequestService_Accept_AlreadyClaimed(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)

	// carol reads the request after bob claimed it: state machine rejects.
	_, err := svc.Accept(context.Background(), carol, req.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestService_Accept_RaceLoserGetsConflict(t *testing.T) {
	store := newStubRequestStore()
	svc, _ := newService(store)

	req := createRequest(t, svc)

	// Simulate carol racing bob: her read saw the request pending and
	// unassigned, but bob's conditional write lands first.
	store.updateErr = domain.ErrConflict
	_, err := svc.Accept(context.Background(), carol, req.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for race loser, got %v", err)
	}
}

func TestRequestService_Accept_ByHomeownerDenied(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	_, err := svc.Accept(context.Background(), alice, req.ID)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestRequestService_Start_OnlyAssignedProvider(t *testing.T) {
	svc, _ := newService(newStubRequestStore())
	ctx := context.Background()

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)

	if _, err := svc.Start(ctx, carol, req.ID, ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("other provider start: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := svc.Start(ctx, alice, req.ID, ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("homeowner start: expected ErrPermissionDenied, got %v", err)
	}
}

func TestRequestService_Start_FromPendingRejected(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	// Assign bob directly without scheduling, so authorization passes and
	// the state machine is what rejects.
	provider := "bob"
	_, _ = svc.store.UpdateFields(context.Background(), req.ID,
		ports.RequestPatch{ServiceProvider: &provider, UpdatedAt: time.Now().UTC()}, ports.UpdateExpect{})

	_, err := svc.Start(context.Background(), bob, req.ID, "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestService_Start_ExplicitDate(t *testing.T) {
	svc, _ := newService(newStubRequestStore())
	ctx := context.Background()

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)

	started, err := svc.Start(ctx, bob, req.ID, "2026-06-02 14:30")
	if err != nil {
		t.Fatalf("start with explicit date: %v", err)
	}
	want := time.Date(2026, 6, 2, 14, 30, 0, 0, time.UTC)
	if started.StartDate == nil || !started.StartDate.Equal(want) {
		t.Errorf("expected start date %v, got %v", want, started.StartDate)
	}
}

func TestRequestService_Start_BadDateFormat(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)

	_, err := svc.Start(context.Background(), bob, req.ID, "14:30 2026-06-02")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestRequestService_Complete_NegativeCost(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)
	startRequest(t, svc, req.ID)

	cost := -10.0
	_, err := svc.Complete(context.Background(), bob, req.ID, ports.CompleteInput{Cost: &cost})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestRequestService_Complete_Twice(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)
	startRequest(t, svc, req.ID)
	completeRequest(t, svc, req.ID, 99.5)

	_, err := svc.Complete(context.Background(), bob, req.ID, ports.CompleteInput{})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on second complete, got %v", err)
	}
}

func TestRequestService_Complete_WithoutCost(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)
	startRequest(t, svc, req.ID)

	completed, err := svc.Complete(context.Background(), bob, req.ID, ports.CompleteInput{})
	if err != nil {
		t.Fatalf("complete without cost: %v", err)
	}
	if completed.Cost != nil {
		t.Errorf("cost must stay unset, got %v", *completed.Cost)
	}
}

func TestRequestService_Complete_NotesInNotification(t *testing.T) {
	svc, notifier := newService(newStubRequestStore())

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)
	startRequest(t, svc, req.ID)

	_, err := svc.Complete(context.Background(), bob, req.ID, ports.CompleteInput{Notes: "replaced the trap"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	last := notifier.messages[len(notifier.messages)-1]
	if !strings.Contains(last, "replaced the trap") {
		t.Errorf("completion notes missing from notification: %q", last)
	}
}

// ---------------------------------------------------------------------------
// Rate tests
// ---------------------------------------------------------------------------

func TestRequestService_Rate_OutOfRange(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)
	startRequest(t, svc, req.ID)
	completeRequest(t, svc, req.ID, 50)

	for _, v := range []int{0, 6} {
		if _, err := svc.Rate(context.Background(), alice, req.ID, v); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("rating %d: expected ErrValidation, got %v", v, err)
		}
	}
}

func TestRequestService_Rate_BeforeCompletion(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	req := createRequest(t, svc)
	_, err := svc.Rate(context.Background(), alice, req.ID, 4)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestService_Rate_OverwriteAllowed(t *testing.T) {
	svc, _ := newService(newStubRequestStore())
	ctx := context.Background()

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)
	startRequest(t, svc, req.ID)
	completeRequest(t, svc, req.ID, 50)

	if _, err := svc.Rate(ctx, alice, req.ID, 3); err != nil {
		t.Fatalf("first rate: %v", err)
	}
	rated, err := svc.Rate(ctx, alice, req.ID, 5)
	if err != nil {
		t.Fatalf("second rate: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 5 {
		t.Errorf("expected overwritten rating 5, got %v", rated.Rating)
	}
}

// ---------------------------------------------------------------------------
// List and stats tests
// ---------------------------------------------------------------------------

func TestRequestService_ListForUser_HomeownerSeesOwn(t *testing.T) {
	svc, _ := newService(newStubRequestStore())
	ctx := context.Background()

	createRequest(t, svc)
	createRequest(t, svc)
	other := ports.Actor{Username: "mallory", Role: domain.RoleHomeowner}

	mine, err := svc.ListForUser(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Errorf("alice: expected 2, got %d", len(mine))
	}

	theirs, err := svc.ListForUser(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if len(theirs) != 0 {
		t.Errorf("mallory: expected 0, got %d", len(theirs))
	}
}

func TestRequestService_ListForUser_ProviderSeesAssignedAndOpen(t *testing.T) {
	svc, _ := newService(newStubRequestStore())
	ctx := context.Background()

	claimed := createRequest(t, svc)
	acceptRequest(t, svc, claimed.ID)
	open := createRequest(t, svc)

	visible, err := svc.ListForUser(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 2 {
		t.Fatalf("bob: expected assigned + open = 2, got %d", len(visible))
	}

	// carol sees only the open one, not bob's claim.
	visible, err = svc.ListForUser(ctx, carol)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != open.ID {
		t.Errorf("carol: expected only the open request, got %d", len(visible))
	}
}

func TestRequestService_ListForUser_UnknownRole(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	_, err := svc.ListForUser(context.Background(), ports.Actor{Username: "x", Role: "admin"})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestRequestService_Stats(t *testing.T) {
	svc, _ := newService(newStubRequestStore())
	ctx := context.Background()

	// one pending, one scheduled, one completed with cost
	createRequest(t, svc)
	scheduled := createRequest(t, svc)
	acceptRequest(t, svc, scheduled.ID)
	done := createRequest(t, svc)
	acceptRequest(t, svc, done.ID)
	startRequest(t, svc, done.ID)
	completeRequest(t, svc, done.ID, 200)

	stats, err := svc.Stats(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRequests != 3 || stats.Pending != 1 || stats.Scheduled != 1 || stats.Completed != 1 {
		t.Errorf("homeowner stats wrong: %+v", stats)
	}
	if stats.TotalEarnings != 0 {
		t.Errorf("homeowner must not accrue earnings, got %v", stats.TotalEarnings)
	}

	providerStats, err := svc.Stats(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if providerStats.Completed != 1 || providerStats.TotalEarnings != 200 {
		t.Errorf("provider stats wrong: %+v", providerStats)
	}
}

// ---------------------------------------------------------------------------
// Get tests
// ---------------------------------------------------------------------------

func TestRequestService_Get_NotFound(t *testing.T) {
	svc, _ := newService(newStubRequestStore())

	_, err := svc.Get(context.Background(), alice, "service_deadbeef")
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRequestService_Get_OwnershipEnforced(t *testing.T) {
	svc, _ := newService(newStubRequestStore())
	ctx := context.Background()

	req := createRequest(t, svc)
	acceptRequest(t, svc, req.ID)

	if _, err := svc.Get(ctx, alice, req.ID); err != nil {
		t.Errorf("owner get: unexpected error %v", err)
	}
	other := ports.Actor{Username: "mallory", Role: domain.RoleHomeowner}
	if _, err := svc.Get(ctx, other, req.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("other homeowner get: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := svc.Get(ctx, carol, req.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("unassigned provider get of claimed request: expected ErrPermissionDenied, got %v", err)
	}
}
