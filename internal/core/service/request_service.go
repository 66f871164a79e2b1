package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixitnow/fixitnow/internal/api/metrics"
	"github.com/fixitnow/fixitnow/internal/core/domain"
	"github.com/fixitnow/fixitnow/internal/core/ports"
)

const (
	dateTimeLayout = "2006-01-02 15:04"
	dateLayout     = "2006-01-02"
)

// RequestService owns the service-request state machine. Every transition is
// authorized, validated against the current state, and written with a
// status-conditioned update so concurrent writers lose with ErrConflict
// instead of silently overwriting each other.
type RequestService struct {
	store    ports.RequestStore
	notifier ports.Notifier
	logger   zerolog.Logger
}

func NewRequestService(store ports.RequestStore, notifier ports.Notifier, logger zerolog.Logger) *RequestService {
	return &RequestService{store: store, notifier: notifier, logger: logger}
}

// Create opens a new service request in pending state with no provider.
func (s *RequestService) Create(ctx context.Context, actor ports.Actor, in ports.CreateRequestInput) (*domain.ServiceRequest, error) {
	if err := domain.Authorize(actorUser(actor), nil, domain.ActionCreate); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.ServiceType) == "" {
		return nil, fmt.Errorf("%w: service_type is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Priority) == "" {
		return nil, fmt.Errorf("%w: priority is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	preferred, err := parsePreferredDate(in.PreferredDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req := &domain.ServiceRequest{
		ID:            generateServiceID(),
		Homeowner:     actor.Username,
		ServiceType:   in.ServiceType,
		Priority:      in.Priority,
		Description:   in.Description,
		PreferredDate: preferred,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := s.store.Create(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("service_id", req.ID).Msg("failed to create service request")
		return nil, err
	}

	metrics.RequestsCreatedTotal.WithLabelValues(req.ServiceType, req.Priority).Inc()
	s.logger.Info().
		Str("service_id", req.ID).
		Str("homeowner", req.Homeowner).
		Str("service_type", req.ServiceType).
		Bool("degraded", res == ports.StoreDegraded).
		Msg("service request created")

	s.notifier.Notify(ctx, "New Service Request",
		fmt.Sprintf("New service request created: %s (%s priority) by %s", req.ServiceType, req.Priority, req.Homeowner))

	return req, nil
}

// Get returns a single request, enforcing view ownership.
func (s *RequestService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.ServiceRequest, error) {
	req, _, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actorUser(actor), req, domain.ActionView); err != nil {
		return nil, err
	}
	return req, nil
}

// ListForUser returns a homeowner's own requests, or for a provider the union
// of assigned requests and the open pending queue, de-duplicated by ID.
func (s *RequestService) ListForUser(ctx context.Context, actor ports.Actor) ([]*domain.ServiceRequest, error) {
	filter, err := filterForActor(actor)
	if err != nil {
		return nil, err
	}

	reqs, _, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(reqs))
	out := make([]*domain.ServiceRequest, 0, len(reqs))
	for _, r := range reqs {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// Accept claims an unassigned pending request for the acting provider. The
// write is conditioned on the request still being pending and unassigned;
// the second of two racing providers receives ErrConflict.
func (s *RequestService) Accept(ctx context.Context, actor ports.Actor, id string) (*domain.ServiceRequest, error) {
	req, _, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actorUser(actor), req, domain.ActionAccept); err != nil {
		return nil, failTransition(err)
	}
	if !req.Status.CanTransitionTo(domain.StatusScheduled) || req.Assigned() {
		return nil, failTransition(transitionErr(req.Status, domain.StatusScheduled))
	}

	now := time.Now().UTC()
	status := domain.StatusScheduled
	provider := actor.Username
	res, err := s.store.UpdateFields(ctx, id,
		ports.RequestPatch{Status: &status, ServiceProvider: &provider, UpdatedAt: now},
		ports.UpdateExpect{Status: domain.StatusPending, Unassigned: true})
	if err != nil {
		return nil, failTransition(err)
	}

	req.Status = status
	req.ServiceProvider = provider
	req.UpdatedAt = now
	metrics.StatusTransitionsTotal.WithLabelValues(string(status)).Inc()

	s.logger.Info().
		Str("service_id", id).
		Str("service_provider", provider).
		Bool("degraded", res == ports.StoreDegraded).
		Msg("service request accepted")

	s.notifier.Notify(ctx, "Service Status Update",
		fmt.Sprintf("Service %s status updated to: %s", id, status))

	return req, nil
}

// Start moves a scheduled request to in_progress and records the start
// timestamp. Only the assigned provider may start.
func (s *RequestService) Start(ctx context.Context, actor ports.Actor, id string, startDate string) (*domain.ServiceRequest, error) {
	req, _, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actorUser(actor), req, domain.ActionStart); err != nil {
		return nil, failTransition(err)
	}
	if !req.Status.CanTransitionTo(domain.StatusInProgress) {
		return nil, failTransition(transitionErr(req.Status, domain.StatusInProgress))
	}

	now := time.Now().UTC()
	start := now
	if startDate != "" {
		parsed, err := time.Parse(dateTimeLayout, startDate)
		if err != nil {
			return nil, failTransition(fmt.Errorf("%w: start_date must be in YYYY-MM-DD HH:MM form", domain.ErrValidation))
		}
		start = parsed.UTC()
	}

	status := domain.StatusInProgress
	res, err := s.store.UpdateFields(ctx, id,
		ports.RequestPatch{Status: &status, StartDate: &start, UpdatedAt: now},
		ports.UpdateExpect{Status: domain.StatusScheduled})
	if err != nil {
		return nil, failTransition(err)
	}

	req.Status = status
	req.StartDate = &start
	req.UpdatedAt = now
	metrics.StatusTransitionsTotal.WithLabelValues(string(status)).Inc()

	s.logger.Info().
		Str("service_id", id).
		Str("service_provider", actor.Username).
		Bool("degraded", res == ports.StoreDegraded).
		Msg("service request started")

	return req, nil
}

// Complete finishes an in_progress request, computing the duration in hours
// from the recorded start timestamp. Cost and notes are optional; a negative
// cost fails validation before anything is written.
func (s *RequestService) Complete(ctx context.Context, actor ports.Actor, id string, in ports.CompleteInput) (*domain.ServiceRequest, error) {
	req, _, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actorUser(actor), req, domain.ActionComplete); err != nil {
		return nil, failTransition(err)
	}
	if !req.Status.CanTransitionTo(domain.StatusCompleted) {
		return nil, failTransition(transitionErr(req.Status, domain.StatusCompleted))
	}
	if req.StartDate == nil {
		return nil, failTransition(fmt.Errorf("%w: request has no start date", domain.ErrInvalidTransition))
	}
	if in.Cost != nil && *in.Cost < 0 {
		return nil, failTransition(fmt.Errorf("%w: cost must be a non-negative amount", domain.ErrValidation))
	}

	now := time.Now().UTC()
	duration := now.Sub(*req.StartDate).Hours()
	if duration < 0 {
		duration = 0
	}

	status := domain.StatusCompleted
	patch := ports.RequestPatch{Status: &status, Duration: &duration, UpdatedAt: now}
	if in.Cost != nil {
		patch.Cost = in.Cost
	}
	res, err := s.store.UpdateFields(ctx, id, patch, ports.UpdateExpect{Status: domain.StatusInProgress})
	if err != nil {
		return nil, failTransition(err)
	}

	req.Status = status
	req.Duration = &duration
	if in.Cost != nil {
		req.Cost = in.Cost
	}
	req.UpdatedAt = now
	metrics.StatusTransitionsTotal.WithLabelValues(string(status)).Inc()

	s.logger.Info().
		Str("service_id", id).
		Float64("duration_hours", duration).
		Bool("degraded", res == ports.StoreDegraded).
		Msg("service request completed")

	message := fmt.Sprintf("Service %s status updated to: %s", id, status)
	if in.Notes != "" {
		message += " — " + in.Notes
	}
	s.notifier.Notify(ctx, "Service Status Update", message)

	return req, nil
}

// Rate records the homeowner's rating on a completed request. Repeated calls
// overwrite the previous rating.
func (s *RequestService) Rate(ctx context.Context, actor ports.Actor, id string, rating int) (*domain.ServiceRequest, error) {
	req, _, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actorUser(actor), req, domain.ActionRate); err != nil {
		return nil, failTransition(err)
	}
	if req.Status != domain.StatusCompleted {
		return nil, failTransition(fmt.Errorf("%w: only completed requests can be rated (status %s)", domain.ErrInvalidTransition, req.Status))
	}
	if !domain.ValidRating(rating) {
		return nil, failTransition(fmt.Errorf("%w: rating must be an integer between 1 and 5", domain.ErrValidation))
	}

	now := time.Now().UTC()
	res, err := s.store.UpdateFields(ctx, id,
		ports.RequestPatch{Rating: &rating, UpdatedAt: now},
		ports.UpdateExpect{Status: domain.StatusCompleted})
	if err != nil {
		return nil, failTransition(err)
	}

	req.Rating = &rating
	req.UpdatedAt = now

	s.logger.Info().
		Str("service_id", id).
		Int("rating", rating).
		Bool("degraded", res == ports.StoreDegraded).
		Msg("service request rated")

	return req, nil
}

// Stats aggregates the acting user's requests for the dashboard view.
func (s *RequestService) Stats(ctx context.Context, actor ports.Actor) (*ports.DashboardStats, error) {
	reqs, err := s.ListForUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	stats := &ports.DashboardStats{TotalRequests: len(reqs)}
	for _, r := range reqs {
		switch r.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusScheduled:
			stats.Scheduled++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusCompleted:
			stats.Completed++
			if actor.Role == domain.RoleServiceProvider && r.Cost != nil {
				stats.TotalEarnings += *r.Cost
			}
		}
	}
	return stats, nil
}

func actorUser(actor ports.Actor) *domain.User {
	if actor.Username == "" {
		return nil
	}
	return &domain.User{Username: actor.Username, Role: actor.Role}
}

func filterForActor(actor ports.Actor) (ports.RequestFilter, error) {
	switch actor.Role {
	case domain.RoleHomeowner:
		return ports.RequestFilter{Homeowner: actor.Username}, nil
	case domain.RoleServiceProvider:
		return ports.RequestFilter{Provider: actor.Username}, nil
	}
	return ports.RequestFilter{}, fmt.Errorf("%w: unknown role %q", domain.ErrPermissionDenied, actor.Role)
}

func transitionErr(from, to domain.RequestStatus) error {
	return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, from, to)
}

// failTransition counts a rejected transition attempt and passes the error
// through unchanged.
func failTransition(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		metrics.TransitionErrorsTotal.WithLabelValues("invalid_transition").Inc()
	case errors.Is(err, domain.ErrPermissionDenied):
		metrics.TransitionErrorsTotal.WithLabelValues("permission_denied").Inc()
	case errors.Is(err, domain.ErrConflict):
		metrics.TransitionErrorsTotal.WithLabelValues("conflict").Inc()
	case errors.Is(err, domain.ErrValidation):
		metrics.TransitionErrorsTotal.WithLabelValues("validation").Inc()
	}
	return err
}

// parsePreferredDate accepts the canonical "2006-01-02 15:04" form and the
// bare date form for backwards compatibility with existing clients.
func parsePreferredDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{dateTimeLayout, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", domain.ErrValidation)
}

// generateServiceID returns a unique identifier in the format service_XXXXXXXX.
func generateServiceID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("service_%08x", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("service_%08x", b)
}
