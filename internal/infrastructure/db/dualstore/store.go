// Package dualstore layers the durable backend over the in-process fallback.
// Every call tries the durable backend first; a genuine backend failure (not
// a not-found or precondition error) degrades that single call to the
// fallback with a warning log. Writes served by the fallback are never
// promoted back, so the two stores can diverge — durability is best-effort
// and callers can observe it through the returned StoreResult.
package dualstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fixitnow/fixitnow/internal/api/metrics"
	"github.com/fixitnow/fixitnow/internal/core/domain"
	"github.com/fixitnow/fixitnow/internal/core/ports"
)

// RequestStore implements ports.RequestStore over two ports.RequestBackend
// instances.
type RequestStore struct {
	durable  ports.RequestBackend
	fallback ports.RequestBackend
	logger   zerolog.Logger
}

func NewRequestStore(durable, fallback ports.RequestBackend, logger zerolog.Logger) *RequestStore {
	return &RequestStore{durable: durable, fallback: fallback, logger: logger}
}

func (s *RequestStore) Create(ctx context.Context, req *domain.ServiceRequest) (ports.StoreResult, error) {
	err := s.durable.Create(ctx, req)
	if err == nil || isDomainErr(err) {
		return ports.StoreDurable, err
	}
	s.degrade("create_request", err)
	return ports.StoreDegraded, absorb(s.fallback.Create(ctx, req))
}

func (s *RequestStore) Get(ctx context.Context, id string) (*domain.ServiceRequest, ports.StoreResult, error) {
	req, err := s.durable.Get(ctx, id)
	if err == nil || isDomainErr(err) {
		return req, ports.StoreDurable, err
	}
	s.degrade("get_request", err)
	req, err = s.fallback.Get(ctx, id)
	return req, ports.StoreDegraded, absorb(err)
}

func (s *RequestStore) Query(ctx context.Context, filter ports.RequestFilter) ([]*domain.ServiceRequest, ports.StoreResult, error) {
	reqs, err := s.durable.Query(ctx, filter)
	if err == nil || isDomainErr(err) {
		return reqs, ports.StoreDurable, err
	}
	s.degrade("query_requests", err)
	reqs, err = s.fallback.Query(ctx, filter)
	return reqs, ports.StoreDegraded, absorb(err)
}

func (s *RequestStore) UpdateFields(ctx context.Context, id string, patch ports.RequestPatch, expect ports.UpdateExpect) (ports.StoreResult, error) {
	err := s.durable.UpdateFields(ctx, id, patch, expect)
	if err == nil || isDomainErr(err) {
		return ports.StoreDurable, err
	}
	s.degrade("update_request", err)
	return ports.StoreDegraded, absorb(s.fallback.UpdateFields(ctx, id, patch, expect))
}

func (s *RequestStore) degrade(op string, err error) {
	metrics.StorageFallbackTotal.WithLabelValues(op).Inc()
	s.logger.Warn().Err(err).Str("op", op).Msg("durable backend failed, serving from fallback store")
}

// UserStore implements ports.UserStore over two ports.UserBackend instances.
type UserStore struct {
	durable  ports.UserBackend
	fallback ports.UserBackend
	logger   zerolog.Logger
}

func NewUserStore(durable, fallback ports.UserBackend, logger zerolog.Logger) *UserStore {
	return &UserStore{durable: durable, fallback: fallback, logger: logger}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) (ports.StoreResult, error) {
	err := s.durable.Create(ctx, user)
	if err == nil || isDomainErr(err) {
		return ports.StoreDurable, err
	}
	metrics.StorageFallbackTotal.WithLabelValues("create_user").Inc()
	s.logger.Warn().Err(err).Str("op", "create_user").Msg("durable backend failed, serving from fallback store")
	return ports.StoreDegraded, absorb(s.fallback.Create(ctx, user))
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, ports.StoreResult, error) {
	user, err := s.durable.FindByUsername(ctx, username)
	if err == nil || isDomainErr(err) {
		return user, ports.StoreDurable, err
	}
	metrics.StorageFallbackTotal.WithLabelValues("find_user").Inc()
	s.logger.Warn().Err(err).Str("op", "find_user").Msg("durable backend failed, serving from fallback store")
	user, err = s.fallback.FindByUsername(ctx, username)
	return user, ports.StoreDegraded, absorb(err)
}

// isDomainErr reports whether err is a domain condition (not found, duplicate,
// precondition conflict) rather than a backend failure. Domain conditions
// never trigger fallback.
func isDomainErr(err error) bool {
	return errors.Is(err, domain.ErrRequestNotFound) ||
		errors.Is(err, domain.ErrRequestExists) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrUserExists)
}

// absorb passes domain conditions from the fallback through unchanged and
// marks anything else as exhaustion of both backends.
func absorb(err error) error {
	if err == nil || isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
