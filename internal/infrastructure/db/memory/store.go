// Package memory provides the in-process fallback store. It mirrors the
// durable backend's semantics exactly: uniqueness on create, partial merges,
// status-conditioned updates, and the shared query predicate.
package memory

import (
	"context"
	"sync"

	"github.com/fixitnow/fixitnow/internal/core/domain"
	"github.com/fixitnow/fixitnow/internal/core/ports"
)

// RequestStore is a mutex-guarded map of service requests.
type RequestStore struct {
	mu       sync.RWMutex
	requests map[string]*domain.ServiceRequest
}

func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[string]*domain.ServiceRequest)}
}

func (s *RequestStore) Create(_ context.Context, req *domain.ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.ID]; exists {
		return domain.ErrRequestExists
	}
	s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (s *RequestStore) Get(_ context.Context, id string) (*domain.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (s *RequestStore) Query(_ context.Context, filter ports.RequestFilter) ([]*domain.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ServiceRequest
	for _, req := range s.requests {
		if filter.Matches(req) {
			out = append(out, cloneRequest(req))
		}
	}
	return out, nil
}

// UpdateFields merges patch into the stored record. The expect precondition
// is evaluated under the write lock, which is what makes racing accepts on
// the same pending request resolve to exactly one winner.
func (s *RequestStore) UpdateFields(_ context.Context, id string, patch ports.RequestPatch, expect ports.UpdateExpect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if expect.Status != "" && req.Status != expect.Status {
		return domain.ErrConflict
	}
	if expect.Unassigned && req.Assigned() {
		return domain.ErrConflict
	}

	if patch.Status != nil {
		req.Status = *patch.Status
	}
	if patch.ServiceProvider != nil {
		req.ServiceProvider = *patch.ServiceProvider
	}
	if patch.StartDate != nil {
		start := *patch.StartDate
		req.StartDate = &start
	}
	if patch.Cost != nil {
		cost := *patch.Cost
		req.Cost = &cost
	}
	if patch.Duration != nil {
		dur := *patch.Duration
		req.Duration = &dur
	}
	if patch.Rating != nil {
		rating := *patch.Rating
		req.Rating = &rating
	}
	if !patch.UpdatedAt.IsZero() {
		req.UpdatedAt = patch.UpdatedAt
	}
	return nil
}

func cloneRequest(r *domain.ServiceRequest) *domain.ServiceRequest {
	clone := *r
	if r.PreferredDate != nil {
		v := *r.PreferredDate
		clone.PreferredDate = &v
	}
	if r.StartDate != nil {
		v := *r.StartDate
		clone.StartDate = &v
	}
	if r.Cost != nil {
		v := *r.Cost
		clone.Cost = &v
	}
	if r.Duration != nil {
		v := *r.Duration
		clone.Duration = &v
	}
	if r.Rating != nil {
		v := *r.Rating
		clone.Rating = &v
	}
	return &clone
}

// UserStore is a mutex-guarded map of users.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return domain.ErrUserExists
	}
	clone := *user
	s.users[user.Username] = &clone
	return nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}
