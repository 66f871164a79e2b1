package ports

import (
	"context"
	"time"

	"github.com/fixitnow/fixitnow/internal/core/domain"
)

// StoreResult reports which backend served a storage call.
type StoreResult int

const (
	// StoreDurable means the durable backend handled the call.
	StoreDurable StoreResult = iota
	// StoreDegraded means the durable backend failed and the in-process
	// fallback handled the call instead. Durability is best-effort.
	StoreDegraded
)

// RequestFilter carries the field-equality constraints for listing requests.
// A record matches iff every supplied constraint holds. The provider
// constraint additionally matches unassigned pending requests, so providers
// see their own work and the open queue in one query.
type RequestFilter struct {
	Homeowner string
	Provider  string
	Status    domain.RequestStatus
}

// Matches is the single filter predicate shared by every backend. The Mongo
// repository translates it into a native query; the in-memory store and tests
// evaluate it directly.
func (f RequestFilter) Matches(r *domain.ServiceRequest) bool {
	if f.Homeowner != "" && r.Homeowner != f.Homeowner {
		return false
	}
	if f.Provider != "" {
		openQueue := r.Status == domain.StatusPending && !r.Assigned()
		if r.ServiceProvider != f.Provider && !openQueue {
			return false
		}
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// RequestPatch is a partial update merged into an existing record. Nil fields
// are left untouched.
type RequestPatch struct {
	Status          *domain.RequestStatus
	ServiceProvider *string
	StartDate       *time.Time
	Cost            *float64
	Duration        *float64
	Rating          *int
	UpdatedAt       time.Time
}

// UpdateExpect states the precondition for a conditional write. A write whose
// precondition no longer holds fails with domain.ErrConflict instead of
// silently overwriting a concurrent update.
type UpdateExpect struct {
	// Status is the status the record must still be in. Empty means
	// unconditional.
	Status domain.RequestStatus
	// Unassigned requires that no provider has claimed the record yet.
	Unassigned bool
}

// RequestBackend is one physical store for service requests. Implementations
// return domain sentinel errors for not-found/duplicate/conflict conditions;
// any other error is treated as a backend failure by the dual-store adapter.
type RequestBackend interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	Get(ctx context.Context, id string) (*domain.ServiceRequest, error)
	Query(ctx context.Context, filter RequestFilter) ([]*domain.ServiceRequest, error)
	UpdateFields(ctx context.Context, id string, patch RequestPatch, expect UpdateExpect) error
}

// RequestStore is the engine-facing persistence contract. Every call reports
// which backend served it so callers can observe degraded durability.
type RequestStore interface {
	Create(ctx context.Context, req *domain.ServiceRequest) (StoreResult, error)
	Get(ctx context.Context, id string) (*domain.ServiceRequest, StoreResult, error)
	Query(ctx context.Context, filter RequestFilter) ([]*domain.ServiceRequest, StoreResult, error)
	UpdateFields(ctx context.Context, id string, patch RequestPatch, expect UpdateExpect) (StoreResult, error)
}

// UserBackend is one physical store for users.
type UserBackend interface {
	Create(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// UserStore is the engine-facing user persistence contract.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) (StoreResult, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, StoreResult, error)
}
