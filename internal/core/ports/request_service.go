package ports

import (
	"context"

	"github.com/fixitnow/fixitnow/internal/core/domain"
)

// Actor identifies the authenticated caller of a use-case operation. It is
// resolved from the session token by the transport layer; the core never
// parses tokens itself.
type Actor struct {
	Username string
	Role     string
}

// CreateRequestInput carries all data needed to open a new service request.
type CreateRequestInput struct {
	ServiceType string
	Priority    string
	Description string
	// PreferredDate is optional, in "2006-01-02 15:04" or "2006-01-02" form.
	PreferredDate string
}

// CompleteInput carries the provider-supplied completion details.
type CompleteInput struct {
	// Cost is the optional final cost; must be non-negative when set.
	Cost *float64
	// Notes ride along in the completion notification only; they are not
	// part of the persisted record schema.
	Notes string
}

// DashboardStats aggregates a user's requests for the dashboard view.
// TotalEarnings is populated for providers only (sum of completed costs).
type DashboardStats struct {
	TotalRequests int     `json:"total_requests"`
	Pending       int     `json:"pending"`
	Scheduled     int     `json:"scheduled"`
	InProgress    int     `json:"in_progress"`
	Completed     int     `json:"completed"`
	TotalEarnings float64 `json:"total_earnings"`
}

// RequestService defines the use-case operations of the request lifecycle.
type RequestService interface {
	Create(ctx context.Context, actor Actor, in CreateRequestInput) (*domain.ServiceRequest, error)
	Get(ctx context.Context, actor Actor, id string) (*domain.ServiceRequest, error)
	ListForUser(ctx context.Context, actor Actor) ([]*domain.ServiceRequest, error)
	Accept(ctx context.Context, actor Actor, id string) (*domain.ServiceRequest, error)
	// Start moves a scheduled request to in_progress. startDate optionally
	// overrides the start timestamp in "2006-01-02 15:04" form.
	Start(ctx context.Context, actor Actor, id string, startDate string) (*domain.ServiceRequest, error)
	Complete(ctx context.Context, actor Actor, id string, in CompleteInput) (*domain.ServiceRequest, error)
	Rate(ctx context.Context, actor Actor, id string, rating int) (*domain.ServiceRequest, error)
	Stats(ctx context.Context, actor Actor) (*DashboardStats, error)
}
