package domain

import (
	"errors"
	"time"
)

// RequestStatus represents the lifecycle state of a service request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusScheduled  RequestStatus = "scheduled"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:    {StatusScheduled},
	StatusScheduled:  {StatusInProgress},
	StatusInProgress: {StatusCompleted},
}

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRequestNotFound    = errors.New("service request not found")
	ErrRequestExists      = errors.New("service request already exists")
	ErrConflict           = errors.New("concurrent update conflict")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrStoreUnavailable   = errors.New("storage unavailable")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the four known statuses.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ServiceRequest is the core aggregate root. Field names follow the persisted
// wire contract consumed by external reporting.
type ServiceRequest struct {
	ID              string        `json:"service_id"`
	Homeowner       string        `json:"homeowner"`
	ServiceProvider string        `json:"service_provider,omitempty"`
	ServiceType     string        `json:"service_type"`
	Priority        string        `json:"priority"`
	Description     string        `json:"description"`
	PreferredDate   *time.Time    `json:"preferred_date,omitempty"`
	StartDate       *time.Time    `json:"start_date,omitempty"`
	Cost            *float64      `json:"cost,omitempty"`
	Status          RequestStatus `json:"status"`
	Duration        *float64      `json:"duration,omitempty"`
	Rating          *int          `json:"rating,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Assigned reports whether a provider has claimed the request.
func (r *ServiceRequest) Assigned() bool {
	return r.ServiceProvider != ""
}

// ValidRating reports whether v is an acceptable rating value.
func ValidRating(v int) bool {
	return v >= 1 && v <= 5
}
