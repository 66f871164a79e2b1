package handler

import (
	"time"

	"github.com/fixitnow/fixitnow/internal/core/domain"
)

// toResponse maps the domain aggregate onto the JSON wire contract.
// Timestamps are ISO-8601.
func toResponse(r *domain.ServiceRequest) serviceRequestResponse {
	resp := serviceRequestResponse{
		ServiceID:       r.ID,
		Homeowner:       r.Homeowner,
		ServiceProvider: r.ServiceProvider,
		ServiceType:     r.ServiceType,
		Priority:        r.Priority,
		Description:     r.Description,
		Cost:            r.Cost,
		Status:          string(r.Status),
		Duration:        r.Duration,
		Rating:          r.Rating,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if r.PreferredDate != nil {
		resp.PreferredDate = r.PreferredDate.UTC().Format(time.RFC3339)
	}
	if r.StartDate != nil {
		resp.StartDate = r.StartDate.UTC().Format(time.RFC3339)
	}
	return resp
}

func toListResponse(reqs []*domain.ServiceRequest) listRequestsResponse {
	items := make([]serviceRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, toResponse(r))
	}
	return listRequestsResponse{Items: items, Total: len(items)}
}
