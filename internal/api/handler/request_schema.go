package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createRequestRequest struct {
	ServiceType string `json:"service_type" validate:"required"`
	Priority    string `json:"priority"     validate:"required,oneof=low medium high urgent"`
	Description string `json:"description"  validate:"required"`
	// PreferredDate is optional, "YYYY-MM-DD HH:MM" or "YYYY-MM-DD".
	PreferredDate string `json:"preferred_date"`
}

type startRequestRequest struct {
	// StartDate optionally overrides the start timestamp, "YYYY-MM-DD HH:MM".
	StartDate string `json:"start_date"`
}

type completeRequestRequest struct {
	Cost  *float64 `json:"cost" validate:"omitempty,gte=0"`
	Notes string   `json:"notes"`
}

type rateRequestRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// --- Response types ---

// serviceRequestResponse is the persisted wire contract; field names must be
// preserved for compatibility with external reporting.
type serviceRequestResponse struct {
	ServiceID       string   `json:"service_id"`
	Homeowner       string   `json:"homeowner"`
	ServiceProvider string   `json:"service_provider,omitempty"`
	ServiceType     string   `json:"service_type"`
	Priority        string   `json:"priority"`
	Description     string   `json:"description"`
	PreferredDate   string   `json:"preferred_date,omitempty"`
	StartDate       string   `json:"start_date,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`
	Status          string   `json:"status"`
	Duration        *float64 `json:"duration,omitempty"`
	Rating          *int     `json:"rating,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type listRequestsResponse struct {
	Items []serviceRequestResponse `json:"items"`
	Total int                      `json:"total"`
}
