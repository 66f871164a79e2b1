package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fixitnow/fixitnow/internal/core/ports"
)

// RequestHandler handles HTTP requests for service-request operations.
// Domain errors are returned as-is and mapped centrally by the API error
// handler.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /v1/requests.
//
// @Summary      Create a new service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRequestRequest  true  "Service request details"
// @Success      201   {object}  serviceRequestResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	created, err := h.service.Create(c.Request().Context(), actor, ports.CreateRequestInput{
		ServiceType:   req.ServiceType,
		Priority:      req.Priority,
		Description:   req.Description,
		PreferredDate: req.PreferredDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toResponse(created))
}

// List handles GET /v1/requests — a homeowner's own requests, or for a
// provider the union of assigned work and the open pending queue.
//
// @Summary      List the caller's service requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listRequestsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	reqs, err := h.service.ListForUser(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(reqs))
}

// Get handles GET /v1/requests/:service_id.
//
// @Summary      Get a service request by ID
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  path      string  true  "Service request ID (e.g. service_7a8b9c2d)"
// @Success      200         {object}  serviceRequestResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/requests/{service_id} [get]
func (h *RequestHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	req, err := h.service.Get(c.Request().Context(), actor, c.Param("service_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(req))
}

// Accept handles POST /v1/requests/:service_id/accept — a provider claims an
// unassigned pending request.
//
// @Summary      Accept a pending service request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  path      string  true  "Service request ID"
// @Success      200         {object}  serviceRequestResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      409         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /v1/requests/{service_id}/accept [post]
func (h *RequestHandler) Accept(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	req, err := h.service.Accept(c.Request().Context(), actor, c.Param("service_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(req))
}

// Start handles POST /v1/requests/:service_id/start.
//
// @Summary      Start a scheduled service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  path      string               true   "Service request ID"
// @Param        body        body      startRequestRequest  false  "Optional start date override"
// @Success      200         {object}  serviceRequestResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /v1/requests/{service_id}/start [post]
func (h *RequestHandler) Start(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req startRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.Start(c.Request().Context(), actor, c.Param("service_id"), req.StartDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(updated))
}

// Complete handles POST /v1/requests/:service_id/complete.
//
// @Summary      Complete an in-progress service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  path      string                  true   "Service request ID"
// @Param        body        body      completeRequestRequest  false  "Optional cost and notes"
// @Success      200         {object}  serviceRequestResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /v1/requests/{service_id}/complete [post]
func (h *RequestHandler) Complete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req completeRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	updated, err := h.service.Complete(c.Request().Context(), actor, c.Param("service_id"), ports.CompleteInput{
		Cost:  req.Cost,
		Notes: req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(updated))
}

// Rate handles POST /v1/requests/:service_id/rate.
//
// @Summary      Rate a completed service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  path      string             true  "Service request ID"
// @Param        body        body      rateRequestRequest true  "Rating between 1 and 5"
// @Success      200         {object}  serviceRequestResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /v1/requests/{service_id}/rate [post]
func (h *RequestHandler) Rate(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req rateRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	updated, err := h.service.Rate(c.Request().Context(), actor, c.Param("service_id"), req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(updated))
}

// Stats handles GET /v1/dashboard/stats.
//
// @Summary      Dashboard statistics for the caller
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.DashboardStats
// @Failure      401  {object}  errorResponse
// @Router       /v1/dashboard/stats [get]
func (h *RequestHandler) Stats(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
