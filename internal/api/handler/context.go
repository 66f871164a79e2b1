package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fixitnow/fixitnow/internal/core/ports"
)

// ctxActor extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: both claims must be
// present, since presence proves the middleware ran and the token carried a
// full identity.
func ctxActor(c echo.Context) (ports.Actor, error) {
	username, _ := c.Get("username").(string)
	role, _ := c.Get("role").(string)
	if username == "" || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{Username: username, Role: role}, nil
}
