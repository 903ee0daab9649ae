package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/financevault/internal/api/middleware"
)

// ctxUserID extracts the user id injected by the Auth middleware. An empty
// value means the middleware did not run on this route.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextKeyUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.ContextKeyToken).(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return token, nil
}
