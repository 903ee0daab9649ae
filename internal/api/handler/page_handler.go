package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/financevault/internal/api/middleware"
)

type pageUser struct {
	Authenticated bool `json:"authenticated"`
}

type pageData struct {
	User *pageUser `json:"user"`
}

// Page renders the data every guarded page receives: the authenticated hint
// left by the route guard, or a null user.
//
// @Summary      Page data
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageData
// @Success      302
// @Router       / [get]
func Page(c echo.Context) error {
	var data pageData
	if ok, _ := c.Get(middleware.ContextKeyAuthenticated).(bool); ok {
		data.User = &pageUser{Authenticated: true}
	}
	return c.JSON(http.StatusOK, data)
}
