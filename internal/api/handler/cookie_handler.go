package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api/cookie"
)

// CookieHandler is the session cookie bridge: the client hands it the token
// and it keeps it as an HTTP-only cookie the client itself cannot read.
type CookieHandler struct {
	cookies cookie.Policy
	log     zerolog.Logger
}

func NewCookieHandler(cookies cookie.Policy, log zerolog.Logger) *CookieHandler {
	return &CookieHandler{cookies: cookies, log: log}
}

type setCookieRequest struct {
	Token *string `json:"token"`
}

type setCookieResponse struct {
	Success bool `json:"success"`
}

// SetAuthCookie sets or clears the session cookie. A missing, null or empty
// token clears it.
//
// @Summary      Set or clear the session cookie
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      setCookieRequest  true  "Token, or null/empty to clear"
// @Success      200   {object}  setCookieResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/set-auth-cookie [post]
func (h *CookieHandler) SetAuthCookie(c echo.Context) error {
	var req setCookieRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	if req.Token == nil || *req.Token == "" {
		h.cookies.Clear(c)
		h.log.Debug().Msg("session cookie cleared")
		return c.JSON(http.StatusOK, setCookieResponse{Success: true})
	}

	h.cookies.Set(c, *req.Token)
	return c.JSON(http.StatusOK, setCookieResponse{Success: true})
}
