package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api/cookie"
	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
	"github.com/99minutos/financevault/internal/core/service"
)

// Form action messages.
const (
	msgSigninRequired   = "Username and password are required"
	msgSignupRequired   = "All fields are required"
	msgPasswordMismatch = "Passwords do not match"
	msgKeyUnavailable   = "Failed to get encryption key"
	msgInvalidLogin     = "Invalid username or password"
	msgUsernameTaken    = "Username already exists"
	msgLoginFailed      = "Login failed"
	msgRegisterFailed   = "Registration failed"
	msgUnexpected       = "An unexpected error occurred"
)

// FormHandler serves the server-rendered sign-in, sign-up and logout
// actions. It runs the same protocol as the client runtime and keeps only
// the cookie copy of the session.
type FormHandler struct {
	client  ports.AuthClient
	keys    ports.KeyResetter
	cookies cookie.Policy
	log     zerolog.Logger
}

func NewFormHandler(client ports.AuthClient, keys ports.KeyResetter, cookies cookie.Policy, log zerolog.Logger) *FormHandler {
	return &FormHandler{client: client, keys: keys, cookies: cookies, log: log}
}

type signinForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type signupForm struct {
	Username        string `form:"username"        validate:"required"`
	Password        string `form:"password"        validate:"required"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

type formError struct {
	Error string `json:"error"`
}

// Signin handles the sign-in form.
//
// @Summary      Sign in (form action)
// @Tags         forms
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Failure      400  {object}  formError
// @Failure      401  {object}  formError
// @Failure      500  {object}  formError
// @Router       /signin [post]
func (h *FormHandler) Signin(c echo.Context) error {
	var form signinForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, formError{Error: msgSigninRequired})
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, formError{Error: msgSigninRequired})
	}

	resp, err := service.RetryOnStaleKey(c.Request().Context(), h.keys, h.log, func(ctx context.Context) (*domain.AuthResponse, error) {
		return h.client.Login(ctx, form.Username, form.Password)
	})
	if err != nil {
		status, msg := h.failure(err, domain.ErrInvalidCredentials, http.StatusUnauthorized, msgInvalidLogin, domain.ErrLoginFailed, msgLoginFailed)
		return c.JSON(status, formError{Error: msg})
	}

	h.cookies.Set(c, resp.Token)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Signup handles the registration form.
//
// @Summary      Sign up (form action)
// @Tags         forms
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username         formData  string  true  "Username"
// @Param        password         formData  string  true  "Password"
// @Param        confirmPassword  formData  string  true  "Password confirmation"
// @Success      303
// @Failure      400  {object}  formError
// @Failure      409  {object}  formError
// @Failure      500  {object}  formError
// @Router       /signup [post]
func (h *FormHandler) Signup(c echo.Context) error {
	var form signupForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, formError{Error: msgSignupRequired})
	}
	if err := c.Validate(&form); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && !ve.Failed("required") && ve.Failed("eqfield") {
			return c.JSON(http.StatusBadRequest, formError{Error: msgPasswordMismatch})
		}
		return c.JSON(http.StatusBadRequest, formError{Error: msgSignupRequired})
	}

	resp, err := service.RetryOnStaleKey(c.Request().Context(), h.keys, h.log, func(ctx context.Context) (*domain.AuthResponse, error) {
		return h.client.Register(ctx, form.Username, form.Password)
	})
	if err != nil {
		status, msg := h.failure(err, domain.ErrUserAlreadyExists, http.StatusConflict, msgUsernameTaken, domain.ErrRegistrationFailed, msgRegisterFailed)
		return c.JSON(status, formError{Error: msg})
	}

	h.cookies.Set(c, resp.Token)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout ends the cookie session. The backend call is best effort.
//
// @Summary      Log out (form action)
// @Tags         forms
// @Success      303
// @Router       /logout [post]
func (h *FormHandler) Logout(c echo.Context) error {
	if token, ok := cookie.Token(c); ok {
		if err := h.client.Logout(c.Request().Context(), token); err != nil {
			h.log.Warn().Err(err).Msg("backend logout failed, clearing cookie anyway")
		}
	}
	h.cookies.Clear(c)
	return c.Redirect(http.StatusSeeOther, "/signin")
}

// failure maps a protocol error to the form's status and message. rejected
// is the expected business outcome, failed the operation's generic failure.
func (h *FormHandler) failure(err, rejected error, rejectedStatus int, rejectedMsg string, failed error, failedMsg string) (int, string) {
	switch {
	case errors.Is(err, rejected):
		return rejectedStatus, rejectedMsg
	case errors.Is(err, domain.ErrKeyUnavailable):
		h.log.Error().Err(err).Msg("public key unavailable")
		return http.StatusInternalServerError, msgKeyUnavailable
	case errors.Is(err, failed):
		h.log.Error().Err(err).Msg("backend exchange failed")
		return http.StatusInternalServerError, failedMsg
	default:
		h.log.Error().Err(err).Msg("form action failed")
		return http.StatusInternalServerError, msgUnexpected
	}
}
