package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

// AuthHandler serves the development identity backend endpoints.
type AuthHandler struct {
	identity ports.IdentityService
	log      zerolog.Logger
}

func NewAuthHandler(identity ports.IdentityService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, log: log}
}

type credentialsRequest struct {
	Username          string `json:"username"           validate:"required,max=64"`
	EncryptedPassword string `json:"encrypted_password" validate:"required,base64"`
}

type publicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// PublicKey returns the RSA public key used to encrypt passwords.
//
// @Summary      Public key
// @Tags         auth
// @Produce      json
// @Success      200  {object}  publicKeyResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/public-key [get]
func (h *AuthHandler) PublicKey(c echo.Context) error {
	pem, err := h.identity.PublicKey(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publicKeyResponse{PublicKey: pem})
}

// Register creates a new account from encrypted credentials.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and RSA-OAEP encrypted password"
// @Success      200   {object}  domain.AuthResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	creds, err := bindCredentials(c)
	if err != nil {
		return err
	}

	resp, err := h.identity.Register(c.Request().Context(), creds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Login authenticates encrypted credentials and returns a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and RSA-OAEP encrypted password"
// @Success      200   {object}  domain.AuthResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	creds, err := bindCredentials(c)
	if err != nil {
		return err
	}

	resp, err := h.identity.Login(c.Request().Context(), creds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the bearer token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}
	if err := h.identity.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Profile returns the account behind the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	user, err := h.identity.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func bindCredentials(c echo.Context) (domain.EncryptedCredentials, error) {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return domain.EncryptedCredentials{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return domain.EncryptedCredentials{}, echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		return domain.EncryptedCredentials{}, err
	}
	return domain.EncryptedCredentials{Username: req.Username, EncryptedPassword: req.EncryptedPassword}, nil
}
