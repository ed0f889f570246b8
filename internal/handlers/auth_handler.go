package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/config"
	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/service"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	AuthService    service.AuthGenerator
	SessionService service.SessionGenerator
	Cookie         config.SessionConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthGenerator, sessionService service.SessionGenerator, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		AuthService:    authService,
		SessionService: sessionService,
		Cookie:         cookie,
	}
}

// Register handles user registration requests
func (h *AuthHandler) Register(c echo.Context) error {
	req := new(models.RegisterRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	info, err := h.AuthService.Register(c.Request().Context(), *req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// Login checks the credentials and starts a cookie session
func (h *AuthHandler) Login(c echo.Context) error {
	req := new(models.LoginRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()

	user, err := h.AuthService.Login(ctx, *req)
	if err != nil {
		return toHTTPError(err)
	}

	token, expiry, err := h.SessionService.Start(ctx, user.Username, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to start session")
		return echo.NewHTTPError(http.StatusInternalServerError, service.MsgInternal)
	}

	c.SetCookie(sessionCookie(h.Cookie, token, expiry))
	return c.JSON(http.StatusOK, user)
}
