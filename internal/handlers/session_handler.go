package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/config"
	"github.com/tinyavocado/avocado-server/internal/middleware"
	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/service"
)

type SessionHandler struct {
	SessionService service.SessionGenerator
	Cookie         config.SessionConfig
}

func NewSessionHandler(sessionService service.SessionGenerator, cookie config.SessionConfig) *SessionHandler {
	return &SessionHandler{SessionService: sessionService, Cookie: cookie}
}

func sessionCookie(cfg config.SessionConfig, token string, expiry time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		Expires:  expiry,
		MaxAge:   int(time.Until(expiry).Seconds()),
		Secure:   cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Me returns the identity behind the session cookie
func (h *SessionHandler) Me(c echo.Context) error {
	session, ok := c.Get(middleware.SessionContextKey).(*models.Session)
	if !ok || session == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
	}
	return c.JSON(http.StatusOK, models.MeResponse{Username: session.Username})
}

// Logout ends the current session and clears the cookie
func (h *SessionHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(h.Cookie.CookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
	}

	if err := h.SessionService.End(c.Request().Context(), cookie.Value); err != nil {
		log.Error().Err(err).Msg("Logout failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process logout")
	}

	c.SetCookie(&http.Cookie{
		Name:     h.Cookie.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.Cookie.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   h.Cookie.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out"})
}
