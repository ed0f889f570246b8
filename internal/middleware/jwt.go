package middleware

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/service"
)

// SessionContextKey holds the *models.Session of an authenticated request.
const SessionContextKey = "session"

// SessionAuth guards a route with the session cookie. The token signature and
// expiry are checked by echo-jwt; the session it names must also still be
// stored.
func SessionAuth(cookieName string, signingKey []byte, sessions service.SessionGenerator) []echo.MiddlewareFunc {
	verifyJWT := echojwt.WithConfig(echojwt.Config{
		SigningKey:    signingKey,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "cookie:" + cookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("Session cookie rejected")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
		},
	})

	requireSession := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}
			session, err := sessions.Verify(c.Request().Context(), cookie.Value)
			if errors.Is(err, service.ErrInvalidSessionToken) {
				log.Debug().Err(err).Msg("Session no longer valid")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, service.MsgInternal).SetInternal(err)
			}
			c.Set(SessionContextKey, session)
			return next(c)
		}
	}

	return []echo.MiddlewareFunc{verifyJWT, requireSession}
}
