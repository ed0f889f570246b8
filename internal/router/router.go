package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tinyavocado/avocado-server/internal/handlers"
)

func SetupAuthRoutes(e *echo.Echo, authHandler *handlers.AuthHandler, sessionHandler *handlers.SessionHandler, sessionAuth []echo.MiddlewareFunc) {
	api := e.Group("/api")

	api.POST("/register", authHandler.Register) // User registration
	api.POST("/auth", authHandler.Login)        // Credential check, sets the session cookie

	api.GET("/me", sessionHandler.Me, sessionAuth...)
	// unguarded: a stale or forged cookie is still cleared
	api.POST("/logout", sessionHandler.Logout)

	api.Any("/*", func(c echo.Context) error {
		return echo.ErrNotFound
	})
}
