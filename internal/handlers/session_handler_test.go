package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tinyavocado/avocado-server/internal/handlers"
	"github.com/tinyavocado/avocado-server/internal/middleware"
	"github.com/tinyavocado/avocado-server/internal/mocks"
	"github.com/tinyavocado/avocado-server/internal/models"
)

type sessionHandlerTestDeps struct {
	mockSessionService *mocks.MockSessionService
	echo               *echo.Echo
}

func setupSessionHandlerTest(t *testing.T, session *models.Session) sessionHandlerTestDeps {
	t.Helper()
	cfg := mocks.CreateTestConfig()
	deps := sessionHandlerTestDeps{mockSessionService: new(mocks.MockSessionService)}
	handler := handlers.NewSessionHandler(deps.mockSessionService, cfg.SessionConfig)

	withSession := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session != nil {
				c.Set(middleware.SessionContextKey, session)
			}
			return next(c)
		}
	}

	deps.echo = echo.New()
	deps.echo.HTTPErrorHandler = handlers.ErrorHandler
	deps.echo.GET("/api/me", handler.Me, withSession)
	deps.echo.POST("/api/logout", handler.Logout)
	return deps
}

func performCookieRequest(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "auth", Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionHandler_Me(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupSessionHandlerTest(t, &models.Session{SessionID: "sid", Username: "ada"})
		rec := performCookieRequest(deps.echo, http.MethodGet, "/api/me", "token")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"username":"ada"}`, rec.Body.String())
	})

	t.Run("NoSessionInContext", func(t *testing.T) {
		deps := setupSessionHandlerTest(t, nil)
		rec := performCookieRequest(deps.echo, http.MethodGet, "/api/me", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired session", decodeError(t, rec))
	})
}

func TestSessionHandler_Logout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupSessionHandlerTest(t, nil)
		deps.mockSessionService.On("End", mock.Anything, "token").Return(nil).Once()

		rec := performCookieRequest(deps.echo, http.MethodPost, "/api/logout", "token")

		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "auth", cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Equal(t, -1, cookies[0].MaxAge)
		deps.mockSessionService.AssertExpectations(t)
	})

	t.Run("MissingCookie", func(t *testing.T) {
		deps := setupSessionHandlerTest(t, nil)
		rec := performCookieRequest(deps.echo, http.MethodPost, "/api/logout", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		deps.mockSessionService.AssertNotCalled(t, "End", mock.Anything, mock.Anything)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		deps := setupSessionHandlerTest(t, nil)
		deps.mockSessionService.On("End", mock.Anything, "token").Return(errors.New("redis down")).Once()

		rec := performCookieRequest(deps.echo, http.MethodPost, "/api/logout", "token")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decodeError(t, rec))
	})
}
